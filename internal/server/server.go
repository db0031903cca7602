// Package server exposes the HTTP API: account endpoints, the plant
// collection, and the photo intake workflow.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"studioplantes/internal/app"
	"studioplantes/internal/cache"
	"studioplantes/internal/ratelimit"
	"studioplantes/internal/util"
	"studioplantes/pkg/domain"
)

const defaultMaxUploadBytes = 8 << 20

// Server routes HTTP requests to the application operations.
type Server struct {
	app     *app.App
	views   *cache.Views
	limiter *ratelimit.FixedWindowLimiter
	trusted *util.TrustedProxies

	maxUploadBytes int64
}

// Options carries optional server collaborators. Nil fields disable the
// matching feature.
type Options struct {
	Views          *cache.Views
	Limiter        *ratelimit.FixedWindowLimiter
	TrustedProxies *util.TrustedProxies
	MaxUploadBytes int64
}

// New builds the server.
func New(application *app.App, opts Options) *Server {
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	return &Server{
		app:            application,
		views:          opts.Views,
		limiter:        opts.Limiter,
		trusted:        opts.TrustedProxies,
		maxUploadBytes: maxUpload,
	}
}

// Handler returns the routed handler wrapped in the shared middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/auth/signup", s.handleSignUp)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/users/me", s.withUser(s.handleMe))

	mux.HandleFunc("GET /api/plants", s.withUser(s.handlePlantList))
	mux.HandleFunc("POST /api/plants", s.withUser(s.handlePlantAdd))
	mux.HandleFunc("GET /api/plants/{id}", s.withUser(s.handlePlantGet))
	mux.HandleFunc("DELETE /api/plants/{id}", s.withUser(s.handlePlantDelete))
	mux.HandleFunc("POST /api/plants/{id}/water", s.withUser(s.handlePlantWater))
	mux.HandleFunc("POST /api/plants/{id}/snooze", s.withUser(s.handlePlantSnooze))

	var handler http.Handler = mux
	handler = util.WithRequestLog(handler)
	handler = util.WithRequestID(handler)
	handler = util.WithSecurityHeaders(handler)
	handler = util.WithCORS(handler)
	return handler
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.app.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.app.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token != "" {
		_ = s.app.Logout(r.Context(), token)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user domain.User) {
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handlePlantList(w http.ResponseWriter, r *http.Request, user domain.User) {
	ctx := r.Context()
	if payload, ok := s.views.GetCollection(ctx, user.ID); ok {
		writeCached(w, payload)
		return
	}
	plants, err := s.app.ListPlants(ctx, user.ID, time.Now())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	payload, err := json.Marshal(plants)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.views.SetCollection(ctx, user.ID, payload)
	writeCached(w, payload)
}

func (s *Server) handlePlantGet(w http.ResponseWriter, r *http.Request, user domain.User) {
	ctx := r.Context()
	plantID := r.PathValue("id")
	if payload, ok := s.views.GetDetail(ctx, user.ID, plantID); ok {
		writeCached(w, payload)
		return
	}
	plant, err := s.app.GetPlant(ctx, user.ID, plantID, time.Now())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	payload, err := json.Marshal(plant)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.views.SetDetail(ctx, user.ID, plantID, payload)
	writeCached(w, payload)
}

func (s *Server) handlePlantAdd(w http.ResponseWriter, r *http.Request, user domain.User) {
	if s.limiter != nil && !s.limiter.Allow(util.ClientIP(r, s.trusted)) {
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	in := app.AddPlantInput{
		Room:     r.FormValue("room"),
		Exposure: r.FormValue("exposure"),
		Note:     r.FormValue("note"),
	}
	if raw := strings.TrimSpace(r.FormValue("lastWateredAt")); raw != "" {
		ts, err := parseWateredAt(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid lastWateredAt, use RFC 3339 or YYYY-MM-DD")
			return
		}
		in.LastWateredAt = ts
	}
	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable photo upload")
			return
		}
		in.Image = data
		in.MimeType = header.Header.Get("Content-Type")
		in.Filename = header.Filename
	}

	plant, err := s.app.AddPlant(r.Context(), user.ID, in)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	s.views.Invalidate(r.Context(), user.ID, "")
	writeJSON(w, http.StatusCreated, plant)
}

func (s *Server) handlePlantWater(w http.ResponseWriter, r *http.Request, user domain.User) {
	plantID := r.PathValue("id")
	plant, err := s.app.WaterPlant(r.Context(), user.ID, plantID, time.Now())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	s.views.Invalidate(r.Context(), user.ID, plantID)
	writeJSON(w, http.StatusOK, plant)
}

func (s *Server) handlePlantSnooze(w http.ResponseWriter, r *http.Request, user domain.User) {
	plantID := r.PathValue("id")
	plant, err := s.app.SnoozePlant(r.Context(), user.ID, plantID, time.Now())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	s.views.Invalidate(r.Context(), user.ID, plantID)
	writeJSON(w, http.StatusOK, plant)
}

func (s *Server) handlePlantDelete(w http.ResponseWriter, r *http.Request, user domain.User) {
	plantID := r.PathValue("id")
	if err := s.app.DeletePlant(r.Context(), user.ID, plantID); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	s.views.Invalidate(r.Context(), user.ID, plantID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// withUser authenticates the bearer token and passes the resolved account to
// the handler.
func (s *Server) withUser(next func(http.ResponseWriter, *http.Request, domain.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		user, err := s.app.UserFromToken(r.Context(), token)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		next(w, r, user)
	}
}

func parseWateredAt(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	return time.ParseInLocation("2006-01-02", raw, time.Local)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrNoImage):
		status = http.StatusBadRequest
	case errors.Is(err, app.ErrInvalidCredentials), errors.Is(err, app.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, app.ErrPlantNotFound):
		status = http.StatusNotFound
	case errors.Is(err, app.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, app.ErrNotPlant):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, app.ErrAIResponse):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		util.LoggerFromContext(r.Context()).Error("request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeCached(w http.ResponseWriter, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
