// Package app implements the application operations behind the HTTP API:
// account management and the plant collection with its watering schedule.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"studioplantes/internal/util"
	"studioplantes/pkg/ai"
	"studioplantes/pkg/auth"
	"studioplantes/pkg/domain"
	"studioplantes/pkg/schedule"
	"studioplantes/pkg/storage"
	"studioplantes/pkg/store"
)

// App wires the stores and the vision analyzer into the application
// operations. All methods are safe for concurrent use when the underlying
// stores are.
type App struct {
	store    store.Store
	sessions store.SessionStore
	objects  storage.ObjectStore
	analyzer ai.Analyzer
}

// New builds the application service.
func New(st store.Store, sessions store.SessionStore, objects storage.ObjectStore, analyzer ai.Analyzer) *App {
	return &App{store: st, sessions: sessions, objects: objects, analyzer: analyzer}
}

// PlantView is a plant together with its watering status rendered at request
// time.
type PlantView struct {
	domain.Plant
	Status domain.DueStatus `json:"status"`
}

// SignUp registers a new account and opens a session for it.
func (a *App) SignUp(ctx context.Context, email, password string) (domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return domain.User{}, "", fmt.Errorf("%w: email", ErrInvalidInput)
	}
	if len(password) < 8 {
		return domain.User{}, "", fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	taken, err := a.store.HasUserEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if taken {
		return domain.User{}, "", ErrEmailTaken
	}

	now := time.Now()
	user := domain.User{
		ID:           util.NewID(),
		Email:        email,
		PasswordHash: auth.HashPassword(password),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if user.PasswordHash == "" {
		return domain.User{}, "", fmt.Errorf("%w: hash password", ErrPersistence)
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	util.LoggerFromContext(ctx).Info("user registered", "user_id", user.ID)
	return user, token, nil
}

// Login verifies credentials and opens a session. Unknown email and wrong
// password are indistinguishable to the caller.
func (a *App) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return user, token, nil
}

// Logout drops the session. Unknown tokens are not an error.
func (a *App) Logout(ctx context.Context, token string) error {
	return a.sessions.DeleteSession(token)
}

// UserFromToken resolves a session token to its account.
func (a *App) UserFromToken(ctx context.Context, token string) (domain.User, error) {
	userID, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return domain.User{}, ErrUnauthorized
	}
	user, ok, err := a.store.GetUserByID(userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok {
		return domain.User{}, ErrUnauthorized
	}
	return user, nil
}

// ListPlants returns the owner's collection sorted soonest-due first, each
// plant carrying its status as of now.
func (a *App) ListPlants(ctx context.Context, ownerID string, now time.Time) ([]PlantView, error) {
	plants, err := a.store.ListPlantsByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	schedule.SortByNextDue(plants)
	views := make([]PlantView, 0, len(plants))
	for _, plant := range plants {
		views = append(views, a.view(plant, now))
	}
	return views, nil
}

// GetPlant returns one plant scoped to its owner.
func (a *App) GetPlant(ctx context.Context, ownerID, id string, now time.Time) (PlantView, error) {
	plant, ok, err := a.store.GetPlant(id, ownerID)
	if err != nil {
		return PlantView{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok {
		return PlantView{}, ErrPlantNotFound
	}
	return a.view(plant, now), nil
}

// WaterPlant records a watering event: the event timestamp becomes the head
// of the bounded history, the last-watered date moves to now, and any
// accumulated snooze is cleared.
func (a *App) WaterPlant(ctx context.Context, ownerID, id string, now time.Time) (PlantView, error) {
	plant, ok, err := a.store.GetPlant(id, ownerID)
	if err != nil {
		return PlantView{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok {
		return PlantView{}, ErrPlantNotFound
	}
	history := schedule.RecordWatering(plant.WateringHistory, now)
	if err := a.store.SetWatering(id, ownerID, now, history); err != nil {
		return PlantView{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	plant.LastWateredAt = now
	plant.WateringHistory = history
	plant.SnoozeDays = 0
	plant.UpdatedAt = now
	return a.view(plant, now), nil
}

// SnoozePlant defers the next due date by one fixed step.
func (a *App) SnoozePlant(ctx context.Context, ownerID, id string, now time.Time) (PlantView, error) {
	plant, ok, err := a.store.GetPlant(id, ownerID)
	if err != nil {
		return PlantView{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok {
		return PlantView{}, ErrPlantNotFound
	}
	plant.SnoozeDays = schedule.Snooze(plant.SnoozeDays)
	if err := a.store.SetSnooze(id, ownerID, plant.SnoozeDays); err != nil {
		return PlantView{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	plant.UpdatedAt = now
	return a.view(plant, now), nil
}

// DeletePlant removes the plant row, then removes its photo best-effort: a
// failed blob delete leaves an orphan object but never fails the request.
func (a *App) DeletePlant(ctx context.Context, ownerID, id string) error {
	plant, ok, err := a.store.GetPlant(id, ownerID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok {
		return ErrPlantNotFound
	}
	if err := a.store.DeletePlant(id, ownerID); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if plant.ImageKey != "" {
		if err := a.objects.Remove(ctx, plant.ImageKey); err != nil {
			util.LoggerFromContext(ctx).Warn("orphan image left in object store",
				"plant_id", id, "key", plant.ImageKey, "error", err)
		}
	}
	return nil
}

func (a *App) view(plant domain.Plant, now time.Time) PlantView {
	return PlantView{
		Plant:  plant,
		Status: schedule.Status(plant.LastWateredAt, plant.WateringFrequencyDays, plant.SnoozeDays, now),
	}
}
