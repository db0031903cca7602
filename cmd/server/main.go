package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"studioplantes/internal/app"
	"studioplantes/internal/cache"
	"studioplantes/internal/config"
	"studioplantes/internal/ratelimit"
	"studioplantes/internal/server"
	"studioplantes/internal/util"
	"studioplantes/pkg/ai"
	"studioplantes/pkg/storage"
	"studioplantes/pkg/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}
	viewCacheTTL, err := config.ParseViewCacheTTL(cfg.ViewCacheTTL)
	if err != nil {
		log.Fatalf("failed to parse view cache TTL: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	var st store.Store
	if cfg.DatabaseURL != "" {
		gormStore, err := store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to init database: %v", err)
		}
		st = gormStore
	} else {
		slog.Warn("databaseURL not set, using in-memory store")
		st = store.NewMemoryStore()
	}

	var sessions store.SessionStore
	switch cfg.SessionBackend {
	case "jwt":
		sessions = store.NewJWTSessionStore(cfg.JWTSecret, sessionTTL)
	case "memory":
		sessions = store.NewMemorySessionStore()
	default:
		sessions = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, sessionTTL)
	}

	var objects storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		minioStore, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("failed to init object store: %v", err)
		}
		objects = minioStore
	} else {
		slog.Warn("minioEndpoint not set, using in-memory object store")
		objects = storage.NewMemoryStore()
	}

	geminiClient, err := ai.NewGeminiClient(cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("failed to init gemini client: %v", err)
	}
	analyzer := ai.NewGeminiAnalyzer(geminiClient, cfg.GeminiModel)

	var views *cache.Views
	if cfg.RedisAddr != "" {
		views = cache.NewViews(cfg.RedisAddr, cfg.RedisPassword, viewCacheTTL)
	}

	var limiter *ratelimit.FixedWindowLimiter
	if cfg.IntakeRateLimitPerMinute > 0 {
		limiter, err = ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "", cfg.IntakeRateLimitPerMinute, time.Minute)
		if err != nil {
			log.Fatalf("failed to init rate limiter: %v", err)
		}
	}

	trusted, err := util.NewTrustedProxies(config.ParseTrustedProxies(cfg.TrustedProxies))
	if err != nil {
		log.Fatalf("failed to parse trusted proxies: %v", err)
	}

	application := app.New(st, sessions, objects, analyzer)
	httpServer := server.New(application, server.Options{
		Views:          views,
		Limiter:        limiter,
		TrustedProxies: trusted,
		MaxUploadBytes: int64(cfg.MaxUploadMB) << 20,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := group.Wait(); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
