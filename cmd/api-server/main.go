package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"bookex/database"
	"bookex/internal/config"
	"bookex/internal/http-api/router"
	"bookex/internal/logging"
	"bookex/internal/ratelimit"
	"bookex/internal/storage"
)

func main() {
	// 1. Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Connect to the database
	db, err := database.Connect(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}
	defer database.Close(db)

	// 3. Picture storage and rate limiting
	store, mediaRoot, err := newStore(cfg)
	if err != nil {
		log.Fatalf("could not init picture storage: %v", err)
	}
	limiter, closeLimiter, err := newLimiter(cfg)
	if err != nil {
		log.Fatalf("could not init rate limiter: %v", err)
	}
	defer closeLimiter()

	// 4. Setup Gin
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("could not get sql handle: %v", err)
	}
	engine, err := router.New(router.NewServices(cfg, db, store, logger), router.Options{
		CookieName:   cfg.SessionCookie,
		SecureCookie: cfg.IsProduction(),
		MaxUpload:    cfg.UploadMaxSize,
		MediaURL:     cfg.MediaURL,
		MediaRoot:    mediaRoot,
		Limiter:      limiter,
		Logger:       logger,
		Ping:         sqlDB.PingContext,
	})
	if err != nil {
		log.Fatalf("could not build router: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Server running", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// newStore returns the configured picture store. mediaRoot is non-empty only when
// pictures live on disk and must be served by this process.
func newStore(cfg *config.Config) (storage.Store, string, error) {
	if cfg.StorageBackend == "minio" {
		store, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey,
			cfg.MinioBucket, cfg.MinioUseSSL, cfg.PictureURLTTL)
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	}
	store, err := storage.NewFileStore(cfg.MediaRoot, cfg.MediaURL)
	if err != nil {
		return nil, "", err
	}
	return store, store.Root(), nil
}

// newLimiter prefers Redis so limits hold across replicas, and falls back to memory.
func newLimiter(cfg *config.Config) (ratelimit.Limiter, func(), error) {
	noop := func() {}
	if !cfg.RateLimitEnabled {
		return nil, noop, nil
	}
	if cfg.RedisURL != "" {
		l, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisURL, "bookex:ratelimit", cfg.RateLimitRequests, cfg.RateLimitWindow)
		if err != nil {
			return nil, noop, err
		}
		return l, func() {
			if err := l.Close(); err != nil {
				slog.Warn("closing redis limiter", "error", err)
			}
		}, nil
	}
	l, err := ratelimit.NewLocalLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	if err != nil {
		return nil, noop, err
	}
	return l, noop, nil
}
