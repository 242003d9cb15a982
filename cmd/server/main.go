package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/nano-midea/engagement/internal/activity"
	"github.com/anonto42/nano-midea/engagement/internal/middleware"
	"github.com/anonto42/nano-midea/engagement/internal/repositories"
	"github.com/anonto42/nano-midea/engagement/internal/repositories/memstore"
	"github.com/anonto42/nano-midea/engagement/internal/router"
	"github.com/anonto42/nano-midea/engagement/internal/services"
	"github.com/anonto42/nano-midea/engagement/pkg/config"
	"github.com/anonto42/nano-midea/engagement/pkg/firebase"
	"github.com/anonto42/nano-midea/engagement/pkg/logger"
	"github.com/anonto42/nano-midea/engagement/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	lg, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("Server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, lg *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	store, err := openStore(cfg, db, lg)
	if err != nil {
		return err
	}

	recorder, err := openRecorder(ctx, cfg, db, lg)
	if err != nil {
		return err
	}

	auth, err := identityMiddleware(ctx, cfg, lg)
	if err != nil {
		return err
	}

	svc := services.New(store, lg, services.Options{
		MaxPageSize: cfg.MaxPageSize,
		Recorder:    recorder,
	})

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	config.SetupMiddleware(e, lg)
	router.SetupRoutes(e, svc, auth, lg)

	errCh := make(chan error, 1)
	go func() {
		lg.Info("Starting server", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lg.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openStore(cfg *config.Config, db *config.DB, lg *zap.Logger) (repositories.Store, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		lg.Warn("Using the in-memory store, data is lost on restart")
		return memstore.New(), nil
	}

	store := repositories.NewPostgresStore(db.Postgres)
	if cfg.DBAutoMigrate {
		if err := store.AutoMigrate(); err != nil {
			return nil, err
		}
		lg.Info("PostgreSQL auto-migrations completed")
	}
	return store, nil
}

func openRecorder(ctx context.Context, cfg *config.Config, db *config.DB, lg *zap.Logger) (activity.Recorder, error) {
	if db.Mongo == nil {
		lg.Info("MONGO_URI not set, activity log disabled")
		return activity.Nop{}, nil
	}

	rec := activity.NewMongoRecorder(db.Mongo.Database(cfg.MongoDatabase))
	if err := rec.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	return rec, nil
}

func identityMiddleware(ctx context.Context, cfg *config.Config, lg *zap.Logger) (echo.MiddlewareFunc, error) {
	if cfg.AuthMode == config.AuthModeFirebase {
		verifier, err := firebase.InitVerifier(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseCheckRevoked)
		if err != nil {
			return nil, err
		}
		lg.Info("Firebase authentication enabled", zap.Bool("check_revoked", cfg.FirebaseCheckRevoked))
		return middleware.FirebaseAuthMiddleware(verifier), nil
	}

	lg.Info("JWT authentication enabled")
	return middleware.JWTAuthMiddleware([]byte(cfg.JWTSecret)), nil
}
