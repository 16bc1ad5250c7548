package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrmsync/internal/domain/audit"
	"hrmsync/internal/domain/auth"
	"hrmsync/internal/domain/intake"
	"hrmsync/internal/platform/config"
	cryptoutil "hrmsync/internal/platform/crypto"
	"hrmsync/internal/platform/db"
	"hrmsync/internal/platform/metrics"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Metrics *metrics.Collector
	Router  http.Handler
}

// New connects to Postgres, applies migrations and seed data when enabled,
// and builds the router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	if !crypto.Configured() {
		slog.Warn("DATA_ENCRYPTION_KEY not set; sensitive employee fields are stored unencrypted")
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	collector := metrics.New()
	authStore := auth.NewStore(pool)
	auditLog := audit.New(pool)
	router := NewRouter(cfg, Deps{
		Ready:       pool.Ping,
		Users:       authStore,
		Permissions: authStore,
		Audit:       auditLog,
		AuditLog:    auditLog,
		Intake:      intake.NewService(intake.NewStore(pool), crypto),
		Metrics:     collector,
	})

	return &App{Config: cfg, DB: pool, Metrics: collector, Router: router}, nil
}

// Run serves until ctx is canceled and then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("hrmsync intake listening", "addr", a.Config.Addr, "env", a.Config.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()
	slog.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
