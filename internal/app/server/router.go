package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hrmsync/internal/domain/auth"
	"hrmsync/internal/platform/config"
	"hrmsync/internal/platform/metrics"
	"hrmsync/internal/transport/http/api"
	audithandler "hrmsync/internal/transport/http/handlers/audit"
	authhandler "hrmsync/internal/transport/http/handlers/auth"
	intakehandler "hrmsync/internal/transport/http/handlers/intake"
	"hrmsync/internal/transport/http/middleware"
)

// Deps are the collaborators the router needs. Permissions may be nil, in
// which case the built-in role table decides.
type Deps struct {
	Ready       func(ctx context.Context) error
	Users       authhandler.UserStore
	Permissions middleware.PermissionStore
	Audit       authhandler.Auditor
	AuditLog    audithandler.Log
	Intake      intakehandler.Service
	Metrics     *metrics.Collector
}

func NewRouter(cfg config.Config, deps Deps) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Logger(deps.Metrics))
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.SensitiveRateLimit(cfg.RateLimitPerMinute, time.Minute))

		authhandler.NewHandler(deps.Users, deps.Audit, cfg.JWTSecret, cfg.TokenTTL).RegisterRoutes(r)
		intakehandler.NewHandler(deps.Intake, deps.Permissions, deps.Audit, deps.Metrics).RegisterRoutes(r)
		if deps.AuditLog != nil {
			audithandler.NewHandler(deps.AuditLog, deps.Permissions).RegisterRoutes(r)
		}

		if cfg.MetricsEnabled && deps.Metrics != nil {
			r.With(middleware.RequirePermission(auth.PermMetricsRead, deps.Permissions)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
				api.Success(w, deps.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
			})
		}
	})

	return router
}
