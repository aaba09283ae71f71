package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"acr/internal/domain/appraisal"
	"acr/internal/domain/assessee"
	"acr/internal/domain/audit"
	"acr/internal/domain/auth"
	"acr/internal/domain/criteria"
	"acr/internal/domain/directory"
	"acr/internal/domain/exclusion"
	"acr/internal/domain/scoring"
	"acr/internal/platform/config"
	"acr/internal/platform/db"
	"acr/internal/platform/jobs"
	"acr/internal/platform/logger"
	"acr/internal/platform/metrics"
	"acr/internal/platform/observability"
	"acr/internal/transport/http/api"
	appraisalhandler "acr/internal/transport/http/handlers/appraisal"
	assesseehandler "acr/internal/transport/http/handlers/assessee"
	audithandler "acr/internal/transport/http/handlers/audit"
	criteriahandler "acr/internal/transport/http/handlers/criteria"
	directoryhandler "acr/internal/transport/http/handlers/directory"
	exclusionhandler "acr/internal/transport/http/handlers/exclusion"
	reportshandler "acr/internal/transport/http/handlers/reports"
	"acr/internal/transport/http/middleware"
)

type routeRegistrar interface {
	RegisterRoutes(r chi.Router)
}

type App struct {
	Config  config.Config
	Log     *logger.Logger
	DB      *pgxpool.Pool
	Router  http.Handler
	Jobs    *jobs.Service
	Metrics *metrics.Collector
}

// New connects to the database, applies migrations and seed data, and wires
// every service and handler.
func New(ctx context.Context, cfg config.Config, log *logger.Logger) (*App, error) {
	log = logger.OrNop(log)
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir, log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg.SeedFile, log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	directorySvc := directory.NewService(directory.NewStore(pool), log)
	criteriaSvc := criteria.NewService(criteria.NewStore(pool), log)
	exclusionSvc := exclusion.NewService(exclusion.NewStore(pool), log)
	appraisalSvc := appraisal.NewService(appraisal.NewStore(pool, log), directorySvc, log)
	assesseeSvc := assessee.NewService(directorySvc, criteriaSvc, exclusionSvc, appraisalSvc, log)
	scoringSvc := scoring.NewService(appraisalSvc, directorySvc, log)
	auditSvc := audit.New(pool)
	perms := auth.NewStaticPermissions()

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}
	jobSvc := jobs.New(pool, directorySvc, scoringSvc, cfg.IntegrityScanInterval, log)
	var counter appraisalhandler.AttemptCounter
	if collector != nil {
		jobSvc.WithWarningSink(collector)
		counter = collector
	}

	handlers := []routeRegistrar{
		directoryhandler.NewHandler(directorySvc, perms),
		assesseehandler.NewHandler(assesseeSvc, directorySvc, perms, log),
		appraisalhandler.NewHandler(appraisalSvc, directorySvc, perms, auditSvc, counter, log),
		criteriahandler.NewHandler(criteriaSvc, perms, auditSvc, log),
		exclusionhandler.NewHandler(exclusionSvc, directorySvc, perms, auditSvc, log),
		reportshandler.NewHandler(scoringSvc, directorySvc, perms, log),
		audithandler.NewHandler(auditSvc, perms, log),
	}

	return &App{
		Config:  cfg,
		Log:     log,
		DB:      pool,
		Router:  NewRouter(cfg, log, collector, pool.Ping, handlers...),
		Jobs:    jobSvc,
		Metrics: collector,
	}, nil
}

// NewRouter builds the HTTP surface. ready backs /readyz; collector may be nil.
func NewRouter(cfg config.Config, log *logger.Logger, collector *metrics.Collector, ready func(context.Context) error, handlers ...routeRegistrar) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer(log))
	router.Use(middleware.Logger(log))
	if collector != nil {
		router.Use(middleware.Metrics(collector))
	}
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, log))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := ready(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if collector != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		for _, h := range handlers {
			h.RegisterRoutes(r)
		}
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.Fail(w, http.StatusNotFound, "not_found", "route not found", middleware.GetRequestID(r.Context()))
	})
	return router
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
	a.Log.Sync()
}

// Run loads configuration, serves until SIGINT or SIGTERM, then drains in-flight
// requests and flushes traces.
func Run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.Environment)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.Init(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("otel shutdown failed", "err", err)
		}
	}()

	app, err := New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()
	app.Jobs.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           otelhttp.NewHandler(app.Router, "acr.http"),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
