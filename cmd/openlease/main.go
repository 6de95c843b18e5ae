package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	olhttp "github.com/openlease/openlease/internal/adapter/http"
	"github.com/openlease/openlease/internal/adapter/localidp"
	olnats "github.com/openlease/openlease/internal/adapter/nats"
	"github.com/openlease/openlease/internal/adapter/otel"
	"github.com/openlease/openlease/internal/adapter/postgres"
	"github.com/openlease/openlease/internal/adapter/ristretto"
	"github.com/openlease/openlease/internal/config"
	"github.com/openlease/openlease/internal/logger"
	"github.com/openlease/openlease/internal/middleware"
	"github.com/openlease/openlease/internal/service"
)

const documentsBaseURL = "/api/v1/documents"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(logger.New(cfg.Logging))
	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"pg_max_conns", cfg.Postgres.MaxConns,
	)

	ctx := context.Background()

	// --- Telemetry ---
	if cfg.Telemetry.Enabled {
		shutdown, err := otel.Setup(ctx, cfg.Logging.Service, cfg.Telemetry.Endpoint)
		if err != nil {
			return fmt.Errorf("otel: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				slog.Warn("otel shutdown failed", "error", err)
			}
		}()
	}

	// --- Infrastructure ---
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	bus, err := olnats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = bus.Close() }()

	cache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cache.Close()

	var metrics *otel.Metrics
	if cfg.Telemetry.Enabled {
		metrics, err = otel.NewMetrics()
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	// --- Services ---
	store := postgres.NewStore(pool)
	blobs := postgres.NewBlobs(store, documentsBaseURL)
	idp := localidp.New(store)

	sessionSvc := service.NewSessionService(store, idp, cache, &cfg.Auth)
	lifecycleSvc := service.NewLifecycleService(store, sessionSvc, bus, metrics)
	propertySvc := service.NewPropertyService(store, sessionSvc)
	profileSvc := service.NewProfileService(store, blobs, cache)
	dashboardSvc := service.NewDashboardService(store, sessionSvc)

	// Out-of-band session invalidation from the identity provider.
	cancelInvalidation, err := sessionSvc.StartInvalidationSubscriber(ctx, bus)
	if err != nil {
		return fmt.Errorf("invalidation subscriber: %w", err)
	}
	defer cancelInvalidation()

	cleanupCtx, cancelCleanup := context.WithCancel(ctx)
	defer cancelCleanup()
	sessionSvc.StartTokenCleanup(cleanupCtx, cfg.Auth.CleanupInterval)

	// --- HTTP ---
	handlers := &olhttp.Handlers{
		Sessions:  sessionSvc,
		Lifecycle: lifecycleSvc,
		Property:  propertySvc,
		Profile:   profileSvc,
		Dashboard: dashboardSvc,
		Documents: blobs,
		ReadyCheck: func(ctx context.Context) error {
			return pool.Ping(ctx)
		},
	}

	authLimiter := middleware.NewRateLimiter(1, 10)
	stopLimiterCleanup := authLimiter.StartCleanup(5*time.Minute, 30*time.Minute)
	defer stopLimiterCleanup()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	if cfg.Telemetry.Enabled {
		r.Use(otel.HTTPMiddleware(cfg.Logging.Service))
	}
	r.Use(middleware.Auth(sessionSvc))

	olhttp.MountRoutes(r, handlers, authLimiter.Handler)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
