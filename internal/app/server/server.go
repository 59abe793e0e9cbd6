package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Leeseongbin2/smm-panel-v2/internal/domain/auth"
	"github.com/Leeseongbin2/smm-panel-v2/internal/domain/reports"
	"github.com/Leeseongbin2/smm-panel-v2/internal/domain/timeclock"
	"github.com/Leeseongbin2/smm-panel-v2/internal/platform/config"
	"github.com/Leeseongbin2/smm-panel-v2/internal/platform/db"
	"github.com/Leeseongbin2/smm-panel-v2/internal/platform/metrics"
	"github.com/Leeseongbin2/smm-panel-v2/internal/transport/http/api"
	authhandler "github.com/Leeseongbin2/smm-panel-v2/internal/transport/http/handlers/auth"
	reportshandler "github.com/Leeseongbin2/smm-panel-v2/internal/transport/http/handlers/reports"
	timeclockhandler "github.com/Leeseongbin2/smm-panel-v2/internal/transport/http/handlers/timeclock"
	"github.com/Leeseongbin2/smm-panel-v2/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector
}

// New wires the whole application: database, domain services, and the HTTP
// router. The caller owns the pool and must call Close.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	collector := metrics.New()

	authStore := auth.NewStore(pool)
	timeclockService := timeclock.NewService(timeclock.NewStore(pool))
	reportsService := reports.NewService(timeclockService)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

		authHandler := authhandler.NewHandler(authStore, cfg.JWTSecret, cfg.TokenTTL, cfg.AllowSelfSignup)
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthRateLimit(max(cfg.RateLimitPerMinute/4, 1), time.Minute))
			r.Post("/auth/login", authHandler.HandleLogin)
			r.Post("/auth/register", authHandler.HandleRegister)
		})

		timeclockHandler := timeclockhandler.NewHandler(timeclockService, collector, cfg.LogPageSize)
		timeclockHandler.RegisterRoutes(r)

		reportsHandler := reportshandler.NewHandler(reportsService)
		reportsHandler.RegisterRoutes(r)
	})

	return &App{Config: cfg, DB: pool, Router: router, Metrics: collector}, nil
}

func (a *App) Close() {
	a.DB.Close()
}

func Run() {
	cfg := config.Load()

	ctx := context.Background()
	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	log.Printf("timeclock server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
