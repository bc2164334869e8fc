package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"paydesk/internal/domain/attendance"
	"paydesk/internal/domain/audit"
	"paydesk/internal/domain/auth"
	"paydesk/internal/domain/dashboard"
	"paydesk/internal/domain/employees"
	"paydesk/internal/domain/leave"
	"paydesk/internal/domain/lookups"
	"paydesk/internal/domain/notifications"
	"paydesk/internal/domain/salary"
	"paydesk/internal/platform/cache"
	"paydesk/internal/platform/config"
	cryptoutil "paydesk/internal/platform/crypto"
	"paydesk/internal/platform/db"
	"paydesk/internal/platform/email"
	"paydesk/internal/platform/jobs"
	"paydesk/internal/platform/metrics"
	"paydesk/internal/transport/http/api"
	attendancehandler "paydesk/internal/transport/http/handlers/attendance"
	audithandler "paydesk/internal/transport/http/handlers/audit"
	authhandler "paydesk/internal/transport/http/handlers/auth"
	dashboardhandler "paydesk/internal/transport/http/handlers/dashboard"
	employeeshandler "paydesk/internal/transport/http/handlers/employees"
	leavehandler "paydesk/internal/transport/http/handlers/leave"
	lookupshandler "paydesk/internal/transport/http/handlers/lookups"
	notificationshandler "paydesk/internal/transport/http/handlers/notifications"
	salaryhandler "paydesk/internal/transport/http/handlers/salary"
	"paydesk/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Cache   cache.Cache
	Jobs    *jobs.Service
	Metrics *metrics.Collector
	Router  http.Handler
}

// New connects to the database, prepares the schema and wires every service
// and handler. Close releases what New opened.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	app := &App{Config: cfg, DB: pool, Metrics: metrics.New()}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			app.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			app.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Cache, err = cache.New(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("cache: %w", err)
	}
	mailer := email.New(cfg)

	authStore := auth.NewStore(pool)
	authService := auth.NewService(authStore, cfg.JWTSecret, cfg.TokenTTL)
	otpService := auth.NewOTPService(authStore, crypto, mailer, cfg.EmailFrom, cfg.OTPTTL)
	provisioner := auth.NewProvisioner(authStore, mailer, cfg.EmailFrom)
	notificationsService := notifications.New(notifications.NewStore(pool), mailer, cfg.EmailFrom)

	salaryService := salary.NewService(salary.NewStore(pool), crypto, cfg.PayslipDir, nil)
	salaryService.Notifier = notificationsService
	dashboardService := dashboard.NewService(dashboard.NewStore(pool), salaryService, app.Cache, cfg.DashboardCacheTTL)
	salaryService.Invalidator = dashboardService

	employeesService := employees.NewService(employees.NewStore(pool), dashboardService)
	attendanceService := attendance.NewService(attendance.NewStore(pool), dashboardService)
	leaveService := leave.NewService(leave.NewStore(pool))
	leaveService.Notifier = notificationsService
	lookupsService := lookups.NewService(lookups.NewStore(pool), crypto)
	auditService := audit.New(pool)

	idempotency := middleware.NewIdempotencyStore(pool, cfg.IdempotencyTTL)
	app.Jobs = jobs.New(pool, cfg, app.Metrics)
	app.Jobs.Maintenance = func(ctx context.Context) (any, error) {
		purged, err := idempotency.PurgeExpired(ctx)
		return map[string]int64{"idempotencyKeysPurged": purged}, err
	}
	app.Jobs.Generate = func(ctx context.Context, monthYear string) (any, error) {
		return salaryService.Generate(ctx, monthYear)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(app.Metrics))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	var limitOpts []middleware.RateLimitOption
	if counter, ok := app.Cache.(middleware.RateCounter); ok {
		limitOpts = append(limitOpts, middleware.WithCounter(counter))
	}
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute, limitOpts...))
	router.Use(middleware.Auth(cfg.JWTSecret, authStore))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute, limitOpts...))

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
			api.Success(w, app.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authService, otpService, cfg.OTPEcho)
		authHandler.Audit = auditService
		authHandler.RegisterPublicRoutes(r)
		authHandler.RegisterRoutes(r)

		employeesHandler := employeeshandler.NewHandler(employeesService, provisioner, authService)
		employeesHandler.Audit = auditService
		employeesHandler.RegisterRoutes(r)

		attendancehandler.NewHandler(attendanceService, authService).RegisterRoutes(r)

		leaveHandler := leavehandler.NewHandler(leaveService, authService)
		leaveHandler.Audit = auditService
		leaveHandler.RegisterRoutes(r)

		salaryHandler := salaryhandler.NewHandler(salaryService, app.Jobs, idempotency, authService)
		salaryHandler.Runs = app.Jobs
		salaryHandler.Audit = auditService
		salaryHandler.RegisterRoutes(r)

		dashboardhandler.NewHandler(dashboardService, authService).RegisterRoutes(r)
		lookupshandler.NewHandler(lookupsService, authService).RegisterRoutes(r)
		audithandler.NewHandler(auditService, authService).RegisterRoutes(r)
		notificationshandler.NewHandler(notificationsService).RegisterRoutes(r)
	})

	app.Router = router
	return app, nil
}

func (a *App) Close() {
	if a.Jobs != nil {
		a.Jobs.Stop()
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			slog.Warn("cache close failed", "err", err)
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func Run() error {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Jobs.Start(ctx); err != nil {
		return fmt.Errorf("jobs: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("paydesk listening", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
