package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	auditapp "github.com/constructora/backend/internal/application/audit"
	clientapp "github.com/constructora/backend/internal/application/client"
	housingapp "github.com/constructora/backend/internal/application/housing"
	ledgerapp "github.com/constructora/backend/internal/application/ledger"
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/constructora/backend/internal/infrastructure/auth"
	"github.com/constructora/backend/internal/infrastructure/cache"
	"github.com/constructora/backend/internal/infrastructure/config"
	"github.com/constructora/backend/internal/infrastructure/event"
	"github.com/constructora/backend/internal/infrastructure/logger"
	"github.com/constructora/backend/internal/infrastructure/mailer"
	"github.com/constructora/backend/internal/infrastructure/migration"
	"github.com/constructora/backend/internal/infrastructure/persistence"
	"github.com/constructora/backend/internal/infrastructure/scheduler"
	"github.com/constructora/backend/internal/infrastructure/telemetry"
	"github.com/constructora/backend/internal/interfaces/http/handler"
	"github.com/constructora/backend/internal/interfaces/http/middleware"
	"github.com/constructora/backend/internal/interfaces/http/router"
	"github.com/constructora/backend/migrations"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry providers are no-ops when disabled
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = telemetry.Bridge(log, lp, logger.ParseLevel(cfg.Log.Level))

	log.Info("Starting constructora backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version),
		zap.String("port", cfg.App.Port),
	)

	if cfg.Database.AutoMigrate {
		if err := migrateUp(cfg, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	gormLog := logger.NewGormLogger(log,
		logger.MapGormLogLevel(cfg.Log.Level),
		cfg.Telemetry.DBSlowQueryThresh,
		cfg.Telemetry.DBLogFullSQL,
	)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}, log).RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, mp, telemetry.DefaultDBMetricsConfig(), log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}
	if dbMetrics != nil {
		dbMetrics.StartPoolStatsCollection(ctx)
		defer dbMetrics.Stop()
	}

	// Repositories
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	houseRepo := persistence.NewGormHouseRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	renunciationRepo := persistence.NewGormRenunciationRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	auditLogRepo := persistence.NewGormAuditLogRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)

	scope := persistence.NewGormTransactionScope(db.DB, cfg.Database.TxMaxRetries).WithLogger(log)

	// Event bus and audit sink
	eventBus := event.NewInMemoryEventBus(log)

	idempotencyStore, err := cache.NewIdempotencyStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	sink := auditapp.NewSinkService(auditLogRepo, notificationRepo, log)
	if m := mailer.NewSendGridMailer(cfg.Mailer, log); m != nil {
		sink.WithMailer(m)
		log.Info("Notification e-mail enabled", zap.Int("recipients", len(cfg.Mailer.Recipients)))
	}
	eventBus.Subscribe(event.NewIdempotentHandler(
		auditapp.NewEventHandler(sink, log),
		idempotencyStore,
		shared.IdempotencyConfig{TTL: cfg.Idempotency.TTL, Enabled: true},
		log,
	))

	// Application services
	projectService := housingapp.NewProjectService(projectRepo, houseRepo)
	houseService := housingapp.NewHouseService(scope, projectRepo, houseRepo)

	clientService := clientapp.NewClientService(scope, clientRepo)
	clientService.SetEventPublisher(eventBus)
	processService := clientapp.NewProcessService(scope, clientRepo)
	processService.SetEventPublisher(eventBus)
	renunciationService := clientapp.NewRenunciationService(scope, renunciationRepo)
	renunciationService.SetEventPublisher(eventBus)

	paymentService := ledgerapp.NewPaymentService(scope, paymentRepo, clientRepo, projectRepo)
	paymentService.SetEventPublisher(eventBus)

	var ledgerMetrics *telemetry.LedgerMetrics
	if mp.IsEnabled() {
		ledgerMetrics, err = telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
			Meter:     mp.Meter("constructora/ledger"),
			Logger:    log,
			Portfolio: telemetry.NewGormPortfolioProvider(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to initialize ledger metrics", zap.Error(err))
		}
		paymentService.SetMetrics(ledgerMetrics)
		defer ledgerMetrics.Stop()
	}

	reconciliationService := ledgerapp.NewReconciliationService(houseRepo, paymentRepo, eventBus, log)

	// Scheduled jobs
	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs, err = setupScheduler(ctx, cfg, reconciliationService, ledgerMetrics, log)
		if err != nil {
			log.Fatal("Failed to initialize scheduler", zap.Error(err))
		}
		jobs.Start()
	} else if ledgerMetrics != nil {
		ledgerMetrics.StartPeriodicCollection(ctx, cfg.Telemetry.PortfolioCollectPeriod)
	}

	// HTTP
	middleware.SetupValidator()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins

	engine.Use(
		middleware.Tracing(cfg.Telemetry.ServiceName, tp.IsEnabled()),
		middleware.RequestID(log),
		logger.Recovery(log, nil),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(corsConfig),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.HTTPMetrics(mp),
	)

	handlers := router.Handlers{
		System:       handler.NewSystemHandler(cfg.App.Name, cfg.App.Version, map[string]handler.Pinger{"database": db}),
		Projects:     handler.NewProjectHandler(projectService),
		Houses:       handler.NewHouseHandler(houseService),
		Clients:      handler.NewClientHandler(clientService, processService, paymentService),
		Payments:     handler.NewPaymentHandler(paymentService),
		Renunciation: handler.NewRenunciationHandler(renunciationService),
		Audit:        handler.NewAuditHandler(sink),
		Admin:        handler.NewAdminHandler(reconciliationService),
	}

	r := router.NewRouter(engine,
		router.WithMiddleware(
			middleware.JWTAuth(middleware.JWTMiddlewareConfig{
				Verifier:  auth.NewJWTService(cfg.Auth),
				Enabled:   cfg.Auth.Enabled,
				SkipPaths: []string{"/api/v1/health"},
				Logger:    log,
			}),
			middleware.SpanAttributes(),
		),
	)
	r.Register(router.APIRoutes(handlers, middleware.IdempotencyKey(idempotencyStore, cfg.Idempotency.TTL, log))...)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serverErr:
		log.Error("Server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if jobs != nil {
		if err := jobs.Stop(shutdownCtx); err != nil {
			log.Warn("Scheduler did not stop cleanly", zap.Error(err))
		}
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not stop cleanly", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := lp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Logger provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// migrateUp applies the embedded migrations on a dedicated connection.
// The migrator closes the connection it is given.
func migrateUp(cfg *config.Config, log *zap.Logger) error {
	sqlDB, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migrations.FS, log)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() { _ = m.Close() }()
	return m.Up()
}

func setupScheduler(
	ctx context.Context,
	cfg *config.Config,
	reconciler scheduler.Reconciler,
	ledgerMetrics *telemetry.LedgerMetrics,
	log *zap.Logger,
) (*scheduler.Scheduler, error) {
	s := scheduler.New(scheduler.Config{
		WithSeconds: cfg.Scheduler.CronWithSeconds,
		JobTimeout:  cfg.Scheduler.JobTimeout,
	}, log)

	if err := s.Register(cfg.Scheduler.ReconcileSchedule, scheduler.NewReconcileJob(reconciler, log)); err != nil {
		return nil, err
	}
	if ledgerMetrics != nil {
		snapshot := scheduler.NewFuncJob("portfolio_snapshot", func(ctx context.Context) error {
			ledgerMetrics.CollectPortfolio(ctx)
			return nil
		})
		if err := s.Register("@every "+cfg.Telemetry.PortfolioCollectPeriod.String(), snapshot); err != nil {
			return nil, err
		}
	}

	if cfg.Scheduler.ReconcileOnStartup {
		go func() {
			if err := s.RunNow(ctx, scheduler.ReconcileJobName); err != nil {
				log.Warn("Startup reconciliation failed", zap.Error(err))
			}
		}()
	}
	return s, nil
}
