package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appradicacion "github.com/tramites/backend/internal/application/radicacion"
	apptramite "github.com/tramites/backend/internal/application/tramite"
	"github.com/tramites/backend/internal/infrastructure/auth"
	"github.com/tramites/backend/internal/infrastructure/cache"
	"github.com/tramites/backend/internal/infrastructure/config"
	"github.com/tramites/backend/internal/infrastructure/event"
	"github.com/tramites/backend/internal/infrastructure/logger"
	"github.com/tramites/backend/internal/infrastructure/persistence"
	"github.com/tramites/backend/internal/infrastructure/scheduler"
	"github.com/tramites/backend/internal/infrastructure/telemetry"
	"github.com/tramites/backend/internal/interfaces/http/middleware"
	"github.com/tramites/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "github.com/tramites/backend/docs"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Trámites API
//	@version		1.0
//	@description	Multi-tenant filing of administrative procedures with gap-free filing numbers
//	@BasePath		/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.Telemetry.ServiceName,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// Telemetry
	exporter := telemetry.Exporter{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.CollectorEndpoint,
		Insecure:    cfg.Telemetry.Insecure,
		ServiceName: cfg.Telemetry.ServiceName,
		Version:     version,
	}
	tracerProvider, err := telemetry.NewTracerProvider(rootCtx, telemetry.Config{
		Exporter:      exporter,
		SamplingRatio: cfg.Telemetry.SamplingRatio,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(rootCtx, telemetry.MetricsConfig{
		Exporter:       exporter,
		ExportInterval: cfg.Telemetry.MetricsInterval,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(rootCtx, telemetry.LogsConfig{Exporter: exporter}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = telemetry.Bridge(log, loggerProvider, cfg.Telemetry.ServiceName, zapcore.InfoLevel)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiling.Enabled,
		ServerAddress:     cfg.Profiling.ServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Profiling.BasicAuthUser,
		BasicAuthPassword: cfg.Profiling.BasicAuthPassword,
		ProfileTypes:      cfg.Profiling.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && cfg.Profiling.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	log.Info("Starting trámites backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
		zap.Bool("telemetry", cfg.Telemetry.Enabled),
		zap.Bool("profiling", cfg.Profiling.Enabled),
	)

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		tracingCfg := telemetry.DefaultDBTracingConfig()
		tracingCfg.Enabled = true
		tracingCfg.DBName = cfg.Database.DBName
		tracingCfg.LogFullSQL = cfg.App.Env != "production"
		if err := telemetry.NewDBTracingPlugin(tracingCfg, log).RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Database tracing unavailable", zap.Error(err))
		}
	}
	dbMetricsCfg := telemetry.DefaultDBMetricsConfig()
	dbMetricsCfg.Enabled = meterProvider.IsEnabled()
	dbMetricsCfg.SlowQueryThreshold = cfg.Database.SlowThreshold
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, dbMetricsCfg, log)
	if err != nil {
		log.Warn("Database metrics unavailable", zap.Error(err))
	}

	// Repositories
	tramiteRepo := persistence.NewGormTramiteRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	counterStore := persistence.NewGormCounterStore(db.DB, cfg.Allocation.LockTimeout)

	// Public lookup cache
	publicCache, err := cache.NewPublicViewCacheFactory(cfg.Redis, cache.WithLogger(log)).CreateCache()
	if err != nil {
		log.Fatal("Failed to create public view cache", zap.Error(err))
	}
	defer func() {
		if err := publicCache.Close(); err != nil {
			log.Error("Error closing public view cache", zap.Error(err))
		}
	}()

	// Token revocation
	revocations, closeRevocations, err := auth.NewRevocationList(cfg.Redis)
	if err != nil {
		log.Warn("Redis token revocations unavailable, using in-memory list", zap.Error(err))
	}
	defer func() {
		if err := closeRevocations(); err != nil {
			log.Error("Error closing token revocations", zap.Error(err))
		}
	}()
	jwtService := auth.NewJWTService(cfg.JWT)

	// Domain events
	eventBus := event.NewInMemoryEventBus(log)
	notificationHandler := apptramite.NewNotificationHandler(log).
		WithNotifier(apptramite.NewLoggingRequesterNotifier(log))
	eventBus.Subscribe(notificationHandler)
	if err := eventBus.Start(rootCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Metrics
	var serviceMetrics apptramite.Metrics
	var tramiteMetrics *telemetry.TramiteMetrics
	if meterProvider.IsEnabled() {
		tramiteMetrics, err = telemetry.NewTramiteMetrics(telemetry.TramiteMetricsConfig{
			Meter:    meterProvider.Meter("tramites"),
			Logger:   log,
			Counters: counterStore,
		})
		if err != nil {
			log.Warn("Trámite metrics unavailable", zap.Error(err))
		} else {
			serviceMetrics = tramiteMetrics
			tramiteMetrics.StartPeriodicCollection(rootCtx, tenantRepo, cfg.Telemetry.MetricsInterval)
		}
	}

	// Application services
	tramiteService := apptramite.NewService(apptramite.ServiceConfig{
		Tramites:   tramiteRepo,
		Categories: categoryRepo,
		Tenants:    tenantRepo,
		Users:      userRepo,
		Counters:   counterStore,
		Retry: apptramite.RetryPolicy{
			MaxAttempts: cfg.Allocation.MaxAttempts,
			BaseBackoff: cfg.Allocation.BaseBackoff,
		},
		Cache:          publicCache,
		CacheTTL:       cfg.HTTP.PublicCacheTTL,
		EventPublisher: eventBus,
		Metrics:        serviceMetrics,
		Logger:         log,
	})
	statsService := appradicacion.NewStatsService(counterStore, tenantRepo)

	// Background jobs
	cleanupScheduler, err := scheduler.NewCounterCleanupScheduler(
		appradicacion.NewCounterCleanupService(counterStore, cfg.Scheduler.CounterRetentionYears, log),
		log,
		scheduler.CounterCleanupSchedulerConfig{
			Enabled:    cfg.Scheduler.Enabled,
			Interval:   cfg.Scheduler.CounterCleanupInterval,
			Timeout:    cfg.Scheduler.JobTimeout,
			RunOnStart: true,
		},
	)
	if err != nil {
		log.Fatal("Invalid counter cleanup scheduler configuration", zap.Error(err))
	}
	if err := cleanupScheduler.Start(rootCtx); err != nil {
		log.Fatal("Failed to start counter cleanup scheduler", zap.Error(err))
	}

	publicLimiter := middleware.NewRateLimiter(cfg.HTTP.PublicRateLimit, cfg.HTTP.PublicRateBurst)
	publicLimiter.StartJanitor(rootCtx, 5*time.Minute)

	engine := router.NewEngine(router.Dependencies{
		Logger:         log,
		HTTP:           cfg.HTTP,
		ServiceName:    cfg.Telemetry.ServiceName,
		Version:        version,
		TracingEnabled: tracerProvider.IsEnabled(),
		MeterProvider:  meterProvider,

		ProfilingEnabled: profiler.IsEnabled(),

		JWTService:    jwtService,
		Revocations:   revocations,
		PublicLimiter: publicLimiter,
		Tramites:      tramiteService,
		Stats:         statsService,
		DB:            db,
	})
	if cfg.App.Env != "production" {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// In-flight requests are done; stop the producers before the sinks.
	if err := cleanupScheduler.Stop(ctx); err != nil {
		log.Warn("Counter cleanup scheduler did not stop cleanly", zap.Error(err))
	}
	if err := eventBus.Stop(ctx); err != nil {
		log.Warn("Event bus did not drain", zap.Error(err))
	}
	if tramiteMetrics != nil {
		tramiteMetrics.Stop()
	}
	if dbMetrics != nil {
		dbMetrics.Stop()
	}
	stopBackground()

	if err := meterProvider.Shutdown(ctx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(ctx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler stop failed", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(ctx); err != nil {
		log.Warn("Logger provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
