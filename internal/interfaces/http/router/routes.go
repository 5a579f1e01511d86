package router

import (
	"github.com/gin-gonic/gin"
	"github.com/tramites/backend/internal/infrastructure/auth"
	"github.com/tramites/backend/internal/infrastructure/config"
	"github.com/tramites/backend/internal/infrastructure/logger"
	"github.com/tramites/backend/internal/infrastructure/telemetry"
	"github.com/tramites/backend/internal/interfaces/http/handler"
	"github.com/tramites/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Dependencies holds everything the HTTP shell needs
type Dependencies struct {
	Logger         *zap.Logger
	HTTP           config.HTTPConfig
	ServiceName    string
	Version        string
	TracingEnabled bool
	MeterProvider  *telemetry.MeterProvider

	// ProfilingEnabled labels profile samples with route, method and tenant
	ProfilingEnabled bool

	JWTService    *auth.JWTService
	Revocations   auth.RevocationList
	PublicLimiter *middleware.RateLimiter

	Tramites handler.TramiteService
	Stats    handler.CounterStatsProvider
	DB       handler.Pinger
}

// NewEngine builds the gin engine with the global middleware stack and
// every route of the API:
//
//	GET  /health
//	GET  /api/v1/public/tramites/:filingNumber   rate limited, anonymous
//	POST /api/v1/tramites                         JWT
//	GET  /api/v1/tramites                         JWT
//	GET  /api/v1/tramites/:id                     JWT
//	POST /api/v1/tramites/:id/transitions         JWT
//	POST /api/v1/tramites/:id/reviewer            JWT
//	GET  /api/v1/radicacion/stats                 JWT, administrators
//	POST /api/v1/auth/logout                      JWT
//	GET  /api/v1/auth/me                          JWT
func NewEngine(deps Dependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()
	engine := gin.New()
	if len(deps.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(deps.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = deps.HTTP.CORSAllowOrigins

	// Order matters: the request ID must exist before the access log and the
	// span attributes read it; the span must exist before the error marker.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: deps.ServiceName,
		Enabled:     deps.TracingEnabled,
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: deps.MeterProvider,
		Logger:        log,
	}))
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig()))
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.Timeout(deps.HTTP.RequestTimeout))
	if deps.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(deps.HTTP.MaxBodySize))
	}

	engine.GET("/health", handler.NewHealthHandler(deps.DB, deps.Version).Health)

	tramiteHandler := handler.NewTramiteHandler(deps.Tramites)
	publicHandler := handler.NewPublicHandler(deps.Tramites)
	radicacionHandler := handler.NewRadicacionHandler(deps.Stats)
	authHandler := handler.NewAuthHandler(deps.Revocations)

	limiter := deps.PublicLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(deps.HTTP.PublicRateLimit, deps.HTTP.PublicRateBurst)
	}

	authenticated := []gin.HandlerFunc{
		middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{
			JWTService:  deps.JWTService,
			Revocations: deps.Revocations,
			Logger:      log,
		}),
		middleware.TenantScope(log),
		middleware.TracingAttributeInjector(),
		middleware.Profiling(deps.ProfilingEnabled),
	}

	mountAPI(engine,
		NewRouteGroup("/public", middleware.RateLimit(limiter), middleware.Profiling(deps.ProfilingEnabled)).
			GET("/tramites/:filingNumber", publicHandler.LookupStatus),

		NewRouteGroup("/tramites", authenticated...).
			POST("", tramiteHandler.Create).
			GET("", tramiteHandler.List).
			GET("/:id", tramiteHandler.Get).
			POST("/:id/transitions", tramiteHandler.Transition).
			POST("/:id/reviewer", tramiteHandler.AssignReviewer),

		NewRouteGroup("/radicacion", authenticated...).
			GET("/stats", middleware.RequireAdmin(), radicacionHandler.Stats),

		NewRouteGroup("/auth", authenticated...).
			POST("/logout", authHandler.Logout).
			GET("/me", authHandler.Me),
	)
	return engine
}
