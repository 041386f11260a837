package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/danielolamide0/WurldMarket-sub001/internal/infra/config"
	"github.com/danielolamide0/WurldMarket-sub001/internal/transport/http/handlers"
	"github.com/danielolamide0/WurldMarket-sub001/internal/transport/http/middleware"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth     handlers.AuthFlows
	Accounts handlers.AccountFlows
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config         *config.AppConfig
	Logger         *zap.Logger
	RateLimiter    *middleware.RateLimiter
	HTTPMetrics    *middleware.HTTPMetrics
	TracerProvider trace.TracerProvider
	MetricsHandler prometheus.Gatherer
	Services       ServiceSet
	Database       DatabaseChecker
	Cache          CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if deps.TracerProvider != nil {
		r.Use(middleware.Tracing(serviceName(deps.Config), deps.TracerProvider))
	}
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))
	r.Use(deps.HTTPMetrics.Handler())

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	gatherer := deps.MetricsHandler
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := r.Group(deps.Config.App.APIBasePath())
	{
		limits := buildAuthMiddlewares(deps)

		authGroup := api.Group("/auth")
		if deps.Services.Auth != nil {
			handlers.NewAuthHandler(deps.Services.Auth, deps.Logger).RegisterRoutes(authGroup, limits)
		}

		if deps.Services.Accounts != nil {
			accountHandler := handlers.NewAccountHandler(deps.Services.Accounts)
			accountHandler.RegisterRoutes(authGroup, limits.Verify...)
			accountHandler.RegisterVendorRoutes(api.Group("/vendor"), limits.Verify...)
		}
	}

	handlers.RegisterSwagger(r)

	return r
}

func serviceName(cfg *config.AppConfig) string {
	if cfg.Telemetry.ServiceName != "" {
		return cfg.Telemetry.ServiceName
	}
	return cfg.App.Name
}

func buildAuthMiddlewares(deps Dependencies) handlers.AuthRouteMiddlewares {
	if deps.RateLimiter == nil || deps.Config == nil {
		return handlers.AuthRouteMiddlewares{}
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	return handlers.AuthRouteMiddlewares{
		Login:    ipLimit(deps.RateLimiter, "auth_login_ip", deps.Config.RateLimit.LoginMaxAttempts, window),
		SendCode: ipLimit(deps.RateLimiter, "auth_send_code_ip", deps.Config.RateLimit.SendCodeMaxAttempts, window),
		Verify:   ipLimit(deps.RateLimiter, "auth_verify_ip", deps.Config.RateLimit.VerifyMaxAttempts, window),
	}
}

func ipLimit(limiter *middleware.RateLimiter, name string, limit int, window time.Duration) []gin.HandlerFunc {
	if limit <= 0 {
		return nil
	}
	return []gin.HandlerFunc{limiter.RateLimit(middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	})}
}
