package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arklim/orderflow-catalog/internal/infra/config"
	"github.com/arklim/orderflow-catalog/internal/infra/security"
	"github.com/arklim/orderflow-catalog/internal/transport/http/handlers"
	"github.com/arklim/orderflow-catalog/internal/transport/http/middleware"
	"github.com/arklim/orderflow-catalog/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Products   *usecase.ProductService
	Categories *usecase.CategoryService
	Stock      *usecase.StockService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config        *config.AppConfig
	Logger        *zap.Logger
	RateLimiter   *middleware.RateLimiter
	Services      ServiceSet
	TokenVerifier *security.TokenVerifier
	Database      DatabaseChecker
	Cache         CacheChecker
	Metrics       prometheus.Registerer
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
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.App.AllowedOrigins))

	if metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Registerer: deps.Metrics}); err != nil {
		deps.Logger.Warn("failed to register http metrics", zap.Error(err))
	} else {
		r.Use(metrics.Handler())
	}

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

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		if deps.TokenVerifier != nil {
			api.Use(middleware.Authenticate(deps.TokenVerifier))
		}

		if limiter := buildRateLimitMiddleware(deps); limiter != nil {
			api.Use(limiter)
		}

		writeMiddlewares := []gin.HandlerFunc{middleware.RequireScope("catalog:write")}

		productsGroup := api.Group("/products")

		productHandler := handlers.NewProductHandler(deps.Services.Products)
		productHandler.RegisterRoutes(productsGroup, writeMiddlewares...)

		stockHandler := handlers.NewStockHandler(deps.Services.Stock)
		stockHandler.RegisterRoutes(productsGroup, writeMiddlewares...)

		categoriesGroup := api.Group("/categories")

		categoryHandler := handlers.NewCategoryHandler(deps.Services.Categories)
		categoryHandler.RegisterRoutes(categoriesGroup, writeMiddlewares...)
	}

	return r
}

// buildRateLimitMiddleware assembles the fixed-window policies. Authenticated
// requests are matched first so a signed-in caller is never throttled under
// the stricter anonymous budget.
func buildRateLimitMiddleware(deps Dependencies) gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	cfg := deps.Config.RateLimit

	policies := make([]middleware.RateLimitPolicy, 0, 2)

	if cfg.AuthenticatedLimit > 0 {
		policies = append(policies, middleware.RateLimitPolicy{
			Name:      "authenticated",
			Limit:     cfg.AuthenticatedLimit,
			Window:    cfg.AuthenticatedWindow,
			Partition: middleware.UserPartition(),
		})
	}

	if cfg.AnonymousLimit > 0 {
		policies = append(policies, middleware.RateLimitPolicy{
			Name:      "anonymous",
			Limit:     cfg.AnonymousLimit,
			Window:    cfg.AnonymousWindow,
			Partition: middleware.IPPartition(),
		})
	}

	if len(policies) == 0 {
		return nil
	}

	return deps.RateLimiter.RateLimit(policies...)
}
