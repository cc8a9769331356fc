package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/foodeasy/backend/internal/api"
	"github.com/foodeasy/backend/internal/middleware"
	"github.com/foodeasy/backend/internal/service"
)

// Dependencies are the services the HTTP API is built from. RateLimiter
// and HealthChecks are optional.
type Dependencies struct {
	Auth         service.IAuthService
	Catalog      service.ICatalogService
	Views        service.IPlanViewService
	Generator    service.IPlanGenerator
	Mutations    service.IMutationService
	RateLimiter  *middleware.RateLimiter
	HealthChecks map[string]api.HealthCheck
	CORSOrigins  []string
	Log          *zap.SugaredLogger
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	api.RegisterValidators()

	router := gin.New()
	router.Use(middleware.Recovery(deps.Log))
	router.Use(middleware.RequestLogger(deps.Log))
	router.Use(middleware.CORS(deps.CORSOrigins...))

	router.GET("/health", api.NewHealthHandler(deps.HealthChecks).Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(deps.Auth))

	api.NewCatalogHandler(deps.Catalog).RegisterRoutes(v1)

	var limit []gin.HandlerFunc
	if deps.RateLimiter != nil {
		limit = append(limit, deps.RateLimiter.RateLimitMiddleware())
	}

	users := v1.Group("/users/:user_id")
	users.Use(middleware.RequireOwner("user_id"))
	{
		api.NewMealPlanHandler(deps.Views, deps.Generator, deps.Mutations).RegisterRoutes(users, limit...)
		api.NewMealPlanItemHandler(deps.Mutations).RegisterRoutes(users, limit...)
	}

	return router
}
