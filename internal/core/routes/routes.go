package routes

import (
	"fieldstock/internal/core/container"
	"fieldstock/internal/middleware"
	"fieldstock/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(c *container.Container) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(c.Logger),
		middleware.RecoveryMiddleware(c.Logger),
		middleware.Metrics(c.HTTPMetrics),
		middleware.TimeoutMiddleware(c.Config.Request.Timeout),
	)
	if rate := c.Config.Rate; rate.Limit > 0 && rate.Window > 0 {
		router.Use(middleware.RateLimit(middleware.NewRateLimiter(rate.Limit, rate.Window)))
	}

	RegisterUtilityRoutes(router, c)
	RegisterProtectedRoutes(router, c)

	return router
}

func RegisterProtectedRoutes(router *gin.Engine, c *container.Container) {
	protectedRoutes := router.Group("")
	protectedRoutes.Use(security.JWTMiddleware([]byte(c.Config.JWT.Secret)))

	c.CatalogHandler.RegisterRoutes(protectedRoutes)
	c.PoolHandler.RegisterRoutes(protectedRoutes)
	c.LedgerHandler.RegisterRoutes(protectedRoutes)
	c.RequestHandler.RegisterRoutes(protectedRoutes)
	c.TransferHandler.RegisterRoutes(protectedRoutes)
	c.AuditLogHandler.RegisterRoutes(protectedRoutes)
}

func RegisterUtilityRoutes(router *gin.Engine, c *container.Container) {
	router.GET("/health", c.Health.Handler())
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})))
}
