// api/router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/open-warden/warden/api/controller"
	"github.com/open-warden/warden/api/middleware"
)

func SetupRouter(
	controllers *controller.Controllers,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))
	router.Use(middleware.AppAuthMiddleware())

	api := router.Group("/api/v1")

	controllers.Policy.RegisterRoutes(api)
	controllers.Credential.RegisterRoutes(api)
	controllers.Proxy.RegisterRoutes(api)
	controllers.Template.RegisterRoutes(api)
	controllers.Audit.RegisterRoutes(api)

	return router
}
