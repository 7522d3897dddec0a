package routes

import (
	"github.com/gin-gonic/gin"

	realtimehandlers "github.com/helpdesk-inc/helpdesk/internal/interfaces/http/handlers/realtime"
	"github.com/helpdesk-inc/helpdesk/internal/interfaces/http/middleware"
)

type RealtimeRouteConfig struct {
	RealtimeHandler      *realtimehandlers.Handler
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
	AuthRateLimiter      *middleware.RateLimiter
}

// SetupRealtimeRoutes registers the channel authorization endpoint and the socket upgrade.
// Both live outside /api where realtime client libraries expect them.
func SetupRealtimeRoutes(engine *gin.Engine, config *RealtimeRouteConfig) {
	perm := config.PermissionMiddleware.RequirePermission

	engine.POST("/broadcasting/auth",
		config.AuthMiddleware.RequireAuth(),
		perm("broadcast", "auth"),
		config.AuthRateLimiter.Limit(),
		config.RealtimeHandler.AuthorizeChannel)

	engine.GET("/ws",
		config.AuthMiddleware.RequireAuth(),
		perm("broadcast", "connect"),
		config.RealtimeHandler.Connect)
}
