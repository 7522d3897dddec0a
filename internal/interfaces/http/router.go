package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "github.com/helpdesk-inc/helpdesk/docs"
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/config"
	"github.com/helpdesk-inc/helpdesk/internal/interfaces/http/middleware"
	"github.com/helpdesk-inc/helpdesk/internal/interfaces/http/routes"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

// Router represents the HTTP router configuration
type Router struct {
	container *Container
}

// NewRouter creates a new HTTP router with all dependencies
func NewRouter(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) (*Router, error) {
	c, err := NewContainer(db, redisClient, cfg, log)
	if err != nil {
		return nil, err
	}
	return &Router{container: c}, nil
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes(cfg *config.Config) {
	c := r.container
	engine := c.engine

	engine.Use(middleware.RequestID())
	engine.Use(middleware.CustomLogger(c.log))
	engine.Use(middleware.Recovery(c.log))
	engine.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	engine.Use(middleware.SecurityHeaders())

	engine.GET("/health", c.hdlrs.healthHandler.HealthCheck)
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := engine.Group("/api")

	routes.SetupTicketRoutes(api, &routes.TicketRouteConfig{
		TicketHandler:        c.hdlrs.ticketHandler,
		AuthMiddleware:       c.authMiddleware,
		PermissionMiddleware: c.permissionMiddleware,
	})

	routes.SetupMessageRoutes(api, &routes.MessageRouteConfig{
		MessageHandler:       c.hdlrs.messageHandler,
		AuthMiddleware:       c.authMiddleware,
		PermissionMiddleware: c.permissionMiddleware,
		SendRateLimiter:      c.messageRateLimiter,
	})

	routes.SetupRealtimeRoutes(engine, &routes.RealtimeRouteConfig{
		RealtimeHandler:      c.hdlrs.realtimeHandler,
		AuthMiddleware:       c.authMiddleware,
		PermissionMiddleware: c.permissionMiddleware,
		AuthRateLimiter:      c.channelAuthLimiter,
	})
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.container.engine
}

// StartBackground starts the cross-instance broadcast subscriber.
func (r *Router) StartBackground() {
	r.container.StartBackground()
}

// Shutdown stops background work started by the router.
func (r *Router) Shutdown(ctx context.Context) {
	r.container.Shutdown(ctx)
}
