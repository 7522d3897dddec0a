package http

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/helpdesk-inc/helpdesk/internal/application/broadcast"
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/auth"
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/config"
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/permission"
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/pubsub"
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/realtime"
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/storage"
	"github.com/helpdesk-inc/helpdesk/internal/interfaces/http/middleware"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
	"github.com/helpdesk-inc/helpdesk/internal/shared/services/markdown"
)

// Container holds all infrastructure components, repositories, use cases, handlers,
// and the broadcast subscriber. It wires everything together and owns Shutdown.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	repos *repositories
	ucs   *allUseCases
	hdlrs *allHandlers

	// Middlewares
	authMiddleware       *middleware.AuthMiddleware
	permissionMiddleware *middleware.PermissionMiddleware
	messageRateLimiter   *middleware.RateLimiter
	channelAuthLimiter   *middleware.RateLimiter

	// Auth
	jwtSvc   *auth.JWTService
	enforcer *permission.Enforcer

	// Messages
	blobStore *storage.MinioBlobStore
	renderer  markdown.Renderer

	// Broadcasting
	broadcastBus *pubsub.RedisBroadcastBus
	publisher    *broadcast.Publisher
	authorizer   *broadcast.ChannelAuthorizer
	hub          *realtime.Hub

	busCancel   context.CancelFunc
	busCancelMu sync.Mutex
	busDone     chan struct{}
}

// NewContainer creates a Container with all dependencies wired together. The redis client
// is owned by the caller.
func NewContainer(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
		redis:  redisClient,
	}

	// Section 1: Repositories
	c.initRepositories()

	// Section 2: Infrastructure - auth, storage, broadcasting
	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	// Section 3: Use cases
	c.initUseCases()

	// Section 4: Handlers
	c.initHandlers()

	return c, nil
}

// StartBackground relays bus envelopes to the sockets held by this instance until Shutdown.
func (c *Container) StartBackground() {
	ctx, cancel := context.WithCancel(context.Background())
	c.busCancelMu.Lock()
	c.busCancel = cancel
	c.busDone = make(chan struct{})
	done := c.busDone
	c.busCancelMu.Unlock()

	startBroadcastSubscriber(ctx, c.broadcastBus, c.hub, c.log, done)
}

// Shutdown stops the broadcast subscriber and waits for it to return.
func (c *Container) Shutdown(ctx context.Context) {
	c.busCancelMu.Lock()
	cancel, done := c.busCancel, c.busDone
	c.busCancel = nil
	c.busCancelMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()

	select {
	case <-done:
		c.log.Infow("broadcast subscriber stopped")
	case <-ctx.Done():
		c.log.Warnw("timed out waiting for broadcast subscriber", "error", ctx.Err())
	}
}
