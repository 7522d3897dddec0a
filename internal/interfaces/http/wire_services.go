package http

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/helpdesk-inc/helpdesk/internal/application/broadcast"
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/auth"
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/cache"
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/permission"
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/pubsub"
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/realtime"
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/storage"
	"github.com/helpdesk-inc/helpdesk/internal/interfaces/http/middleware"
	"github.com/helpdesk-inc/helpdesk/internal/shared/goroutine"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
	"github.com/helpdesk-inc/helpdesk/internal/shared/services/markdown"
)

const bucketCheckTimeout = 10 * time.Second

func (c *Container) initInfrastructure() error {
	cfg := c.cfg
	log := c.log

	// Auth
	c.jwtSvc = auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer, cfg.Auth.JWT.AccessExpMinutes)
	enforcer, err := permission.NewEnforcer(c.db, log)
	if err != nil {
		return fmt.Errorf("failed to initialize permission enforcer: %w", err)
	}
	c.enforcer = enforcer

	c.authMiddleware = middleware.NewAuthMiddleware(c.jwtSvc, log)
	c.permissionMiddleware = middleware.NewPermissionMiddleware(c.enforcer, log)
	c.messageRateLimiter = middleware.NewRateLimiter(c.redis, "messages", cfg.RateLimit.MessagesPerMinute, time.Minute, log)
	c.channelAuthLimiter = middleware.NewRateLimiter(c.redis, "channel_auth", cfg.RateLimit.ChannelAuthPerMinute, time.Minute, log)

	// Attachments and rendering
	minioClient, err := storage.NewMinioClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}
	c.blobStore = storage.NewMinioBlobStore(minioClient, cfg.Storage, log)

	ctx, cancel := context.WithTimeout(context.Background(), bucketCheckTimeout)
	defer cancel()
	if err := c.blobStore.EnsureBucket(ctx, cfg.Storage.Region); err != nil {
		return fmt.Errorf("failed to prepare attachment bucket: %w", err)
	}
	c.renderer = markdown.NewRenderer()

	// Broadcasting
	c.broadcastBus = pubsub.NewRedisBroadcastBus(c.redis, cfg.Broadcast.Channel, log)
	c.publisher = broadcast.NewPublisher(c.broadcastBus, cfg.Broadcast.PublishTimeout, log)
	signer := broadcast.NewPusherSigner(cfg.Broadcast.AppKey, cfg.Broadcast.AppSecret)
	c.authorizer = broadcast.NewChannelAuthorizer(c.repos.ticketRepo, c.repos.userRepo, signer, log)
	c.hub = realtime.NewHub(c.authorizer, cache.NewRedisPresenceStore(c.redis), c.broadcastBus, log)

	log.Infow("infrastructure initialized",
		"bucket", cfg.Storage.Bucket,
		"broadcast_channel", cfg.Broadcast.Channel,
	)
	return nil
}

// startBroadcastSubscriber runs the bus subscription in the background and closes done
// when it returns.
func startBroadcastSubscriber(ctx context.Context, bus *pubsub.RedisBroadcastBus, hub *realtime.Hub, log logger.Interface, done chan struct{}) {
	goroutine.SafeGo(log, "broadcast-subscriber", func() {
		defer close(done)
		if err := bus.Subscribe(ctx, hub.Deliver); err != nil && !errors.Is(err, context.Canceled) {
			log.Errorw("broadcast subscriber exited", "error", err)
		}
	})
}
