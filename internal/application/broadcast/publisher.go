package broadcast

import (
	"context"
	"time"

	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

const defaultPublishTimeout = 5 * time.Second

// Transport delivers a single publication to the realtime relay.
type Transport interface {
	Publish(ctx context.Context, pub Publication) error
}

// EventPublisher is what request handlers call after a use case has committed.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event)
}

// Publisher delivers events best-effort. It runs on a context detached from the request so
// a client disconnect does not drop notifications, bounded by its own timeout.
type Publisher struct {
	transport Transport
	timeout   time.Duration
	logger    logger.Interface
}

func NewPublisher(transport Transport, timeout time.Duration, logger logger.Interface) *Publisher {
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &Publisher{
		transport: transport,
		timeout:   timeout,
		logger:    logger,
	}
}

// Publish never fails; delivery errors are logged and dropped.
func (p *Publisher) Publish(ctx context.Context, events ...Event) {
	pubs := Fanout(events...)
	if len(pubs) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	for _, pub := range pubs {
		if err := p.transport.Publish(ctx, pub); err != nil {
			p.logger.Warnw("failed to publish broadcast event",
				"channel", pub.Channel,
				"event", pub.Event,
				"error", err,
			)
			continue
		}
		p.logger.Debugw("broadcast event published", "channel", pub.Channel, "event", pub.Event)
	}
}
