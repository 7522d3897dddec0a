package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"

	"github.com/helpdesk-inc/helpdesk/internal/application/broadcast"
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/pubsub"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

const sendBufferSize = 256

// SubscriptionDecider admits or rejects channel subscriptions.
type SubscriptionDecider interface {
	Decide(ctx context.Context, p authorization.Principal, channelName string) (*broadcast.Grant, error)
}

// PresenceStore tracks presence channel membership shared by every gateway instance.
type PresenceStore interface {
	Join(ctx context.Context, channel, socketID string, member broadcast.PresenceMember) (bool, error)
	Leave(ctx context.Context, channel, socketID string) (bool, error)
	Members(ctx context.Context, channel string) ([]broadcast.PresenceMember, error)
}

// Client is one connected socket.
type Client struct {
	SocketID  string
	Principal authorization.Principal
	Send      chan []byte

	// channels maps canonical channel names to the member this socket joined as, nil for
	// non-presence channels.
	channels map[string]*broadcast.PresenceMember
	closed   bool
}

// Hub routes publications to the sockets subscribed on this instance.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	subs    map[string]map[string]*Client

	decider   SubscriptionDecider
	presence  PresenceStore
	transport broadcast.Transport
	logger    logger.Interface
}

func NewHub(decider SubscriptionDecider, presence PresenceStore, transport broadcast.Transport, logger logger.Interface) *Hub {
	return &Hub{
		clients:   make(map[string]*Client),
		subs:      make(map[string]map[string]*Client),
		decider:   decider,
		presence:  presence,
		transport: transport,
		logger:    logger,
	}
}

// Register adds a socket for p and queues the connection_established frame.
func (h *Hub) Register(p authorization.Principal) *Client {
	c := &Client{
		SocketID:  newSocketID(),
		Principal: p,
		Send:      make(chan []byte, sendBufferSize),
		channels:  make(map[string]*broadcast.PresenceMember),
	}

	h.mu.Lock()
	h.clients[c.SocketID] = c
	h.mu.Unlock()

	h.logger.Infow("realtime client connected", "socket_id", c.SocketID, "user_id", p.ID)
	h.send(c, ServerFrame{
		Event: FrameConnectionEstablished,
		Data:  connectionData{SocketID: c.SocketID, ActivityTimeout: int(pongWait.Seconds())},
	})
	return c
}

// Unregister drops every subscription of c and closes its send queue.
func (h *Hub) Unregister(ctx context.Context, c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.SocketID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.SocketID)
	joined := make(map[string]*broadcast.PresenceMember, len(c.channels))
	for canonical, member := range c.channels {
		h.removeSubLocked(canonical, c.SocketID)
		joined[canonical] = member
	}
	c.channels = map[string]*broadcast.PresenceMember{}
	c.closed = true
	close(c.Send)
	h.mu.Unlock()

	for canonical, member := range joined {
		if member != nil {
			h.leavePresence(ctx, canonical, c.SocketID, member)
		}
	}
	h.logger.Infow("realtime client disconnected", "socket_id", c.SocketID, "user_id", c.Principal.ID)
}

// HandleFrame executes one client request.
func (h *Hub) HandleFrame(ctx context.Context, c *Client, f ClientFrame) {
	switch f.Event {
	case FrameSubscribe:
		h.subscribe(ctx, c, f.Channel)
	case FrameUnsubscribe:
		h.unsubscribe(ctx, c, f.Channel)
	case FramePing:
		h.send(c, ServerFrame{Event: FramePong})
	default:
		h.sendError(c, f.Channel, errors.NewBadRequestError("unsupported event", f.Event))
	}
}

func (h *Hub) subscribe(ctx context.Context, c *Client, name string) {
	grant, err := h.decider.Decide(ctx, c.Principal, name)
	if err != nil {
		h.sendError(c, name, err)
		return
	}
	canonical := grant.Channel.Canonical()

	h.mu.Lock()
	if c.closed {
		h.mu.Unlock()
		return
	}
	_, already := c.channels[canonical]
	c.channels[canonical] = grant.Member
	if h.subs[canonical] == nil {
		h.subs[canonical] = make(map[string]*Client)
	}
	h.subs[canonical][c.SocketID] = c
	h.mu.Unlock()

	if grant.Member == nil || already {
		h.send(c, ServerFrame{Event: FrameSubscriptionSucceeded, Channel: name})
		return
	}

	first, err := h.presence.Join(ctx, canonical, c.SocketID, *grant.Member)
	if err != nil {
		h.logger.Warnw("failed to record presence", "channel", canonical, "socket_id", c.SocketID, "error", err)
	}
	members, err := h.presence.Members(ctx, canonical)
	if err != nil {
		h.logger.Warnw("failed to list presence members", "channel", canonical, "error", err)
		members = []broadcast.PresenceMember{*grant.Member}
	}

	h.send(c, ServerFrame{
		Event:   FrameSubscriptionSucceeded,
		Channel: name,
		Data:    presenceData{Count: len(members), Members: members},
	})

	if first {
		h.relay(ctx, canonical, FrameMemberAdded, *grant.Member, c.SocketID)
	}
}

func (h *Hub) unsubscribe(ctx context.Context, c *Client, name string) {
	ch, err := broadcast.ParseChannel(name)
	if err != nil {
		h.sendError(c, name, err)
		return
	}
	canonical := ch.Canonical()

	h.mu.Lock()
	member, ok := c.channels[canonical]
	if ok {
		delete(c.channels, canonical)
		h.removeSubLocked(canonical, c.SocketID)
	}
	h.mu.Unlock()

	if ok && member != nil {
		h.leavePresence(ctx, canonical, c.SocketID, member)
	}
	h.send(c, ServerFrame{Event: FrameUnsubscribed, Channel: name})
}

func (h *Hub) leavePresence(ctx context.Context, canonical, socketID string, member *broadcast.PresenceMember) {
	last, err := h.presence.Leave(ctx, canonical, socketID)
	if err != nil {
		h.logger.Warnw("failed to remove presence", "channel", canonical, "socket_id", socketID, "error", err)
		return
	}
	if last {
		h.relay(ctx, canonical, FrameMemberRemoved, *member, socketID)
	}
}

// relay announces membership changes through the transport so every instance sees them.
func (h *Hub) relay(ctx context.Context, canonical, event string, member broadcast.PresenceMember, socketID string) {
	err := h.transport.Publish(context.WithoutCancel(ctx), broadcast.Publication{
		Channel:         canonical,
		Event:           event,
		Payload:         member,
		ExcludeSocketID: socketID,
	})
	if err != nil {
		h.logger.Warnw("failed to relay presence change", "channel", canonical, "event", event, "error", err)
	}
}

// Deliver pushes an envelope read from the bus to local subscribers.
func (h *Hub) Deliver(env pubsub.Envelope) {
	ch, err := broadcast.ParseChannel(env.Channel)
	if err != nil {
		h.logger.Warnw("dropping envelope for unknown channel", "channel", env.Channel)
		return
	}

	frame, err := encodeFrame(ServerFrame{Event: env.Event, Channel: env.Channel, Data: json.RawMessage(env.Data)})
	if err != nil {
		h.logger.Warnw("failed to encode frame", "channel", env.Channel, "event", env.Event, "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.subs[ch.Canonical()]))
	for id, c := range h.subs[ch.Canonical()] {
		if id != env.ExcludeSocketID {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.enqueue(c, frame)
	}
}

// Subscribers counts local sockets on a channel.
func (h *Hub) Subscribers(channel string) int {
	ch, err := broadcast.ParseChannel(channel)
	if err != nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[ch.Canonical()])
}

func (h *Hub) removeSubLocked(canonical, socketID string) {
	set := h.subs[canonical]
	delete(set, socketID)
	if len(set) == 0 {
		delete(h.subs, canonical)
	}
}

func (h *Hub) send(c *Client, f ServerFrame) {
	data, err := encodeFrame(f)
	if err != nil {
		h.logger.Warnw("failed to encode frame", "event", f.Event, "error", err)
		return
	}
	h.enqueue(c, data)
}

func (h *Hub) sendError(c *Client, channel string, err error) {
	data := errorData{Type: "internal_error", Message: "request failed", Code: http.StatusInternalServerError}
	if appErr := errors.GetAppError(err); appErr != nil {
		data = errorData{Type: string(appErr.Type), Message: appErr.Message, Code: appErr.Code}
	}
	h.send(c, ServerFrame{Event: FrameError, Channel: channel, Data: data})
}

// enqueue never blocks. A client whose queue is full misses the frame.
func (h *Hub) enqueue(c *Client, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- data:
	default:
		h.logger.Warnw("realtime client send queue full, dropping frame", "socket_id", c.SocketID)
	}
}

// newSocketID returns a Pusher-style "<int>.<int>" id, the only form channel signing accepts.
func newSocketID() string {
	return fmt.Sprintf("%d.%d", rand.Uint32(), rand.Uint32())
}
