package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pusher/pusher-http-go/v5"

	"github.com/helpdesk-inc/helpdesk/internal/domain/ticket"
	"github.com/helpdesk-inc/helpdesk/internal/domain/user"
	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

// PresenceMember is the identity shown to the other members of a presence channel.
type PresenceMember struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func (m PresenceMember) memberData() pusher.MemberData {
	id := strconv.FormatUint(uint64(m.ID), 10)
	return pusher.MemberData{
		UserID: id,
		UserInfo: map[string]string{
			"id":   id,
			"name": m.Name,
			"role": m.Role,
		},
	}
}

// Grant is a positive subscription decision.
type Grant struct {
	Channel Channel
	Member  *PresenceMember
}

// AuthResponse is the signed acknowledgement returned to realtime clients.
type AuthResponse struct {
	Auth        string `json:"auth"`
	ChannelData string `json:"channel_data,omitempty"`
}

// ChannelSigner signs subscription acknowledgements in the Pusher wire format.
// *pusher.Client implements it.
type ChannelSigner interface {
	AuthorizePrivateChannel(params []byte) ([]byte, error)
	AuthorizePresenceChannel(params []byte, member pusher.MemberData) ([]byte, error)
}

// NewPusherSigner returns a client that only signs; it never calls the Pusher HTTP API.
func NewPusherSigner(key, secret string) *pusher.Client {
	return &pusher.Client{Key: key, Secret: secret}
}

// ChannelAuthorizer decides whether a principal may subscribe to a channel.
type ChannelAuthorizer struct {
	tickets ticket.TicketRepository
	users   user.Repository
	signer  ChannelSigner
	logger  logger.Interface
}

func NewChannelAuthorizer(
	tickets ticket.TicketRepository,
	users user.Repository,
	signer ChannelSigner,
	logger logger.Interface,
) *ChannelAuthorizer {
	return &ChannelAuthorizer{
		tickets: tickets,
		users:   users,
		signer:  signer,
		logger:  logger,
	}
}

// Decide classifies channelName and applies its rule. A ticket that does not exist yields
// NotFound; one that exists but is off limits yields AccessDenied.
func (a *ChannelAuthorizer) Decide(ctx context.Context, p authorization.Principal, channelName string) (*Grant, error) {
	ch, err := ParseChannel(channelName)
	if err != nil {
		a.logger.Warnw("rejected unknown channel", "channel", channelName, "user_id", p.ID)
		return nil, err
	}

	switch ch.Kind {
	case ChannelUser:
		if p.ID != ch.ID {
			return nil, a.deny(p, ch)
		}
	case ChannelTickets:
		if !p.IsStaff() {
			return nil, a.deny(p, ch)
		}
	case ChannelTicket, ChannelPresenceTicket:
		t, err := a.tickets.GetByID(ctx, ch.ID)
		if err != nil {
			if errors.IsNotFoundError(err) {
				return nil, errors.NewNotFoundError("ticket not found", strconv.FormatUint(uint64(ch.ID), 10))
			}
			a.logger.Errorw("failed to load ticket for channel authorization", "channel", channelName, "error", err)
			return nil, errors.NewInternalError("failed to authorize channel")
		}
		allowed := ticket.CanAccessTicket(p, t)
		if ch.IsPresence() {
			allowed = ticket.CanAccessTicketBroad(p, t)
		}
		if !allowed {
			return nil, a.deny(p, ch)
		}
	}

	grant := &Grant{Channel: ch}
	if ch.IsPresence() {
		member, err := a.presenceMember(ctx, p)
		if err != nil {
			return nil, err
		}
		grant.Member = member
	}
	return grant, nil
}

// Authorize decides and signs the acknowledgement for socketID.
func (a *ChannelAuthorizer) Authorize(ctx context.Context, p authorization.Principal, channelName, socketID string) (*AuthResponse, error) {
	if socketID == "" {
		return nil, errors.NewFieldValidationError("socket_id is required", map[string]string{
			"socket_id": "is required",
		})
	}

	grant, err := a.Decide(ctx, p, channelName)
	if err != nil {
		return nil, err
	}

	params := []byte(url.Values{
		"socket_id":    {socketID},
		"channel_name": {channelName},
	}.Encode())

	var raw []byte
	if grant.Member != nil {
		raw, err = a.signer.AuthorizePresenceChannel(params, grant.Member.memberData())
	} else {
		raw, err = a.signer.AuthorizePrivateChannel(params)
	}
	if err != nil {
		a.logger.Warnw("channel signature rejected", "channel", channelName, "socket_id", socketID, "error", err)
		return nil, errors.NewValidationError("invalid channel authorization request", err.Error())
	}

	var resp AuthResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errors.NewInternalError("failed to decode channel authorization", err.Error())
	}

	a.logger.Debugw("channel authorized", "channel", channelName, "user_id", p.ID)
	return &resp, nil
}

func (a *ChannelAuthorizer) presenceMember(ctx context.Context, p authorization.Principal) (*PresenceMember, error) {
	u, err := a.users.GetByID(ctx, p.ID)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return nil, errors.NewAccessDeniedError("unknown user")
		}
		return nil, errors.NewInternalError("failed to load presence member", err.Error())
	}
	return &PresenceMember{
		ID:   u.ID(),
		Name: u.FullName(),
		Role: u.Role().DisplayName(),
	}, nil
}

func (a *ChannelAuthorizer) deny(p authorization.Principal, ch Channel) error {
	a.logger.Warnw("channel subscription denied",
		"channel", ch.Name,
		"kind", ch.Kind.String(),
		"user_id", p.ID,
		"role", p.Role,
	)
	return errors.NewAccessDeniedError(fmt.Sprintf("not authorized for channel %s", ch.Name))
}
