package broadcast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
)

// ChannelKind identifies which authorization rule guards a channel.
type ChannelKind int

const (
	ChannelUser ChannelKind = iota + 1
	ChannelTicket
	ChannelPresenceTicket
	ChannelTickets
)

const (
	// TicketsChannel is the staff-wide ticket list stream.
	TicketsChannel = "tickets"

	privatePrefix  = "private-"
	presencePrefix = "presence-"
	userPrefix     = "user."
	ticketPrefix   = "ticket."
)

func (k ChannelKind) String() string {
	switch k {
	case ChannelUser:
		return "user"
	case ChannelTicket:
		return "ticket"
	case ChannelPresenceTicket:
		return "presence-ticket"
	case ChannelTickets:
		return "tickets"
	default:
		return "unknown"
	}
}

// Channel is a parsed subscription channel. Name keeps the spelling the client asked for;
// Canonical is the name events are published on.
type Channel struct {
	Kind ChannelKind
	ID   uint
	Name string
}

func (c Channel) Canonical() string {
	switch c.Kind {
	case ChannelUser:
		return UserChannel(c.ID)
	case ChannelTicket:
		return TicketChannel(c.ID)
	case ChannelPresenceTicket:
		return PresenceTicketChannel(c.ID)
	case ChannelTickets:
		return TicketsChannel
	default:
		return c.Name
	}
}

func (c Channel) IsPresence() bool {
	return c.Kind == ChannelPresenceTicket
}

func UserChannel(userID uint) string {
	return fmt.Sprintf("%s%d", userPrefix, userID)
}

func TicketChannel(ticketID uint) string {
	return fmt.Sprintf("%s%d", ticketPrefix, ticketID)
}

func PresenceTicketChannel(ticketID uint) string {
	return fmt.Sprintf("%s%s%d", presencePrefix, ticketPrefix, ticketID)
}

// ParseChannel classifies a channel name. Private channels may carry the "private-" prefix.
// Anything unrecognised yields an invalid channel error.
func ParseChannel(name string) (Channel, error) {
	invalid := errors.NewInvalidChannelError(name)

	if rest, ok := strings.CutPrefix(name, presencePrefix); ok {
		id, ok := parseTicketSuffix(rest)
		if !ok {
			return Channel{}, invalid
		}
		return Channel{Kind: ChannelPresenceTicket, ID: id, Name: name}, nil
	}

	rest := strings.TrimPrefix(name, privatePrefix)
	if rest == TicketsChannel {
		return Channel{Kind: ChannelTickets, Name: name}, nil
	}
	if raw, ok := strings.CutPrefix(rest, userPrefix); ok {
		id, ok := parseID(raw)
		if !ok {
			return Channel{}, invalid
		}
		return Channel{Kind: ChannelUser, ID: id, Name: name}, nil
	}
	if id, ok := parseTicketSuffix(rest); ok {
		return Channel{Kind: ChannelTicket, ID: id, Name: name}, nil
	}
	return Channel{}, invalid
}

func parseTicketSuffix(s string) (uint, bool) {
	raw, ok := strings.CutPrefix(s, ticketPrefix)
	if !ok {
		return 0, false
	}
	return parseID(raw)
}

func parseID(raw string) (uint, bool) {
	if raw == "" || raw[0] < '0' || raw[0] > '9' {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
