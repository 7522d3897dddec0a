// Package realtime is the WebSocket gateway that delivers broadcast publications to
// subscribed clients.
package realtime

import (
	"encoding/json"

	"github.com/helpdesk-inc/helpdesk/internal/application/broadcast"
)

// Frame events exchanged with clients.
const (
	FrameSubscribe   = "subscribe"
	FrameUnsubscribe = "unsubscribe"
	FramePing        = "ping"

	FrameConnectionEstablished = "connection_established"
	FrameSubscriptionSucceeded = "subscription_succeeded"
	FrameUnsubscribed          = "unsubscribed"
	FrameMemberAdded           = "member_added"
	FrameMemberRemoved         = "member_removed"
	FramePong                  = "pong"
	FrameError                 = "error"
)

// ClientFrame is a request sent by a client.
type ClientFrame struct {
	Event   string `json:"event"`
	Channel string `json:"channel,omitempty"`
}

// ServerFrame is pushed to a client. Channel echoes the name the client subscribed with for
// subscription replies, and the published name for events.
type ServerFrame struct {
	Event   string `json:"event"`
	Channel string `json:"channel,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type connectionData struct {
	SocketID        string `json:"socket_id"`
	ActivityTimeout int    `json:"activity_timeout"`
}

type errorData struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type presenceData struct {
	Count   int                        `json:"count"`
	Members []broadcast.PresenceMember `json:"members"`
}

func encodeFrame(f ServerFrame) ([]byte, error) {
	return json.Marshal(f)
}
