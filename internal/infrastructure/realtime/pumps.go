package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/helpdesk-inc/helpdesk/internal/shared/authorization"
	"github.com/helpdesk-inc/helpdesk/internal/shared/errors"
	"github.com/helpdesk-inc/helpdesk/internal/shared/goroutine"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxFrameSize   = 64 * 1024
	closeGraceTime = time.Second
)

// Serve runs an upgraded connection until the peer goes away. It blocks on the read pump.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, p authorization.Principal) {
	c := h.Register(p)

	goroutine.SafeGo(h.logger, "realtime-write-pump", func() {
		h.writePump(c, conn)
	})
	h.readPump(ctx, c, conn)
}

func (h *Hub) readPump(ctx context.Context, c *Client, conn *websocket.Conn) {
	defer h.Unregister(context.WithoutCancel(ctx), c)

	conn.SetReadLimit(maxFrameSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warnw("realtime websocket closed unexpectedly",
					"error", err,
					"socket_id", c.SocketID,
				)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var frame ClientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.sendError(c, "", errors.NewBadRequestError("malformed frame"))
			continue
		}
		h.HandleFrame(ctx, c, frame)
	}
}

func (h *Hub) writePump(c *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(closeGraceTime))
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.logger.Warnw("failed to write to realtime websocket",
					"error", err,
					"socket_id", c.SocketID,
				)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
