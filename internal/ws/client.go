package ws

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must be less than pongWait
	maxMessageSize = 512
)

// Client is one connected subscriber: the middleman between a websocket
// connection and the hub. Owned by the hub from Register until removal.
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	logger *slog.Logger
}

// NewClient wraps an upgraded connection. buffer bounds the outbound
// queue; when it overflows during a broadcast the client is dropped.
func NewClient(hub *Hub, conn *websocket.Conn, buffer int, logger *slog.Logger) *Client {
	return &Client{
		ID:     uuid.NewString(),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, buffer),
		logger: logger,
	}
}

// ReadPump consumes (and discards) inbound frames so pongs and close
// frames are processed. Unregisters the client when the peer goes away.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("Subscriber read error", "subscriber", c.ID, "error", err)
			}
			return
		}
		// Subscribers only listen; inbound payloads are ignored.
	}
}

// WritePump drains the send queue onto the connection and keeps the peer
// alive with pings. Exits when the hub closes the send queue or a write
// fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Warn("Subscriber write error", "subscriber", c.ID, "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
