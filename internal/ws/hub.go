// Package ws maintains the live set of websocket subscribers and fans
// broadcast messages out to them. Delivery to each subscriber is isolated:
// a slow or dead subscriber is dropped, never letting it block ingestion
// or other subscribers.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Message envelope types pushed to subscribers.
const (
	MessageTypeUpdate = "iot_update"
	MessageTypeAlert  = "alert"
)

type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type updatePayload struct {
	Data   any `json:"data"`
	Result any `json:"result"`
}

type alertPayload struct {
	Store     int    `json:"store"`
	Dept      int    `json:"dept"`
	Message   string `json:"message"`
	RiskScore int    `json:"risk_score"`
}

// Hub owns the subscriber registry. All registry mutation happens on the
// Run goroutine; Register/Unregister/Broadcast communicate with it over
// channels and are safe to call concurrently.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu      sync.RWMutex
	clients map[*Client]bool

	done   chan struct{}
	logger *slog.Logger
}

// NewHub creates a hub with a bounded broadcast queue.
func NewHub(queueSize int, logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, queueSize),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes registration, removal, and broadcast until ctx is
// cancelled, then closes every remaining subscriber. Intended to be
// called with `go`.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("Subscriber hub started")
	defer close(h.done)

	for {
		select {
		case c := <-h.register:
			h.add(c)

		case c := <-h.unregister:
			h.remove(c)

		case msg := <-h.broadcast:
			h.deliver(msg)

		case <-ctx.Done():
			h.closeAll()
			h.logger.Info("Subscriber hub stopped")
			return
		}
	}
}

// Register adds a subscriber. Safe to call concurrently with broadcasts.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes a subscriber. Idempotent.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast enqueues a raw message for delivery to every subscriber.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// PublishUpdate broadcasts the per-ingest update message.
func (h *Hub) PublishUpdate(record, result any) {
	h.publish(envelope{Type: MessageTypeUpdate, Payload: updatePayload{Data: record, Result: result}})
}

// PublishAlert broadcasts an alert notification.
func (h *Hub) PublishAlert(store, dept int, message string, riskScore int) {
	h.publish(envelope{Type: MessageTypeAlert, Payload: alertPayload{
		Store:     store,
		Dept:      dept,
		Message:   message,
		RiskScore: riskScore,
	}})
}

func (h *Hub) publish(env envelope) {
	msg, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("Marshal broadcast message", "type", env.Type, "error", err)
		return
	}
	h.Broadcast(msg)
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	subscribersGauge.Inc()
	h.logger.Info("Subscriber registered", "subscriber", c.ID)
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	if ok {
		subscribersGauge.Dec()
		h.logger.Info("Subscriber unregistered", "subscriber", c.ID)
	}
}

// deliver pushes msg to every subscriber's send queue without blocking.
// A subscriber whose queue is full is dropped on the spot; the failure
// never reaches the broadcast caller or other subscribers.
func (h *Hub) deliver(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
			messagesDelivered.Inc()
		default:
			delete(h.clients, c)
			close(c.send)
			subscribersGauge.Dec()
			subscribersDropped.Inc()
			h.logger.Warn("Subscriber send queue full, dropping", "subscriber", c.ID)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		subscribersGauge.Dec()
	}
}
