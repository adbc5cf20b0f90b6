package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/storepulse/storepulse/internal/ws"
)

// Subscriber connections are unauthenticated; origin filtering is left to
// the fronting proxy.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// ServeAlertsWS upgrades the connection and registers it as a subscriber.
// Subscribers receive every iot_update message plus alert notifications;
// there is no replay of history on (re)connect.
// @Summary Real-time update/alert stream
// @Description Websocket endpoint. Pushes an iot_update message for every ingested reading and an alert message for HIGH-risk readings.
// @Tags websocket
// @Router /ws/alerts [get]
func (h *Handler) ServeAlertsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := ws.NewClient(h.hub, conn, h.cfg.WSSendBuffer, h.logger)
	h.hub.Register(c)
	go c.WritePump()
	go c.ReadPump()
}
