package ws

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	subscribersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storepulse_ws_subscribers",
		Help: "Currently connected websocket subscribers.",
	})

	messagesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storepulse_ws_messages_delivered_total",
		Help: "Messages handed to subscriber send queues.",
	})

	subscribersDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storepulse_ws_subscribers_dropped_total",
		Help: "Subscribers dropped because their send queue overflowed.",
	})
)
