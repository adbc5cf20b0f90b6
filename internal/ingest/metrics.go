package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ingestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storepulse_ingest_total",
		Help: "Ingest calls by outcome.",
	}, []string{"outcome"})

	alertsRaised = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storepulse_alerts_raised_total",
		Help: "Alerts auto-raised on HIGH risk assessments.",
	})

	broadcastDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storepulse_broadcast_dropped_total",
		Help: "Broadcast tasks dropped because the dispatch queue was full.",
	})
)
