package ingest

import (
	"context"
	"log/slog"
)

// Publisher delivers broadcast messages to the live subscriber set.
// Implemented by the websocket hub; fakes implement it in tests.
type Publisher interface {
	// PublishUpdate sends the per-ingest update message to all subscribers.
	PublishUpdate(record, result any)
	// PublishAlert sends an alert notification to all subscribers.
	PublishAlert(store, dept int, message string, riskScore int)
}

type broadcastJob struct {
	record Record
	result Result
	alert  *AlertNotice
}

// Dispatcher decouples broadcast delivery from the ingest request
// lifecycle: Dispatch enqueues onto a bounded queue and never blocks; a
// dedicated loop drains the queue and publishes. Queue overflow drops the
// job rather than stalling ingestion.
type Dispatcher struct {
	pub    Publisher
	jobs   chan broadcastJob
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher with the given queue capacity.
func NewDispatcher(pub Publisher, queueSize int, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		pub:    pub,
		jobs:   make(chan broadcastJob, queueSize),
		logger: logger,
	}
}

// Dispatch enqueues a broadcast task. Never blocks and never fails the
// caller; on a full queue the task is dropped and counted.
func (d *Dispatcher) Dispatch(record Record, result Result, alert *AlertNotice) {
	select {
	case d.jobs <- broadcastJob{record: record, result: result, alert: alert}:
	default:
		broadcastDropped.Inc()
		d.logger.Warn("Broadcast queue full, dropping update",
			"store", record.Store, "dept", record.Dept)
	}
}

// Run consumes the queue until ctx is cancelled, then drains whatever was
// already enqueued before returning. Intended to be called with `go`.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info("Broadcast dispatcher started", "queue_size", cap(d.jobs))
	for {
		select {
		case job := <-d.jobs:
			d.deliver(job)
		case <-ctx.Done():
			d.drain()
			d.logger.Info("Broadcast dispatcher stopped")
			return
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case job := <-d.jobs:
			d.deliver(job)
		default:
			return
		}
	}
}

// deliver publishes the update, then the alert when present. Publishing
// both from the same loop iteration preserves update-then-alert ordering
// for a single ingest call.
func (d *Dispatcher) deliver(job broadcastJob) {
	d.pub.PublishUpdate(job.record, job.result)
	if job.alert != nil {
		d.pub.PublishAlert(job.alert.Store, job.alert.Dept, job.alert.Message, job.alert.RiskScore)
	}
}
