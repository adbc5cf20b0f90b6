package ingest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	kind    string // "update" or "alert"
	store   int
	message string
}

// fakePublisher records publishes in order and signals on each delivery.
type fakePublisher struct {
	mu        sync.Mutex
	events    []published
	delivered chan struct{}
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{delivered: make(chan struct{}, 64)}
}

func (f *fakePublisher) PublishUpdate(record, result any) {
	f.mu.Lock()
	rec := record.(Record)
	f.events = append(f.events, published{kind: "update", store: rec.Store})
	f.mu.Unlock()
	f.delivered <- struct{}{}
}

func (f *fakePublisher) PublishAlert(store, dept int, message string, riskScore int) {
	f.mu.Lock()
	f.events = append(f.events, published{kind: "alert", store: store, message: message})
	f.mu.Unlock()
	f.delivered <- struct{}{}
}

func (f *fakePublisher) all() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.events...)
}

func waitDelivered(t *testing.T, f *fakePublisher, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.delivered:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for delivery %d of %d", i+1, n)
		}
	}
}

func TestDispatcherUpdateThenAlertOrdering(t *testing.T) {
	pub := newFakePublisher()
	d := NewDispatcher(pub, 16, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	rec := sampleRecord()
	d.Dispatch(rec, Result{Status: "success"}, &AlertNotice{Store: rec.Store, Message: AlertMessage, RiskScore: 70})
	waitDelivered(t, pub, 2)

	events := pub.all()
	require.Len(t, events, 2)
	assert.Equal(t, "update", events[0].kind)
	assert.Equal(t, "alert", events[1].kind)
	assert.Equal(t, AlertMessage, events[1].message)
}

func TestDispatcherDropsOnFullQueue(t *testing.T) {
	pub := newFakePublisher()
	d := NewDispatcher(pub, 1, testLogger()) // no Run loop: queue fills immediately

	d.Dispatch(sampleRecord(), Result{}, nil)
	d.Dispatch(sampleRecord(), Result{}, nil) // dropped, must not block

	done := make(chan struct{})
	go func() {
		d.Dispatch(sampleRecord(), Result{}, nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on a full queue")
	}
}

// A broadcast enqueued before shutdown is still delivered: Run drains the
// queue on cancellation, and jobs carry nothing from the ingest caller's
// context.
func TestDispatcherDrainsOnShutdown(t *testing.T) {
	pub := newFakePublisher()
	d := NewDispatcher(pub, 16, testLogger())

	// Simulate the ingest caller going away before dispatch runs.
	callerCtx, callerCancel := context.WithCancel(context.Background())
	rec := sampleRecord()
	d.Dispatch(rec, Result{Status: "success"}, nil)
	callerCancel()
	<-callerCtx.Done()

	runCtx, runCancel := context.WithCancel(context.Background())
	runCancel() // Run observes cancellation right away and must still drain

	done := make(chan struct{})
	go func() {
		d.Run(runCtx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	events := pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, "update", events[0].kind)
	assert.Equal(t, rec.Store, events[0].store)
}
