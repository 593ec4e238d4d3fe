package events

import (
	"context"
	"salonbook/pkg/logger"
	"salonbook/pkg/metrics"
	"sync"
	"time"
)

const publishTimeout = 10 * time.Second

// Dispatcher hands events to a Publisher on a background goroutine. Emit never blocks;
// when the queue is full the event is dropped and counted.
type Dispatcher struct {
	publisher Publisher
	queue     chan Event
	log       *logger.Logger
	metrics   *metrics.Metrics

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(publisher Publisher, buffer int, log *logger.Logger, m *metrics.Metrics) *Dispatcher {
	if buffer <= 0 {
		buffer = 1
	}
	d := &Dispatcher{
		publisher: publisher,
		queue:     make(chan Event, buffer),
		log:       log,
		metrics:   m,
		done:      make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := d.publisher.Publish(ctx, ev); err != nil {
			d.metrics.EventDropped("publish_failed")
			d.log.Error("Failed to publish booking event",
				"event_id", ev.ID,
				"type", ev.Type,
				"error", err,
			)
		}
		cancel()
	}
}

func (d *Dispatcher) Emit(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.metrics.EventDropped("closed")
		return
	}

	select {
	case d.queue <- ev:
	default:
		d.metrics.EventDropped("queue_full")
		d.log.Warn("Booking event queue full, dropping event", "event_id", ev.ID, "type", ev.Type)
	}
}

// Close stops accepting events and waits for queued ones to be published or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
