package events

import (
	"context"
	"errors"
	"io"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Output: io.Discard})
}

type fakePublisher struct {
	mu        sync.Mutex
	published []Event
	started   chan struct{}
	unblock   chan struct{}
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, ev Event) error {
	if p.started != nil {
		select {
		case p.started <- struct{}{}:
		default:
		}
	}
	if p.unblock != nil {
		<-p.unblock
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, ev)
	return p.err
}

func (p *fakePublisher) ids() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.published))
	for i, ev := range p.published {
		out[i] = ev.Booking.ID
	}
	return out
}

func booking(id string) *model.Booking {
	return &model.Booking{ID: id, StaffID: "s1"}
}

func TestDispatcher_PublishesInOrder(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub, 16, discardLogger(), nil)

	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	d.Emit(Created(booking("b1"), at))
	d.Emit(Cancelled(booking("b2"), at))
	d.Emit(Rescheduled(booking("b3"), booking("b1"), at))

	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, []string{"b1", "b2", "b3"}, pub.ids())
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	pub := &fakePublisher{started: make(chan struct{}, 1), unblock: make(chan struct{})}
	d := NewDispatcher(pub, 1, discardLogger(), nil)
	at := time.Now()

	d.Emit(Created(booking("b1"), at))
	<-pub.started
	d.Emit(Created(booking("b2"), at)) // queued
	d.Emit(Created(booking("b3"), at)) // dropped

	close(pub.unblock)
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, []string{"b1", "b2"}, pub.ids())
}

func TestDispatcher_PublishErrorDoesNotStopWorker(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	d := NewDispatcher(pub, 4, discardLogger(), nil)

	d.Emit(Created(booking("b1"), time.Now()))
	d.Emit(Created(booking("b2"), time.Now()))
	require.NoError(t, d.Close(context.Background()))
	assert.Len(t, pub.ids(), 2)
}

func TestDispatcher_EmitAfterCloseIsIgnored(t *testing.T) {
	pub := &fakePublisher{}
	d := NewDispatcher(pub, 4, discardLogger(), nil)
	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()))

	d.Emit(Created(booking("late"), time.Now()))
	assert.Empty(t, pub.ids())
}

func TestDispatcher_CloseHonoursContext(t *testing.T) {
	pub := &fakePublisher{started: make(chan struct{}, 1), unblock: make(chan struct{})}
	d := NewDispatcher(pub, 4, discardLogger(), nil)
	d.Emit(Created(booking("b1"), time.Now()))
	<-pub.started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)
	close(pub.unblock)
}

func TestEventKey(t *testing.T) {
	ev := Created(booking("b1"), time.Now())
	assert.Equal(t, "s1", ev.Key())
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, BookingCreated, ev.Type)

	assert.Equal(t, "x", Event{ID: "x"}.Key())
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher(discardLogger())
	assert.NoError(t, p.Publish(context.Background(), Created(booking("b1"), time.Now())))
}
