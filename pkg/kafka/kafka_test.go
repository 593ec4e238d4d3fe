package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"salonbook/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard, Service: "test"})
}

type fakeWriter struct {
	mu      sync.Mutex
	written []kafka.Message
	err     error
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func (w *fakeWriter) messages() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.written...)
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("staff-1").
		WithEventType("booking.created").
		WithValue(map[string]string{"id": "b1"}).
		Build()
	require.NoError(t, err)

	assert.NotEmpty(t, msg.GetEventID())
	assert.Equal(t, "booking.created", msg.GetEventType())
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])

	var decoded map[string]string
	require.NoError(t, msg.DecodeValue(&decoded))
	assert.Equal(t, "b1", decoded["id"])

	_, err = NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.Error(t, err)
}

func TestMessage_RetryCount(t *testing.T) {
	msg := Message{Headers: map[string]string{}}
	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	assert.Equal(t, 12, msg.GetRetryCount())
}

func TestMessage_DecodeValueIsPermanent(t *testing.T) {
	msg := Message{Value: []byte("{not json")}
	var v map[string]any
	err := msg.DecodeValue(&v)
	require.Error(t, err)
	assert.Equal(t, ErrorTypePermanent, ClassifyError(err))
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, ErrorTypeUnknown, ClassifyError(nil))
	assert.Equal(t, ErrorTypeTransient, ClassifyError(errors.New("dial tcp: Connection Refused")))
	assert.Equal(t, ErrorTypeTransient, ClassifyError(NewTransientError("db", errors.New("x"))))
	assert.Equal(t, ErrorTypePermanent, ClassifyError(errors.New("weird")))
	assert.Equal(t, ErrorTypeTransient, ClassifyError(fmt.Errorf("fetch: %w", context.DeadlineExceeded)))
	assert.Equal(t, ErrorTypeTransient, ClassifyError(fmt.Errorf("write: %w", kafka.LeaderNotAvailable)))
	assert.Equal(t, ErrorTypePermanent, ClassifyError(fmt.Errorf("write: %w", kafka.MessageSizeTooLarge)))
	assert.Equal(t, "transient", ErrorTypeTransient.String())
	assert.Equal(t, "unknown", ErrorTypeUnknown.String())

	assert.True(t, ShouldRetry(errors.New("i/o timeout"), 0, 3))
	assert.False(t, ShouldRetry(errors.New("i/o timeout"), 3, 3))
	assert.False(t, ShouldRetry(errors.New("bad payload"), 0, 3))
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, nil, "booking-events", testLogger())

	var seen []string
	p.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		seen = append(seen, msg.Topic)
		return next(ctx, msg)
	})

	msg, err := NewMessage().WithKey("staff-1").WithValue("v").WithEventType("booking.created").Build()
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), msg))

	written := w.messages()
	require.Len(t, written, 1)
	assert.Equal(t, "staff-1", string(written[0].Key))
	assert.Equal(t, "booking.created", header(written[0], HeaderEventType))
	assert.Equal(t, []string{"booking-events"}, seen)
}

func TestProducer_Validation(t *testing.T) {
	p := newProducer(&fakeWriter{}, nil, "t", testLogger())

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("x")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)

	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte("x")}), ErrProducerClosed)
}

func TestProducer_DeadLettersOnFailure(t *testing.T) {
	boom := errors.New("leader not available")
	dlq := &fakeWriter{}
	p := newProducer(&fakeWriter{err: boom}, dlq, "booking-events", testLogger())

	err := p.Publish(context.Background(), Message{Key: "k", Value: []byte("x"), Headers: map[string]string{}})
	assert.ErrorIs(t, err, boom)

	dead := dlq.messages()
	require.Len(t, dead, 1)
	assert.Equal(t, "booking-events", header(dead[0], HeaderOriginalTopic))
	assert.Equal(t, boom.Error(), header(dead[0], HeaderDLQError))
}

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	done      chan struct{}
	closed    bool
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	return &fakeReader{queue: msgs, done: make(chan struct{})}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return kafka.Message{}, io.EOF
	}
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case <-r.done:
		return kafka.Message{}, io.EOF
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.closed = true
		close(r.done)
	}
	return nil
}

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func runConsumer(t *testing.T, c *Consumer, r *fakeReader, wantCommits int) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- c.Start(ctx) }()

	require.Eventually(t, func() bool { return len(r.commits()) == wantCommits }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-errCh
}

func TestConsumer_HandlesAndCommits(t *testing.T) {
	r := newFakeReader(
		kafka.Message{Topic: "staff-events", Offset: 1, Key: []byte("a"), Value: []byte(`{}`)},
		kafka.Message{Topic: "staff-events", Offset: 2, Key: []byte("b"), Value: []byte(`{}`)},
	)
	var handled []string
	c := newConsumer(r, nil, "staff-events", "g", func(_ context.Context, msg Message) error {
		handled = append(handled, msg.Key)
		return nil
	}, testLogger())

	runConsumer(t, c, r, 2)
	assert.Equal(t, []string{"a", "b"}, handled)
	assert.Equal(t, []int64{1, 2}, r.commits())
}

func TestConsumer_RetriesTransientThenSucceeds(t *testing.T) {
	r := newFakeReader(kafka.Message{Topic: "t", Offset: 7, Key: []byte("k")})
	attempts := 0
	c := newConsumer(r, nil, "t", "g", func(context.Context, Message) error {
		attempts++
		if attempts < 3 {
			return NewTransientError("mongo", errors.New("down"))
		}
		return nil
	}, testLogger())
	c.maxRetries = 3
	c.retryBackoff = time.Millisecond

	runConsumer(t, c, r, 1)
	assert.Equal(t, 3, attempts)
}

func TestConsumer_PermanentFailureGoesToDLQ(t *testing.T) {
	r := newFakeReader(kafka.Message{Topic: "t", Offset: 3, Key: []byte("k"), Value: []byte("x")})
	dlq := &fakeWriter{}
	attempts := 0
	c := newConsumer(r, dlq, "t", "group-1", func(context.Context, Message) error {
		attempts++
		return NewPermanentError("invalid staff", errors.New("end before start"))
	}, testLogger())
	c.maxRetries = 5

	runConsumer(t, c, r, 1)
	assert.Equal(t, 1, attempts, "permanent errors are not retried")

	dead := dlq.messages()
	require.Len(t, dead, 1)
	assert.Equal(t, "group-1", header(dead[0], "dlq-consumer-group"))
	assert.Equal(t, "t", header(dead[0], HeaderOriginalTopic))
}

func TestConsumer_CloseStopsStart(t *testing.T) {
	r := newFakeReader()
	c := newConsumer(r, nil, "t", "g", func(context.Context, Message) error { return nil }, testLogger())

	errCh := make(chan error, 1)
	go func() { errCh <- c.Start(context.Background()) }()
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, c.Close())
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, io.EOF)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Close")
	}
	assert.ErrorIs(t, c.Start(context.Background()), ErrConsumerClosed)
}
