package events

import (
	"context"
	"salonbook/pkg/kafka"
	"salonbook/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// KafkaPublisher writes events to the booking events topic keyed by staff id.
type KafkaPublisher struct {
	producer *kafka.Producer
	source   string
}

func NewKafkaPublisher(producer *kafka.Producer, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	msg, err := kafka.NewMessage().
		WithKey(ev.Key()).
		WithEventID(ev.ID).
		WithEventType(string(ev.Type)).
		WithSchemaVersion("1").
		WithSource(p.source).
		WithTimestamp(ev.OccurredAt).
		WithValue(ev).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

// LogPublisher is used when no broker is configured.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, ev Event) error {
	attrs := []any{"event_id", ev.ID, "type", ev.Type}
	if ev.Booking != nil {
		attrs = append(attrs, "booking_id", ev.Booking.ID, "staff_id", ev.Booking.StaffID)
	}
	p.log.Info("Booking event", attrs...)
	return nil
}
