// Package consumer feeds the staff read model from the directory's Kafka topic.
package consumer

import (
	"context"
	"salonbook/internal/staff/service"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/kafka"
	"salonbook/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("salonbook/staff-sync")

type StaffEventHandler struct {
	service service.StaffService
	log     *logger.Logger
}

func NewStaffEventHandler(service service.StaffService, log *logger.Logger) *StaffEventHandler {
	return &StaffEventHandler{
		service: service,
		log:     log,
	}
}

// Handle is a kafka.MessageHandler. Payloads that can never apply are reported as permanent
// so the consumer dead-letters them instead of retrying.
func (h *StaffEventHandler) Handle(ctx context.Context, msg kafka.Message) error {
	ctx, span := tracer.Start(ctx, "staff.apply_event")
	defer span.End()
	span.SetAttributes(
		attribute.String("messaging.kafka.topic", msg.Topic),
		attribute.Int64("messaging.kafka.offset", msg.Offset),
	)

	var event service.Event
	if err := msg.DecodeValue(&event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "undecodable")
		return err
	}
	if event.Type == "" {
		event.Type = service.EventType(msg.GetEventType())
	}
	if event.StaffID == "" {
		event.StaffID = msg.Key
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = msg.Timestamp
	}

	span.SetAttributes(
		attribute.String("salonbook.event_type", string(event.Type)),
		attribute.String("salonbook.staff_id", event.StaffID),
	)

	err := h.service.Apply(ctx, event)
	if err == nil {
		h.log.Debug("Staff event applied",
			"type", event.Type,
			"staff_id", event.StaffID,
			"offset", msg.Offset,
		)
		return nil
	}

	if apperrors.AsAppError(err).IsClientError() {
		return kafka.NewPermanentError("staff event rejected", err)
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "not applied")
	return kafka.NewTransientError("staff event not applied", err)
}
