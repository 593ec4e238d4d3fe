package service

import (
	"context"
	"salonbook/pkg/model"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "salonbook/pkg/errors"
)

var tracer = otel.Tracer("salonbook/bookings")

func (s *bookingService) Create(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	ctx, span := tracer.Start(ctx, "bookings.create", trace.WithAttributes(
		attribute.String("salonbook.staff_id", req.StaffID),
		attribute.String("salonbook.date", req.Date.String()),
		attribute.Int("salonbook.duration_minutes", req.DurationMinutes),
	))
	booking, err := s.create(ctx, req)
	if booking != nil {
		span.SetAttributes(attribute.String("salonbook.booking_id", booking.ID))
	}
	endSpan(span, err)
	return booking, err
}

func (s *bookingService) Cancel(ctx context.Context, id, reason string, now time.Time) (*model.CancelResult, error) {
	ctx, span := tracer.Start(ctx, "bookings.cancel", trace.WithAttributes(
		attribute.String("salonbook.booking_id", id),
	))
	result, err := s.cancel(ctx, id, reason, now)
	if result != nil {
		span.SetAttributes(attribute.Int("salonbook.refund_percent", result.RefundPercent))
	}
	endSpan(span, err)
	return result, err
}

func (s *bookingService) Move(ctx context.Context, id string, req *model.RescheduleRequest) (*model.Booking, error) {
	ctx, span := tracer.Start(ctx, "bookings.reschedule", trace.WithAttributes(
		attribute.String("salonbook.booking_id", id),
		attribute.String("salonbook.staff_id", req.StaffID),
		attribute.String("salonbook.date", req.Date.String()),
	))
	booking, err := s.move(ctx, id, req)
	endSpan(span, err)
	return booking, err
}

func (s *bookingService) AvailableSlots(ctx context.Context, staffID string, date model.Date, durationMin, granularity int) ([]model.TimeOfDay, error) {
	ctx, span := tracer.Start(ctx, "bookings.available_slots", trace.WithAttributes(
		attribute.String("salonbook.staff_id", staffID),
		attribute.String("salonbook.date", date.String()),
		attribute.Int("salonbook.duration_minutes", durationMin),
	))
	result, err := s.availableSlots(ctx, staffID, date, durationMin, granularity)
	span.SetAttributes(attribute.Int("salonbook.slots", len(result)))
	endSpan(span, err)
	return result, err
}

// endSpan records err's code on the span. Client errors are not span failures.
func endSpan(span trace.Span, err error) {
	defer span.End()
	if err == nil {
		return
	}
	appErr := apperrors.AsAppError(err)
	span.SetAttributes(attribute.String("salonbook.error_code", appErr.Code))
	if appErr.StatusCode() >= 500 {
		span.RecordError(err)
		span.SetStatus(codes.Error, appErr.Code)
	}
}
