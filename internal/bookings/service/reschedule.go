package service

import (
	"context"
	bookingserrors "salonbook/internal/bookings/errors"
	"salonbook/internal/bookings/events"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/model"
	"salonbook/pkg/sanitizer"
	"time"

	"github.com/google/uuid"
)

// Move holds the source and destination calendars together, so a concurrent create can
// neither take the destination nor observe the source freed before the replacement exists.
// The source keeps its state on any error.
func (s *bookingService) move(ctx context.Context, id string, req *model.RescheduleRequest) (*model.Booking, error) {
	id = sanitizer.NormalizeID(id)
	req.StaffID = sanitizer.NormalizeID(req.StaffID)
	if err := s.validator.ValidateReschedule(req); err != nil {
		s.cfg.Log.Ctx(ctx).Warn("Reschedule validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Reschedule validation failed", map[string]any{"error": err.Error()})
	}

	source, err := s.load(ctx, id)
	if err != nil {
		return nil, s.rescheduleFailed(err)
	}
	if !source.IsConfirmed() {
		return nil, s.rescheduleFailed(bookingserrors.AlreadyCancelled(id))
	}

	target := model.SlotKey{StaffID: req.StaffID, Date: req.Date}
	release, err := s.lock(ctx, source.Key(), target)
	if err != nil {
		return nil, s.rescheduleFailed(err)
	}
	defer release()

	// The source may have changed while we waited for the locks.
	source, err = s.load(ctx, id)
	if err != nil {
		return nil, s.rescheduleFailed(err)
	}
	if !source.IsConfirmed() {
		return nil, s.rescheduleFailed(bookingserrors.AlreadyCancelled(id))
	}

	replacement := &model.Booking{
		StaffID:         req.StaffID,
		Date:            req.Date,
		StartTime:       req.StartTime,
		DurationMinutes: source.DurationMinutes,
		Price:           source.Price,
		RescheduledFrom: source.ID,
	}
	if err := s.checkPlacement(ctx, replacement, source.ID); err != nil {
		return nil, s.rescheduleFailed(err)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	replacement.ID = uuid.NewString()
	replacement.Status = model.BookingConfirmed
	replacement.CreatedAt = now
	if err := s.repo.Replace(ctx, source.ID, replacement, now); err != nil {
		return nil, s.rescheduleFailed(s.mapRepoError(err, source.ID, "Failed to reschedule booking"))
	}

	model.Cancellation{At: now, RescheduledTo: replacement.ID}.Apply(source)
	s.metrics.Rescheduled("ok")
	s.emit(events.Rescheduled(snapshot(replacement), source, now))
	s.cfg.Log.Ctx(ctx).Info("Booking rescheduled",
		"from", source.ID,
		"to", replacement.ID,
		"staff_id", replacement.StaffID,
		"date", replacement.Date,
		"interval", replacement.Interval().String(),
	)
	return replacement, nil
}

func (s *bookingService) rescheduleFailed(err error) error {
	appErr := apperrors.AsAppError(err)
	s.metrics.Rescheduled(appErr.Code)
	return err
}
