package errors

import (
	"errors"
	"net/http"
	"salonbook/pkg/model"

	apperrors "salonbook/pkg/errors"
)

var (
	ErrNotFound = errors.New("booking not found")

	ErrSlotUnavailable = errors.New("requested interval overlaps a confirmed booking")

	ErrOutOfWindow = errors.New("requested interval is outside the staff work window")

	ErrStaffNotAvailable = errors.New("staff is not available on the requested date")

	ErrAlreadyCancelled = errors.New("booking is already cancelled")

	ErrInvalidDuration = errors.New("duration must be between 1 minute and one day")

	ErrConcurrencyConflict = errors.New("another write for the same staff and date is in progress")
)

const (
	CodeSlotUnavailable     = "SLOT_UNAVAILABLE"
	CodeOutOfWindow         = "OUT_OF_WINDOW"
	CodeStaffNotAvailable   = "STAFF_NOT_AVAILABLE"
	CodeBookingNotFound     = "BOOKING_NOT_FOUND"
	CodeAlreadyCancelled    = "ALREADY_CANCELLED"
	CodeInvalidDuration     = "INVALID_DURATION"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
)

func NotFound(id string) *apperrors.AppError {
	return apperrors.Wrap(ErrNotFound, CodeBookingNotFound, "Booking not found", http.StatusNotFound).
		WithDetails(map[string]any{"id": id})
}

func SlotUnavailable(key model.SlotKey, requested model.Interval) *apperrors.AppError {
	return apperrors.Wrap(ErrSlotUnavailable, CodeSlotUnavailable, "The requested time overlaps an existing booking", http.StatusConflict).
		WithDetails(slotDetails(key, requested))
}

func OutOfWindow(key model.SlotKey, requested, window model.Interval) *apperrors.AppError {
	details := slotDetails(key, requested)
	details["window"] = window.String()
	return apperrors.Wrap(ErrOutOfWindow, CodeOutOfWindow, "The requested time is outside working hours", http.StatusUnprocessableEntity).
		WithDetails(details)
}

func StaffNotAvailable(key model.SlotKey) *apperrors.AppError {
	return apperrors.Wrap(ErrStaffNotAvailable, CodeStaffNotAvailable, "Staff member does not work on the requested date", http.StatusUnprocessableEntity).
		WithDetails(map[string]any{"staff_id": key.StaffID, "date": key.Date.String()})
}

func AlreadyCancelled(id string) *apperrors.AppError {
	return apperrors.Wrap(ErrAlreadyCancelled, CodeAlreadyCancelled, "Booking is already cancelled", http.StatusConflict).
		WithDetails(map[string]any{"id": id})
}

func InvalidDuration(duration int) *apperrors.AppError {
	return apperrors.Wrap(ErrInvalidDuration, CodeInvalidDuration, "Duration must be between 1 and 1440 minutes", http.StatusBadRequest).
		WithDetails(map[string]any{"duration_minutes": duration})
}

func ConcurrencyConflict(keys ...model.SlotKey) *apperrors.AppError {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return apperrors.Wrap(ErrConcurrencyConflict, CodeConcurrencyConflict, "The calendar is busy, please retry", http.StatusConflict).
		WithDetails(map[string]any{"keys": names}).
		Retryable()
}

func slotDetails(key model.SlotKey, requested model.Interval) map[string]any {
	return map[string]any{
		"staff_id":  key.StaffID,
		"date":      key.Date.String(),
		"requested": requested.String(),
	}
}
