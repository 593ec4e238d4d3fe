// Package events publishes booking lifecycle notifications. Publishing never blocks
// or fails a booking operation.
package events

import (
	"salonbook/pkg/model"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	BookingCreated     Type = "booking.created"
	BookingCancelled   Type = "booking.cancelled"
	BookingRescheduled Type = "booking.rescheduled"
)

type Event struct {
	ID         string         `json:"id"`
	Type       Type           `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Booking    *model.Booking `json:"booking"`
	// Previous is the cancelled source of a reschedule.
	Previous *model.Booking `json:"previous,omitempty"`
}

func newEvent(t Type, at time.Time, booking *model.Booking) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: at.UTC(),
		Booking:    booking,
	}
}

func Created(b *model.Booking, at time.Time) Event {
	return newEvent(BookingCreated, at, b)
}

func Cancelled(b *model.Booking, at time.Time) Event {
	return newEvent(BookingCancelled, at, b)
}

func Rescheduled(created, previous *model.Booking, at time.Time) Event {
	ev := newEvent(BookingRescheduled, at, created)
	ev.Previous = previous
	return ev
}

// Key orders events per staff member on the topic.
func (e Event) Key() string {
	if e.Booking == nil {
		return e.ID
	}
	return e.Booking.StaffID
}
