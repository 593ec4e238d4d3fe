package model

import (
	"time"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID                 string        `json:"id" bson:"_id"`
	StaffID            string        `json:"staff_id" bson:"staff_id"`
	Date               Date          `json:"date" bson:"date"`
	StartTime          TimeOfDay     `json:"start_time" bson:"start_time"`
	DurationMinutes    int           `json:"duration_minutes" bson:"duration_minutes"`
	Status             BookingStatus `json:"status" bson:"status"`
	Price              int64         `json:"price" bson:"price"`
	CreatedAt          time.Time     `json:"created_at" bson:"created_at"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CancellationReason string        `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`
	RefundAmount       *int64        `json:"refund_amount,omitempty" bson:"refund_amount,omitempty"`
	RefundPercent      *int          `json:"refund_percent,omitempty" bson:"refund_percent,omitempty"`
	RescheduledFrom    string        `json:"rescheduled_from,omitempty" bson:"rescheduled_from,omitempty"`
	RescheduledTo      string        `json:"rescheduled_to,omitempty" bson:"rescheduled_to,omitempty"`
}

func (b *Booking) Interval() Interval {
	return NewInterval(b.StartTime, b.DurationMinutes)
}

func (b *Booking) Key() SlotKey {
	return SlotKey{StaffID: b.StaffID, Date: b.Date}
}

func (b *Booking) IsConfirmed() bool {
	return b.Status == BookingConfirmed
}

// Cancellation describes the terminal transition applied to a confirmed booking.
type Cancellation struct {
	At            time.Time
	Reason        string
	RefundAmount  int64
	RefundPercent int
	// RescheduledTo is set when the cancellation is the losing half of a move.
	RescheduledTo string
}

// Apply mutates b into its cancelled form.
func (c Cancellation) Apply(b *Booking) {
	at := c.At
	b.Status = BookingCancelled
	b.CancelledAt = &at
	b.CancellationReason = c.Reason
	b.RescheduledTo = c.RescheduledTo
	if c.RescheduledTo == "" {
		amount, percent := c.RefundAmount, c.RefundPercent
		b.RefundAmount = &amount
		b.RefundPercent = &percent
	}
}

// SlotKey identifies the unit of serialization for booking writes.
type SlotKey struct {
	StaffID string
	Date    Date
}

func (k SlotKey) String() string {
	return k.StaffID + "|" + k.Date.String()
}
