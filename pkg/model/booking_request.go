package model

// CreateBookingRequest is the body of POST /api/v1/bookings. Duration is checked by the
// ledger rather than the validator so that it reports INVALID_DURATION.
type CreateBookingRequest struct {
	StaffID         string    `json:"staff_id" validate:"required,max=64"`
	Date            Date      `json:"date" validate:"calendar_date"`
	StartTime       TimeOfDay `json:"start_time" validate:"start_of_slot"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           int64     `json:"price" validate:"gte=0"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type RescheduleRequest struct {
	StaffID   string    `json:"staff_id" validate:"required,max=64"`
	Date      Date      `json:"date" validate:"calendar_date"`
	StartTime TimeOfDay `json:"start_time" validate:"start_of_slot"`
}

// CancelResult is what a caller sees after a cancellation.
type CancelResult struct {
	BookingID     string        `json:"booking_id"`
	Status        BookingStatus `json:"status"`
	RefundAmount  int64         `json:"refund_amount"`
	RefundPercent int           `json:"refund_percent"`
}
