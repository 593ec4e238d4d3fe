// Package cancellation computes refunds owed when a client cancels a booking.
package cancellation

import (
	"fmt"
	"time"
)

const (
	DefaultFullRefundHours    = 24
	DefaultPartialRefundHours = 12
	DefaultPartialPercent     = 50
)

type Refund struct {
	Percent int   `json:"refund_percent"`
	Amount  int64 `json:"refund_amount"`
}

// Policy is a two-tier refund schedule. More than FullAfter before the appointment refunds
// everything, more than PartialAfter refunds PartialPercent, anything later refunds nothing.
// Both comparisons are strict, so an exact boundary falls into the lower tier.
type Policy struct {
	FullAfter      time.Duration
	PartialAfter   time.Duration
	PartialPercent int
}

func DefaultPolicy() Policy {
	return Policy{
		FullAfter:      DefaultFullRefundHours * time.Hour,
		PartialAfter:   DefaultPartialRefundHours * time.Hour,
		PartialPercent: DefaultPartialPercent,
	}
}

func (p Policy) Validate() error {
	if p.PartialAfter < 0 {
		return fmt.Errorf("partial refund threshold must not be negative")
	}
	if p.FullAfter <= p.PartialAfter {
		return fmt.Errorf("full refund threshold (%s) must exceed partial threshold (%s)", p.FullAfter, p.PartialAfter)
	}
	if p.PartialPercent < 0 || p.PartialPercent > 100 {
		return fmt.Errorf("partial refund percent must be within 0..100, got %d", p.PartialPercent)
	}
	return nil
}

func (p Policy) Percent(appointment, now time.Time) int {
	until := appointment.Sub(now)
	switch {
	case until > p.FullAfter:
		return 100
	case until > p.PartialAfter:
		return p.PartialPercent
	default:
		return 0
	}
}

// Refund applies the schedule to price, rounding half up to the minor unit.
func (p Policy) Refund(appointment, now time.Time, price int64) Refund {
	percent := p.Percent(appointment, now)
	return Refund{Percent: percent, Amount: Amount(price, percent)}
}

func Amount(price int64, percent int) int64 {
	if price <= 0 || percent <= 0 {
		return 0
	}
	return (price*int64(percent) + 50) / 100
}
