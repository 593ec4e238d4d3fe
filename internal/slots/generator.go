package slots

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"

	"salonbook/internal/availability"
	"salonbook/pkg/model"
)

const DefaultGranularity = 15

var (
	ErrInvalidDuration    = errors.New("duration must be between 1 minute and one day")
	ErrInvalidGranularity = errors.New("granularity must be between 1 minute and one day")
)

type StaffReader interface {
	// FindStaff returns nil, nil when the staff member is unknown.
	FindStaff(ctx context.Context, staffID string) (*model.Staff, error)
}

type BookingReader interface {
	FindConfirmedByStaffAndDate(ctx context.Context, staffID string, date model.Date) ([]*model.Booking, error)
}

type Generator struct {
	staff              StaffReader
	bookings           BookingReader
	defaultGranularity int
}

func NewGenerator(staff StaffReader, bookings BookingReader, defaultGranularity int) *Generator {
	if defaultGranularity <= 0 {
		defaultGranularity = DefaultGranularity
	}
	return &Generator{
		staff:              staff,
		bookings:           bookings,
		defaultGranularity: defaultGranularity,
	}
}

// Slots is a finite, restartable sequence of free start times computed against
// the bookings snapshot taken when it was generated.
type Slots struct {
	window   model.Interval
	open     bool
	busy     []model.Interval
	duration int
	step     int
}

func (s *Slots) All() iter.Seq[model.TimeOfDay] {
	if !s.open {
		return func(func(model.TimeOfDay) bool) {}
	}
	return Enumerate(s.window, s.busy, s.duration, s.step)
}

func (s *Slots) Collect() []model.TimeOfDay {
	out := slices.Collect(s.All())
	if out == nil {
		out = []model.TimeOfDay{}
	}
	return out
}

// Generate reads staff availability and the confirmed bookings for the day once.
// A granularity of zero selects the generator default.
func (g *Generator) Generate(ctx context.Context, staffID string, date model.Date, durationMin, granularity int) (*Slots, error) {
	if !model.ValidDuration(durationMin) {
		return nil, ErrInvalidDuration
	}
	if granularity == 0 {
		granularity = g.defaultGranularity
	}
	if !model.ValidDuration(granularity) {
		return nil, ErrInvalidGranularity
	}

	staff, err := g.staff.FindStaff(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("failed to load staff %s: %w", staffID, err)
	}

	window, open := availability.EffectiveWindow(staff, date)
	result := &Slots{window: window, open: open, duration: durationMin, step: granularity}
	if !open {
		return result, nil
	}

	booked, err := g.bookings.FindConfirmedByStaffAndDate(ctx, staffID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings for %s on %s: %w", staffID, date, err)
	}
	result.busy = Busy(booked)
	return result, nil
}

// Busy extracts the intervals of confirmed bookings.
func Busy(bookings []*model.Booking) []model.Interval {
	busy := make([]model.Interval, 0, len(bookings))
	for _, b := range bookings {
		if b.IsConfirmed() {
			busy = append(busy, b.Interval())
		}
	}
	return busy
}

// Enumerate yields window.Start + k*step for every k where the candidate fits in the
// window and overlaps none of busy.
func Enumerate(window model.Interval, busy []model.Interval, durationMin, step int) iter.Seq[model.TimeOfDay] {
	return func(yield func(model.TimeOfDay) bool) {
		span := int(window.End) - int(window.Start)
		if durationMin <= 0 || step <= 0 || durationMin > span {
			return
		}
		// offsets stay within [0, 2*span] so the loop cannot overflow
		step = min(step, span+1)
		for offset := 0; offset <= span-durationMin; offset += step {
			start := window.Start.Add(offset)
			if Free(model.NewInterval(start, durationMin), busy) && !yield(start) {
				return
			}
		}
	}
}

func Free(candidate model.Interval, busy []model.Interval) bool {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return false
		}
	}
	return true
}
