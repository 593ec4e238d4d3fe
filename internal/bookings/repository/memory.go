package repository

import (
	"context"
	"fmt"
	bookingserrors "salonbook/internal/bookings/errors"
	"salonbook/pkg/model"
	"slices"
	"sync"
	"time"
)

// MemoryBookingRepository keeps bookings in process memory, indexed by (staff, date).
// Returned bookings are copies, so callers cannot mutate stored state.
type MemoryBookingRepository struct {
	mu    sync.RWMutex
	byID  map[string]*model.Booking
	byKey map[model.SlotKey][]string
}

func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{
		byID:  make(map[string]*model.Booking),
		byKey: make(map[model.SlotKey][]string),
	}
}

func (r *MemoryBookingRepository) Create(_ context.Context, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(booking)
}

func (r *MemoryBookingRepository) insertLocked(booking *model.Booking) error {
	if _, exists := r.byID[booking.ID]; exists {
		return fmt.Errorf("failed to create booking: duplicate id %s", booking.ID)
	}
	stored := *booking
	r.byID[booking.ID] = &stored
	key := booking.Key()
	r.byKey[key] = append(r.byKey[key], booking.ID)
	return nil
}

func (r *MemoryBookingRepository) FindByID(_ context.Context, id string) (*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byID[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	out := *b
	return &out, nil
}

func (r *MemoryBookingRepository) FindConfirmedByStaffAndDate(ctx context.Context, staffID string, date model.Date) ([]*model.Booking, error) {
	return r.FindByStaffAndDate(ctx, staffID, date, model.BookingConfirmed)
}

func (r *MemoryBookingRepository) FindByStaffAndDate(_ context.Context, staffID string, date model.Date, status model.BookingStatus) ([]*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byKey[model.SlotKey{StaffID: staffID, Date: date}]
	out := make([]*model.Booking, 0, len(ids))
	for _, id := range ids {
		b := r.byID[id]
		if status != "" && b.Status != status {
			continue
		}
		c := *b
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *model.Booking) int { return int(a.StartTime - b.StartTime) })
	return out, nil
}

func (r *MemoryBookingRepository) Cancel(_ context.Context, id string, c model.Cancellation) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.byID[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	if !b.IsConfirmed() {
		return nil, bookingserrors.ErrAlreadyCancelled
	}
	c.Apply(b)
	out := *b
	return &out, nil
}

func (r *MemoryBookingRepository) Replace(_ context.Context, oldID string, replacement *model.Booking, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.byID[oldID]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	if !old.IsConfirmed() {
		return bookingserrors.ErrAlreadyCancelled
	}
	if err := r.insertLocked(replacement); err != nil {
		return err
	}
	model.Cancellation{At: at, RescheduledTo: replacement.ID}.Apply(old)
	return nil
}
