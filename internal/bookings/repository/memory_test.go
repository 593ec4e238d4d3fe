package repository

import (
	"context"
	"testing"
	"time"

	bookingserrors "salonbook/internal/bookings/errors"
	"salonbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = model.MustParseDate("2024-06-10")

func booking(id, start string, duration int) *model.Booking {
	return &model.Booking{
		ID:              id,
		StaffID:         "staff-1",
		Date:            day,
		StartTime:       model.MustParseTimeOfDay(start),
		DurationMinutes: duration,
		Status:          model.BookingConfirmed,
		Price:           10000,
	}
}

func TestMemoryBookingRepository_CreateAndFind(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, booking("b2", "11:00", 30)))
	require.NoError(t, repo.Create(ctx, booking("b1", "09:00", 60)))
	assert.Error(t, repo.Create(ctx, booking("b1", "15:00", 60)), "duplicate id")

	got, err := repo.FindByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "09:00", got.StartTime.String())

	got.StartTime = model.MustParseTimeOfDay("13:00")
	again, _ := repo.FindByID(ctx, "b1")
	assert.Equal(t, "09:00", again.StartTime.String(), "stored booking must not alias returned copy")

	list, err := repo.FindConfirmedByStaffAndDate(ctx, "staff-1", day)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b1", list[0].ID, "ordered by start time")

	other, err := repo.FindByStaffAndDate(ctx, "staff-1", day.AddDays(1), "")
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, bookingserrors.ErrNotFound)
}

func TestMemoryBookingRepository_Cancel(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, booking("b1", "09:00", 60)))

	now := time.Date(2024, 6, 9, 8, 0, 0, 0, time.UTC)
	cancelled, err := repo.Cancel(ctx, "b1", model.Cancellation{At: now, Reason: "sick", RefundAmount: 10000, RefundPercent: 100})
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, cancelled.Status)
	assert.EqualValues(t, 10000, *cancelled.RefundAmount)

	_, err = repo.Cancel(ctx, "b1", model.Cancellation{At: now})
	assert.ErrorIs(t, err, bookingserrors.ErrAlreadyCancelled)

	_, err = repo.Cancel(ctx, "missing", model.Cancellation{At: now})
	assert.ErrorIs(t, err, bookingserrors.ErrNotFound)

	confirmed, _ := repo.FindConfirmedByStaffAndDate(ctx, "staff-1", day)
	assert.Empty(t, confirmed)
	all, _ := repo.FindByStaffAndDate(ctx, "staff-1", day, "")
	assert.Len(t, all, 1, "cancelled bookings are kept")
}

func TestMemoryBookingRepository_Replace(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, booking("old", "09:00", 60)))

	moved := booking("new", "14:00", 60)
	moved.RescheduledFrom = "old"
	require.NoError(t, repo.Replace(ctx, "old", moved, time.Now()))

	old, _ := repo.FindByID(ctx, "old")
	assert.Equal(t, model.BookingCancelled, old.Status)
	assert.Equal(t, "new", old.RescheduledTo)
	assert.Nil(t, old.RefundAmount, "a move is not refunded")

	again := booking("newer", "16:00", 60)
	assert.ErrorIs(t, repo.Replace(ctx, "old", again, time.Now()), bookingserrors.ErrAlreadyCancelled)
	_, err := repo.FindByID(ctx, "newer")
	assert.ErrorIs(t, err, bookingserrors.ErrNotFound, "failed replace must not insert")
}
