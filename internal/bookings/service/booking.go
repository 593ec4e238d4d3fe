package service

import (
	"context"
	"errors"
	"salonbook/internal/availability"
	bookingserrors "salonbook/internal/bookings/errors"
	"salonbook/internal/bookings/events"
	"salonbook/internal/bookings/repository"
	"salonbook/internal/bookings/validator"
	"salonbook/internal/cancellation"
	"salonbook/internal/locking"
	"salonbook/internal/slots"
	"salonbook/pkg/config"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/metrics"
	"salonbook/pkg/model"
	"salonbook/pkg/sanitizer"
	"time"

	"github.com/google/uuid"
)

// BookingService is the booking ledger. Every write to a (staff, date) calendar runs
// under that calendar's lock, so confirmed bookings on one calendar never overlap.
type BookingService interface {
	IsSlotFree(ctx context.Context, staffID string, date model.Date, start model.TimeOfDay, durationMin int) (bool, error)
	Create(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error)
	// Cancel applies the refund policy relative to now, which the caller supplies.
	Cancel(ctx context.Context, id, reason string, now time.Time) (*model.CancelResult, error)
	// Move books the same service elsewhere and cancels the source in one atomic step.
	Move(ctx context.Context, id string, req *model.RescheduleRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByStaffAndDate(ctx context.Context, staffID string, date model.Date, status model.BookingStatus) ([]*model.Booking, error)
	AvailableSlots(ctx context.Context, staffID string, date model.Date, durationMin, granularity int) ([]model.TimeOfDay, error)
}

// Emitter receives lifecycle events after a write commits.
type Emitter interface {
	Emit(ev events.Event)
}

type Deps struct {
	Repo      repository.BookingRepository
	Locker    locking.Locker
	Staff     slots.StaffReader
	Validator *validator.BookingValidator
	Policy    cancellation.Policy
	Events    Emitter
	Metrics   *metrics.Metrics
}

type bookingService struct {
	repo      repository.BookingRepository
	locker    locking.Locker
	staff     slots.StaffReader
	slots     *slots.Generator
	validator *validator.BookingValidator
	policy    cancellation.Policy
	events    Emitter
	metrics   *metrics.Metrics
	cfg       *config.Config
	loc       *time.Location
	now       func() time.Time
}

func NewBookingService(deps Deps, cfg *config.Config) BookingService {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &bookingService{
		repo:      deps.Repo,
		locker:    deps.Locker,
		staff:     deps.Staff,
		slots:     slots.NewGenerator(deps.Staff, deps.Repo, cfg.SlotGranularityMin),
		validator: deps.Validator,
		policy:    deps.Policy,
		events:    deps.Events,
		metrics:   deps.Metrics,
		cfg:       cfg,
		loc:       loc,
		now:       time.Now,
	}
}

// IsSlotFree only looks at confirmed bookings; the staff window is checked by Create.
func (s *bookingService) IsSlotFree(ctx context.Context, staffID string, date model.Date, start model.TimeOfDay, durationMin int) (bool, error) {
	if !model.ValidDuration(durationMin) {
		return false, bookingserrors.InvalidDuration(durationMin)
	}

	staffID = sanitizer.NormalizeID(staffID)
	existing, err := s.repo.FindConfirmedByStaffAndDate(ctx, staffID, date)
	if err != nil {
		s.cfg.Log.Ctx(ctx).Error("Failed to check existing bookings", "staff_id", staffID, "date", date, "error", err)
		return false, apperrors.Internal("Failed to check existing bookings", err)
	}
	return !overlapsAny(existing, model.NewInterval(start, durationMin), ""), nil
}

func (s *bookingService) create(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	req.StaffID = sanitizer.NormalizeID(req.StaffID)
	if !model.ValidDuration(req.DurationMinutes) {
		return nil, s.reject(bookingserrors.InvalidDuration(req.DurationMinutes))
	}
	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Ctx(ctx).Warn("Booking validation failed", "staff_id", req.StaffID, "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	booking := &model.Booking{
		StaffID:         req.StaffID,
		Date:            req.Date,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
	}

	release, err := s.lock(ctx, booking.Key())
	if err != nil {
		return nil, s.reject(err)
	}
	defer release()

	if err := s.checkPlacement(ctx, booking, ""); err != nil {
		return nil, s.reject(err)
	}

	booking.ID = uuid.NewString()
	booking.Status = model.BookingConfirmed
	booking.CreatedAt = s.now().UTC().Truncate(time.Millisecond)
	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.Ctx(ctx).Error("Failed to create booking", "staff_id", booking.StaffID, "date", booking.Date, "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.metrics.BookingCreated()
	s.emit(events.Created(snapshot(booking), booking.CreatedAt))
	s.cfg.Log.Ctx(ctx).Info("Booking created successfully",
		"id", booking.ID,
		"staff_id", booking.StaffID,
		"date", booking.Date,
		"interval", booking.Interval().String(),
	)
	return booking, nil
}

func (s *bookingService) cancel(ctx context.Context, id, reason string, now time.Time) (*model.CancelResult, error) {
	id = sanitizer.NormalizeID(id)
	req := &model.CancelBookingRequest{Reason: sanitizer.NormalizeReason(reason)}
	if err := s.validator.ValidateCancel(req); err != nil {
		return nil, apperrors.Validation("Cancellation validation failed", map[string]any{"error": err.Error()})
	}

	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.IsConfirmed() {
		return nil, bookingserrors.AlreadyCancelled(id)
	}

	release, err := s.lock(ctx, booking.Key())
	if err != nil {
		return nil, err
	}
	defer release()

	appointment := booking.Date.At(booking.StartTime, s.loc)
	refund := s.policy.Refund(appointment, now, booking.Price)

	cancelled, err := s.repo.Cancel(ctx, id, model.Cancellation{
		At:            now.UTC().Truncate(time.Millisecond),
		Reason:        req.Reason,
		RefundAmount:  refund.Amount,
		RefundPercent: refund.Percent,
	})
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to cancel booking")
	}

	s.metrics.BookingCancelled(refund.Percent)
	s.emit(events.Cancelled(snapshot(cancelled), now))
	s.cfg.Log.Ctx(ctx).Info("Booking cancelled",
		"id", id,
		"staff_id", cancelled.StaffID,
		"refund_percent", refund.Percent,
		"refund_amount", refund.Amount,
	)
	return &model.CancelResult{
		BookingID:     id,
		Status:        cancelled.Status,
		RefundAmount:  refund.Amount,
		RefundPercent: refund.Percent,
	}, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	id = sanitizer.NormalizeID(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	return s.load(ctx, id)
}

func (s *bookingService) ListByStaffAndDate(ctx context.Context, staffID string, date model.Date, status model.BookingStatus) ([]*model.Booking, error) {
	staffID = sanitizer.NormalizeID(staffID)
	if staffID == "" {
		return nil, apperrors.InvalidInput("staff_id is required")
	}
	switch status {
	case "", model.BookingConfirmed, model.BookingCancelled:
	default:
		return nil, apperrors.InvalidInput("status must be confirmed or cancelled")
	}

	bookings, err := s.repo.FindByStaffAndDate(ctx, staffID, date, status)
	if err != nil {
		s.cfg.Log.Ctx(ctx).Error("Failed to list bookings", "staff_id", staffID, "date", date, "error", err)
		return nil, apperrors.Internal("Failed to list bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) availableSlots(ctx context.Context, staffID string, date model.Date, durationMin, granularity int) ([]model.TimeOfDay, error) {
	staffID = sanitizer.NormalizeID(staffID)
	if staffID == "" {
		return nil, apperrors.InvalidInput("staff_id is required")
	}

	result, err := s.slots.Generate(ctx, staffID, date, durationMin, granularity)
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrInvalidDuration):
			return nil, bookingserrors.InvalidDuration(durationMin)
		case errors.Is(err, slots.ErrInvalidGranularity):
			return nil, apperrors.InvalidInput("granularity must be between 1 and 1440 minutes")
		}
		s.cfg.Log.Ctx(ctx).Error("Failed to generate slots", "staff_id", staffID, "date", date, "error", err)
		return nil, apperrors.Internal("Failed to compute available slots", err)
	}

	s.metrics.SlotQuery()
	return result.Collect(), nil
}

// --- Helpers ---

// checkPlacement verifies that b fits the staff window for its date and overlaps no
// confirmed booking other than ignoreID. Callers hold the lock for b's key when writing.
func (s *bookingService) checkPlacement(ctx context.Context, b *model.Booking, ignoreID string) error {
	key := b.Key()
	requested := b.Interval()

	staff, err := s.staff.FindStaff(ctx, b.StaffID)
	if err != nil {
		return apperrors.Internal("Failed to load staff availability", err)
	}
	window, ok := availability.EffectiveWindow(staff, b.Date)
	if !ok {
		return bookingserrors.StaffNotAvailable(key)
	}
	if !window.Contains(requested) {
		return bookingserrors.OutOfWindow(key, requested, window)
	}

	existing, err := s.repo.FindConfirmedByStaffAndDate(ctx, b.StaffID, b.Date)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}
	if overlapsAny(existing, requested, ignoreID) {
		return bookingserrors.SlotUnavailable(key, requested)
	}
	return nil
}

func overlapsAny(existing []*model.Booking, requested model.Interval, ignoreID string) bool {
	for _, other := range existing {
		if other.ID != ignoreID && other.Interval().Overlaps(requested) {
			return true
		}
	}
	return false
}

func (s *bookingService) lock(ctx context.Context, keys ...model.SlotKey) (locking.Release, error) {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}

	started := time.Now()
	release, err := s.locker.Acquire(ctx, names...)
	s.metrics.ObserveLockWait(time.Since(started), err == nil)
	if err == nil {
		return release, nil
	}

	switch {
	case errors.Is(err, locking.ErrTimeout):
		s.cfg.Log.Ctx(ctx).Warn("Calendar lock wait exceeded", "keys", names)
		return nil, bookingserrors.ConcurrencyConflict(keys...)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, apperrors.Timeout("Request ended while waiting for the calendar")
	default:
		s.cfg.Log.Ctx(ctx).Error("Failed to acquire calendar lock", "keys", names, "error", err)
		return nil, apperrors.Internal("Failed to acquire calendar lock", err)
	}
}

func (s *bookingService) load(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve booking")
	}
	return booking, nil
}

func (s *bookingService) mapRepoError(err error, id, message string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return bookingserrors.NotFound(id)
	case errors.Is(err, bookingserrors.ErrAlreadyCancelled):
		return bookingserrors.AlreadyCancelled(id)
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func (s *bookingService) reject(err error) error {
	if appErr := apperrors.AsAppError(err); appErr.HTTPStatus < 500 {
		s.metrics.BookingRejected(appErr.Code)
	}
	return err
}

func (s *bookingService) emit(ev events.Event) {
	if s.events != nil {
		s.events.Emit(ev)
	}
}

// snapshot copies b so that queued events never share memory with the caller's booking.
func snapshot(b *model.Booking) *model.Booking {
	out := *b
	return &out
}
