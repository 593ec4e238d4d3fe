package service

import (
	"context"
	"errors"
	"salonbook/internal/availability"
	stafferrors "salonbook/internal/staff/errors"
	"salonbook/internal/staff/repository"
	"salonbook/internal/staff/validator"
	"salonbook/pkg/config"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/metrics"
	"salonbook/pkg/model"
	"salonbook/pkg/sanitizer"
	"time"
)

// Availability is the resolved work window of one staff member on one date.
type Availability struct {
	StaffID   string          `json:"staff_id"`
	Date      model.Date      `json:"date"`
	Available bool            `json:"available"`
	Window    *model.Interval `json:"window,omitempty"`
	Reason    string          `json:"reason"`
}

type StaffService interface {
	// FindStaff returns nil, nil for an unknown id. The returned value is shared and must not be modified.
	FindStaff(ctx context.Context, id string) (*model.Staff, error)
	GetByID(ctx context.Context, id string) (*model.Staff, error)
	Upsert(ctx context.Context, staff *model.Staff) error
	Delete(ctx context.Context, id string) error
	Apply(ctx context.Context, event Event) error
	Availability(ctx context.Context, id string, date model.Date) (*Availability, error)
}

type staffService struct {
	repo      repository.StaffRepository
	validator *validator.StaffValidator
	cache     *staffCache
	metrics   *metrics.Metrics
	cfg       *config.Config
	now       func() time.Time
}

func NewStaffService(
	repo repository.StaffRepository,
	validator *validator.StaffValidator,
	m *metrics.Metrics,
	cfg *config.Config,
) StaffService {
	return &staffService{
		repo:      repo,
		validator: validator,
		cache:     newStaffCache(cfg.StaffCacheTTL),
		metrics:   m,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *staffService) FindStaff(ctx context.Context, id string) (*model.Staff, error) {
	if staff, ok := s.cache.get(id); ok {
		return staff, nil
	}

	gen := s.cache.generation()
	staff, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, stafferrors.ErrNotFound) {
			return nil, err
		}
		staff = nil
	}
	s.cache.put(id, staff, gen)
	return staff, nil
}

func (s *staffService) GetByID(ctx context.Context, id string) (*model.Staff, error) {
	id = sanitizer.NormalizeID(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Staff ID cannot be empty")
	}

	staff, err := s.FindStaff(ctx, id)
	if err != nil {
		s.cfg.Log.Error("Failed to get staff by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve staff", err)
	}
	if staff == nil {
		return nil, apperrors.NotFoundWithID("Staff", id)
	}
	return staff, nil
}

func (s *staffService) Upsert(ctx context.Context, staff *model.Staff) error {
	s.sanitize(staff)
	if staff.UpdatedAt.IsZero() {
		staff.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
	}

	if err := s.validator.Validate(staff); err != nil {
		s.cfg.Log.Warn("Staff validation failed",
			"id", staff.ID,
			"error", err,
		)
		return apperrors.Validation("Staff validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	applied, err := s.repo.Upsert(ctx, staff)
	s.cache.invalidate(staff.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to upsert staff", "id", staff.ID, "error", err)
		return apperrors.Internal("Failed to store staff", err)
	}
	if !applied {
		s.cfg.Log.Info("Ignored stale staff snapshot",
			"id", staff.ID,
			"updated_at", staff.UpdatedAt,
		)
		return nil
	}

	s.cfg.Log.Info("Staff snapshot stored",
		"id", staff.ID,
		"vacations", len(staff.Vacations),
		"extra_work_days", len(staff.ExtraWorkDays),
	)
	return nil
}

func (s *staffService) Delete(ctx context.Context, id string) error {
	id = sanitizer.NormalizeID(id)
	if id == "" {
		return apperrors.InvalidInput("Staff ID cannot be empty")
	}

	err := s.repo.Delete(ctx, id)
	s.cache.invalidate(id)
	if err != nil {
		if errors.Is(err, stafferrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Staff", id)
		}
		s.cfg.Log.Error("Failed to delete staff", "id", id, "error", err)
		return apperrors.Internal("Failed to delete staff", err)
	}

	s.cfg.Log.Info("Staff deleted", "id", id)
	return nil
}

// Apply ingests one directory event. Deleting an unknown id succeeds so that replays are harmless.
func (s *staffService) Apply(ctx context.Context, event Event) error {
	if err := event.check(); err != nil {
		return apperrors.Validation("Invalid staff event", map[string]any{"error": err.Error()})
	}

	var err error
	switch event.Type {
	case EventUpserted:
		if event.Staff.UpdatedAt.IsZero() {
			event.Staff.UpdatedAt = event.OccurredAt
		}
		err = s.Upsert(ctx, event.Staff)
	case EventDeleted:
		err = s.Delete(ctx, event.StaffID)
		if appErr := apperrors.AsAppError(err); appErr != nil && appErr.Code == apperrors.CodeNotFound {
			err = nil
		}
	}
	if err != nil {
		return err
	}

	s.metrics.StaffSynced(string(event.Type))
	return nil
}

func (s *staffService) Availability(ctx context.Context, id string, date model.Date) (*Availability, error) {
	id = sanitizer.NormalizeID(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Staff ID cannot be empty")
	}

	staff, err := s.FindStaff(ctx, id)
	if err != nil {
		s.cfg.Log.Error("Failed to load staff for availability", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve staff", err)
	}
	if staff == nil {
		return nil, apperrors.NotFoundWithID("Staff", id)
	}

	decision := availability.Decide(staff, date)
	out := &Availability{
		StaffID:   id,
		Date:      date,
		Available: decision.Open,
		Reason:    decision.Reason,
	}
	if decision.Open {
		out.Window = &decision.Window
	}
	return out, nil
}

func (s *staffService) sanitize(staff *model.Staff) {
	staff.ID = sanitizer.NormalizeID(staff.ID)
	staff.Name = sanitizer.NormalizeName(staff.Name)
	for i := range staff.Vacations {
		staff.Vacations[i].Reason = sanitizer.NormalizeReason(staff.Vacations[i].Reason)
	}
}
