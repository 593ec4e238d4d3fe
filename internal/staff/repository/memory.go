package repository

import (
	"context"
	"fmt"
	"maps"
	stafferrors "salonbook/internal/staff/errors"
	"salonbook/pkg/model"
	"sync"
)

type MemoryStaffRepository struct {
	mu    sync.RWMutex
	staff map[string]*model.Staff
}

func NewMemoryStaffRepository() *MemoryStaffRepository {
	return &MemoryStaffRepository{staff: make(map[string]*model.Staff)}
}

func (r *MemoryStaffRepository) FindByID(_ context.Context, id string) (*model.Staff, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.staff[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", stafferrors.ErrNotFound, id)
	}
	return clone(s), nil
}

func (r *MemoryStaffRepository) Upsert(_ context.Context, staff *model.Staff) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.staff[staff.ID]; ok && existing.UpdatedAt.After(staff.UpdatedAt) {
		return false, nil
	}
	r.staff[staff.ID] = clone(staff)
	return true, nil
}

func (r *MemoryStaffRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.staff[id]; !ok {
		return fmt.Errorf("%w: %s", stafferrors.ErrNotFound, id)
	}
	delete(r.staff, id)
	return nil
}

func clone(s *model.Staff) *model.Staff {
	out := *s
	out.WeeklySchedule = maps.Clone(s.WeeklySchedule)
	out.Vacations = append([]model.Vacation(nil), s.Vacations...)
	out.ExtraWorkDays = append([]model.ExtraWorkDay(nil), s.ExtraWorkDays...)
	return &out
}
