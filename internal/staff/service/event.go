package service

import (
	"fmt"
	stafferrors "salonbook/internal/staff/errors"
	"salonbook/pkg/model"
	"time"
)

type EventType string

const (
	EventUpserted EventType = "staff.upserted"
	EventDeleted  EventType = "staff.deleted"
)

// Event is one change published by the staff directory. Upserts carry the full snapshot.
type Event struct {
	Type       EventType    `json:"type"`
	StaffID    string       `json:"staff_id"`
	Staff      *model.Staff `json:"staff,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

func (e Event) check() error {
	switch e.Type {
	case EventUpserted:
		if e.Staff == nil {
			return fmt.Errorf("%w: %s without snapshot", stafferrors.ErrInvalidEvent, e.Type)
		}
		if e.StaffID != "" && e.StaffID != e.Staff.ID {
			return fmt.Errorf("%w: staff_id %q does not match snapshot id %q", stafferrors.ErrInvalidEvent, e.StaffID, e.Staff.ID)
		}
	case EventDeleted:
		if e.StaffID == "" {
			return fmt.Errorf("%w: %s without staff_id", stafferrors.ErrInvalidEvent, e.Type)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", stafferrors.ErrInvalidEvent, e.Type)
	}
	return nil
}
