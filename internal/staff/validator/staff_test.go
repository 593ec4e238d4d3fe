package validator

import (
	"errors"
	"io"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
	"strings"
	"testing"
)

func newTestValidator() *StaffValidator {
	return NewStaffValidator(logger.New(logger.Config{
		Level:   "error",
		Output:  io.Discard,
		Service: "test",
	}))
}

func validStaff() *model.Staff {
	return &model.Staff{
		ID:   "stylist-1",
		Name: "Dana",
		WeeklySchedule: map[model.Weekday]model.WorkDay{
			model.Monday: {IsWorking: true, StartTime: model.MustParseTimeOfDay("09:00"), EndTime: model.MustParseTimeOfDay("17:00")},
			model.Sunday: {IsWorking: false},
		},
	}
}

func TestValidate(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name      string
		mutate    func(s *model.Staff)
		wantError string
	}{
		{
			name:   "valid staff",
			mutate: func(*model.Staff) {},
		},
		{
			name:   "empty schedule is valid",
			mutate: func(s *model.Staff) { s.WeeklySchedule = nil },
		},
		{
			name:      "missing id",
			mutate:    func(s *model.Staff) { s.ID = "" },
			wantError: "ID is required",
		},
		{
			name: "unknown weekday",
			mutate: func(s *model.Staff) {
				s.WeeklySchedule["Funday"] = model.WorkDay{IsWorking: true, StartTime: 60, EndTime: 120}
			},
			wantError: "weekly_schedule",
		},
		{
			name: "working day ends before it starts",
			mutate: func(s *model.Staff) {
				s.WeeklySchedule[model.Tuesday] = model.WorkDay{IsWorking: true, StartTime: 600, EndTime: 540}
			},
			wantError: "weekly_schedule",
		},
		{
			name: "day off with odd times is ignored",
			mutate: func(s *model.Staff) {
				s.WeeklySchedule[model.Tuesday] = model.WorkDay{IsWorking: false, StartTime: 600, EndTime: 540}
			},
		},
		{
			name: "vacation with end before start",
			mutate: func(s *model.Staff) {
				s.Vacations = []model.Vacation{{
					StartDate: model.MustParseDate("2025-07-10"),
					EndDate:   model.MustParseDate("2025-07-01"),
				}}
			},
			wantError: "end_date must not be before start_date",
		},
		{
			name: "single day vacation",
			mutate: func(s *model.Staff) {
				s.Vacations = []model.Vacation{{
					StartDate: model.MustParseDate("2025-07-10"),
					EndDate:   model.MustParseDate("2025-07-10"),
				}}
			},
		},
		{
			name: "extra work day with empty window",
			mutate: func(s *model.Staff) {
				s.ExtraWorkDays = []model.ExtraWorkDay{{
					Date:      model.MustParseDate("2025-07-12"),
					StartTime: model.MustParseTimeOfDay("10:00"),
					EndTime:   model.MustParseTimeOfDay("10:00"),
				}}
			},
			wantError: "start_time must be before end_time",
		},
		{
			name: "extra work day without date",
			mutate: func(s *model.Staff) {
				s.ExtraWorkDays = []model.ExtraWorkDay{{
					StartTime: model.MustParseTimeOfDay("10:00"),
					EndTime:   model.MustParseTimeOfDay("14:00"),
				}}
			},
			wantError: "Date is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validStaff()
			tt.mutate(s)
			err := v.Validate(s)

			if tt.wantError == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantError)
			}
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Validate() error type = %T, want ValidationErrors", err)
			}
			if !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantError)
			}
		})
	}
}
