// Package availability answers whether a staff member works on a given date and within which window.
//
// Precedence, highest first: a vacation covering the date closes it; an extra work day
// on the date opens it with its own window; otherwise the weekly schedule entry for the
// date's weekday decides. Missing data means closed.
package availability

import "salonbook/pkg/model"

const (
	ReasonUnknownStaff   = "unknown staff"
	ReasonVacation       = "vacation"
	ReasonExtraWorkDay   = "extra work day"
	ReasonWeeklySchedule = "weekly schedule"
	ReasonEmptyWindow    = "empty window"
	ReasonDayOff         = "day off"
)

// Decision is the outcome for one staff member and date. Window is zero when closed.
type Decision struct {
	Window model.Interval
	Open   bool
	Reason string
}

func Decide(staff *model.Staff, date model.Date) Decision {
	if staff == nil {
		return Decision{Reason: ReasonUnknownStaff}
	}

	for _, v := range staff.Vacations {
		if v.Covers(date) {
			return Decision{Reason: ReasonVacation}
		}
	}

	for _, extra := range staff.ExtraWorkDays {
		if extra.Date == date {
			return open(extra.Window(), ReasonExtraWorkDay)
		}
	}

	day, ok := staff.WeeklySchedule[date.Weekday()]
	if !ok || !day.IsWorking {
		return Decision{Reason: ReasonDayOff}
	}
	return open(day.Window(), ReasonWeeklySchedule)
}

func open(w model.Interval, reason string) Decision {
	if w.Start >= w.End {
		return Decision{Reason: ReasonEmptyWindow}
	}
	return Decision{Window: w, Open: true, Reason: reason}
}

func IsAvailable(staff *model.Staff, date model.Date) bool {
	return Decide(staff, date).Open
}

// EffectiveWindow returns the bookable window for staff on date, or false when the day is closed.
func EffectiveWindow(staff *model.Staff, date model.Date) (model.Interval, bool) {
	d := Decide(staff, date)
	return d.Window, d.Open
}

// Explain gives a short human readable reason for the availability decision, used in API responses.
func Explain(staff *model.Staff, date model.Date) string {
	return Decide(staff, date).Reason
}
