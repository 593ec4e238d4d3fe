package model

import "time"

type Weekday string

const (
	Sunday    Weekday = "Sunday"
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
)

var weekdays = [...]Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

func WeekdayOf(d time.Weekday) Weekday {
	return weekdays[d]
}

func (w Weekday) Valid() bool {
	for _, d := range weekdays {
		if d == w {
			return true
		}
	}
	return false
}

// WorkDay is the recurring schedule entry for one weekday.
type WorkDay struct {
	IsWorking bool      `json:"is_working" bson:"is_working"`
	StartTime TimeOfDay `json:"start_time" bson:"start_time"`
	EndTime   TimeOfDay `json:"end_time" bson:"end_time"`
}

func (w WorkDay) Window() Interval {
	return Interval{Start: w.StartTime, End: w.EndTime}
}

// Vacation blocks every date in [StartDate, EndDate], both inclusive.
type Vacation struct {
	StartDate Date   `json:"start_date" bson:"start_date"`
	EndDate   Date   `json:"end_date" bson:"end_date"`
	Reason    string `json:"reason,omitempty" bson:"reason,omitempty" validate:"omitempty,max=200"`
}

func (v Vacation) Covers(d Date) bool {
	return d.Between(v.StartDate, v.EndDate)
}

// ExtraWorkDay opens a specific date with its own window, overriding the weekly schedule.
type ExtraWorkDay struct {
	Date      Date      `json:"date" bson:"date"`
	StartTime TimeOfDay `json:"start_time" bson:"start_time"`
	EndTime   TimeOfDay `json:"end_time" bson:"end_time"`
}

func (e ExtraWorkDay) Window() Interval {
	return Interval{Start: e.StartTime, End: e.EndTime}
}

type Staff struct {
	ID             string              `json:"id" bson:"_id" validate:"required,max=64"`
	Name           string              `json:"name" bson:"name" validate:"omitempty,max=100"`
	WeeklySchedule map[Weekday]WorkDay `json:"weekly_schedule" bson:"weekly_schedule" validate:"weekly_schedule"`
	Vacations      []Vacation          `json:"vacations,omitempty" bson:"vacations" validate:"omitempty,dive"`
	ExtraWorkDays  []ExtraWorkDay      `json:"extra_work_days,omitempty" bson:"extra_work_days" validate:"omitempty,dive"`
	UpdatedAt      time.Time           `json:"updated_at" bson:"updated_at"`
}
