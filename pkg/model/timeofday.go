package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

const MinutesPerDay = 24 * 60

// ValidDuration reports whether d minutes can fit inside a single day.
func ValidDuration(d int) bool {
	return d > 0 && d <= MinutesPerDay
}

// TimeOfDay is a wall-clock time within a single calendar day, stored as minutes since midnight.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay accepts "HH:MM" (24h). "24:00" is allowed as an end-of-day marker.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return NewTimeOfDay(h, m), nil
}

func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return t + TimeOfDay(minutes)
}

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t <= MinutesPerDay
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time of day must be a string: %w", err)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TimeOfDay) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(t.String())
}

func (t *TimeOfDay) UnmarshalBSONValue(bt bsontype.Type, data []byte) error {
	var s string
	if err := bson.UnmarshalValue(bt, data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Interval is a half-open range [Start, End) of minutes within one day.
type Interval struct {
	Start TimeOfDay `json:"start" bson:"start"`
	End   TimeOfDay `json:"end" bson:"end"`
}

func NewInterval(start TimeOfDay, durationMin int) Interval {
	return Interval{Start: start, End: start.Add(durationMin)}
}

func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

func (i Interval) Contains(o Interval) bool {
	return i.Start <= o.Start && o.End <= i.End
}

func (i Interval) Duration() int {
	return int(i.End - i.Start)
}

func (i Interval) String() string {
	return i.Start.String() + "-" + i.End.String()
}
