package model

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Date is a calendar date with no location attached. It marshals as "YYYY-MM-DD"
// in both JSON and BSON so that Mongo range and equality filters work on the string form.
type Date struct {
	civil.Date
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{civil.Date{Year: year, Month: month, Day: day}}
}

func ParseDate(s string) (Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{d}, nil
}

func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func DateOf(t time.Time) Date {
	return Date{civil.DateOf(t)}
}

// Weekday is computed on the proleptic Gregorian calendar, independent of process locale and zone.
func (d Date) Weekday() Weekday {
	return WeekdayOf(d.Date.In(time.UTC).Weekday())
}

// At returns the instant of the given time of day on d in loc.
func (d Date) At(t TimeOfDay, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, t.Hour(), t.Minute(), 0, 0, loc)
}

func (d Date) AddDays(n int) Date {
	return Date{d.Date.AddDays(n)}
}

func (d Date) Before(o Date) bool { return d.Date.Before(o.Date) }
func (d Date) After(o Date) bool  { return d.Date.After(o.Date) }

// Between reports whether d lies within [from, to], both ends inclusive.
func (d Date) Between(from, to Date) bool {
	return !d.Before(from) && !d.After(to)
}

func (d Date) MarshalText() ([]byte, error) {
	return d.Date.MarshalText()
}

func (d *Date) UnmarshalText(data []byte) error {
	parsed, err := ParseDate(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(d.String())
}

func (d *Date) UnmarshalBSONValue(bt bsontype.Type, data []byte) error {
	var s string
	if err := bson.UnmarshalValue(bt, data, &s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}
