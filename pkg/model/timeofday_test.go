package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:30", want: 570},
		{in: "23:59", want: 1439},
		{in: "24:00", want: MinutesPerDay},
		{in: "24:01", wantErr: true},
		{in: "9:30", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestTimeOfDay_JSON(t *testing.T) {
	var wd WorkDay
	require.NoError(t, json.Unmarshal([]byte(`{"is_working":true,"start_time":"09:00","end_time":"17:30"}`), &wd))
	assert.Equal(t, NewTimeOfDay(9, 0), wd.StartTime)
	assert.Equal(t, NewTimeOfDay(17, 30), wd.EndTime)

	out, err := json.Marshal(wd.StartTime)
	require.NoError(t, err)
	assert.JSONEq(t, `"09:00"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`540`), &wd.StartTime))
}

func TestInterval_Overlaps(t *testing.T) {
	at := func(s string, d int) Interval { return NewInterval(MustParseTimeOfDay(s), d) }

	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"identical", at("10:00", 60), at("10:00", 60), true},
		{"touching end to start", at("10:00", 60), at("11:00", 30), false},
		{"touching start to end", at("11:00", 30), at("10:00", 60), false},
		{"partial", at("10:00", 60), at("10:30", 60), true},
		{"nested", at("10:00", 120), at("10:30", 15), true},
		{"disjoint", at("08:00", 30), at("12:00", 30), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a), "overlap must be symmetric")
		})
	}
}

func TestInterval_Contains(t *testing.T) {
	window := Interval{Start: MustParseTimeOfDay("09:00"), End: MustParseTimeOfDay("17:00")}

	assert.True(t, window.Contains(NewInterval(MustParseTimeOfDay("09:00"), 60)))
	assert.True(t, window.Contains(NewInterval(MustParseTimeOfDay("16:00"), 60)))
	assert.False(t, window.Contains(NewInterval(MustParseTimeOfDay("16:30"), 60)))
	assert.False(t, window.Contains(NewInterval(MustParseTimeOfDay("08:45"), 30)))
}

func TestDate_Weekday(t *testing.T) {
	tests := []struct {
		date string
		want Weekday
	}{
		{"2024-06-10", Monday},
		{"2024-06-15", Saturday},
		{"2024-06-16", Sunday},
		{"2024-02-29", Thursday},
		{"2000-01-01", Saturday},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParseDate(tt.date).Weekday())
		})
	}
}

func TestDate_JSONAndBetween(t *testing.T) {
	var v Vacation
	require.NoError(t, json.Unmarshal([]byte(`{"start_date":"2024-06-10","end_date":"2024-06-12"}`), &v))

	assert.True(t, v.Covers(MustParseDate("2024-06-10")))
	assert.True(t, v.Covers(MustParseDate("2024-06-12")))
	assert.False(t, v.Covers(MustParseDate("2024-06-13")))
	assert.False(t, v.Covers(MustParseDate("2024-06-09")))

	out, err := json.Marshal(v.StartDate)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-06-10"`, string(out))

	_, err = ParseDate("2024-13-01")
	assert.Error(t, err)
}

func TestDate_At(t *testing.T) {
	loc := time.FixedZone("salon", 3*3600)
	got := MustParseDate("2024-06-10").At(MustParseTimeOfDay("14:30"), loc)
	assert.Equal(t, time.Date(2024, 6, 10, 14, 30, 0, 0, loc), got)
}

func TestCancellation_Apply(t *testing.T) {
	now := time.Date(2024, 6, 9, 10, 0, 0, 0, time.UTC)

	b := &Booking{ID: "b1", Status: BookingConfirmed}
	Cancellation{At: now, Reason: "sick", RefundAmount: 2500, RefundPercent: 50}.Apply(b)
	assert.Equal(t, BookingCancelled, b.Status)
	require.NotNil(t, b.RefundAmount)
	assert.EqualValues(t, 2500, *b.RefundAmount)
	assert.Equal(t, 50, *b.RefundPercent)

	moved := &Booking{ID: "b2", Status: BookingConfirmed}
	Cancellation{At: now, RescheduledTo: "b3"}.Apply(moved)
	assert.Equal(t, BookingCancelled, moved.Status)
	assert.Equal(t, "b3", moved.RescheduledTo)
	assert.Nil(t, moved.RefundAmount)
}
