package availability

import (
	"fmt"
	"time"
)

// Date formats used by the reservation API and the CLI.
const (
	LayoutInput    = "2006-01-02"
	LayoutRequest  = "2006-01-02T00:00:00.000Z"
	LayoutResponse = "2006-01-02T00:00:00Z"
)

// unixEpochOrdinal is the proleptic Gregorian ordinal of 1970-01-01,
// where 0001-01-01 is day 1.
const unixEpochOrdinal = 719163

const secondsPerDay = 24 * 60 * 60

// Date is a calendar day represented by its proleptic Gregorian ordinal.
// Consecutive days differ by exactly one.
type Date int64

// NewDate creates a Date, normalizing out-of-range months and days the same
// way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date(t.Unix()/secondsPerDay + unixEpochOrdinal)
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses value with the given layout.
func ParseDate(layout, value string) (Date, error) {
	t, err := time.Parse(layout, value)
	if err != nil {
		return 0, err
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Unix(int64(d-unixEpochOrdinal)*secondsPerDay, 0).UTC()
}

func (d Date) AddDays(n int) Date {
	return d + Date(n)
}

// FirstOfMonth returns the first day of the month d is in.
func (d Date) FirstOfMonth() Date {
	t := d.Time()
	return NewDate(t.Year(), t.Month(), 1)
}

// AddMonths moves d by n calendar months, d is expected to be the first of a month.
func (d Date) AddMonths(n int) Date {
	t := d.Time()
	return NewDate(t.Year(), t.Month()+time.Month(n), t.Day())
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// IsWeekendNight reports if the night starting on d is a Friday or Saturday night.
func (d Date) IsWeekendNight() bool {
	wd := d.Weekday()
	return wd == time.Friday || wd == time.Saturday
}

func (d Date) Format(layout string) string {
	return d.Time().Format(layout)
}

func (d Date) String() string {
	return d.Format(LayoutInput)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(LayoutInput, string(text))
	if err != nil {
		return fmt.Errorf("parse date %q: %w", string(text), err)
	}
	*d = parsed
	return nil
}

// DateWindow is the half-open range of days [Start, End), End is the day
// of departure and is never a night stayed.
type DateWindow struct {
	Start Date
	End   Date
}

// Nights returns the number of nights in the window.
func (w DateWindow) Nights() int {
	return int(w.End - w.Start)
}

func (w DateWindow) Valid() bool {
	return w.Start < w.End
}

func (w DateWindow) Contains(d Date) bool {
	return d >= w.Start && d < w.End
}
