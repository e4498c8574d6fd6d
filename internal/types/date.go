// Package types implements special types for Firefly III.
package types

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Date is a calendar day. Journal dates and budget limit windows are
// day-granular, time-of-day never matters for any calculation.
type Date time.Time

// NewDate returns a new Date.
func NewDate(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the Date on which a time occurs, in UTC.
func DateOf(t time.Time) Date {
	year, month, day := t.In(time.UTC).Date()
	return NewDate(year, month, day)
}

// ParseDate parses a string in RFC3339 full-date format ("2006-01-02").
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: dates must be formatted as YYYY-MM-DD", s)
	}

	return DateOf(t), nil
}

// String returns the date formatted as YYYY-MM-DD.
func (d Date) String() string {
	return time.Time(d).Format("2006-01-02")
}

// MarshalJSON implements the json.Marshaler interface.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", d.String())), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// The date is expected to be a string in "2006-01-02" format.
func (d *Date) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	if value == "" || value == "null" {
		return nil
	}

	parsed, err := ParseDate(value)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}

// Scan reads the value from the database. The receiver is left untouched
// when the value cannot be scanned.
func (d *Date) Scan(value interface{}) error {
	nullTime := &sql.NullTime{}
	if err := nullTime.Scan(value); err != nil {
		return err
	}

	*d = DateOf(nullTime.Time)
	return nil
}

// Value implements the driver.Valuer interface. Dates are stored as
// midnight UTC timestamps.
func (d Date) Value() (driver.Value, error) {
	year, month, day := time.Time(d).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}

// GormDataType defines the data type used by gorm for the type.
func (Date) GormDataType() string {
	return "date"
}

// IsZero reports if the date is the zero value.
func (d Date) IsZero() bool {
	return time.Time(d).IsZero()
}

// Time returns the date as a time.Time at midnight UTC.
func (d Date) Time() time.Time {
	year, month, day := time.Time(d).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AddDays adds a number of days, which may be negative.
func (d Date) AddDays(days int) Date {
	return Date(time.Time(d).AddDate(0, 0, days))
}

// AddDate adds a specified amount of years, months and days.
func (d Date) AddDate(years, months, days int) Date {
	return Date(time.Time(d).AddDate(years, months, days))
}

// Before reports whether the date d is before e.
func (d Date) Before(e Date) bool {
	return time.Time(d).Before(time.Time(e))
}

// After reports whether the date d is after e.
func (d Date) After(e Date) bool {
	return time.Time(d).After(time.Time(e))
}

// Equal reports whether d and e represent the same day.
func (d Date) Equal(e Date) bool {
	return time.Time(d).Equal(time.Time(e))
}

// Range is an inclusive range of days.
type Range struct {
	Start Date
	End   Date
}

var ErrRangeInverted = errors.New("the start of a date range must not be after its end")

// NewRange returns a Range from start to end, both inclusive.
func NewRange(start, end Date) (Range, error) {
	if start.After(end) {
		return Range{}, fmt.Errorf("%w: %s is after %s", ErrRangeInverted, start, end)
	}

	return Range{Start: start, End: end}, nil
}

// ParseRange parses two RFC3339 full-date strings into a Range.
func ParseRange(start, end string) (Range, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Range{}, err
	}

	e, err := ParseDate(end)
	if err != nil {
		return Range{}, err
	}

	return NewRange(s, e)
}

// Contains reports whether the day the time instant falls on is in the range.
func (r Range) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days returns the number of days in the range. A range of a single day
// has length 1.
func (r Range) Days() int {
	return int(time.Time(r.End).Sub(time.Time(r.Start)).Hours()/24) + 1
}

// String returns the range formatted as "YYYY-MM-DD to YYYY-MM-DD".
func (r Range) String() string {
	return fmt.Sprintf("%s to %s", r.Start, r.End)
}

// Overlaps reports whether two inclusive ranges share at least one day.
func (r Range) Overlaps(o Range) bool {
	return !r.Start.After(o.End) && !o.Start.After(r.End)
}
