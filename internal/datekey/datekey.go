package datekey

import (
	"fmt"
	"strings"
	"time"
)

const layout = "2006-01-02"

// Location is the fixed UTC+9 zone all stored dates are expressed in.
var Location = time.FixedZone("KST", 9*60*60)

// Key is a calendar date formatted as YYYY-MM-DD. Keys compare correctly as strings.
type Key string

// Today returns the current date in UTC+9 regardless of the process time zone.
func Today() Key {
	return Normalize(time.Now())
}

// Normalize converts an instant to its calendar date in UTC+9.
func Normalize(t time.Time) Key {
	return Key(t.In(Location).Format(layout))
}

// Local returns the wall-clock date of t in its own location. Grid and
// arithmetic helpers use it on UTC wall-clock times so no offset is applied.
func Local(t time.Time) Key {
	return Key(t.Format(layout))
}

// Parse validates raw and returns it as a Key.
func Parse(raw string) (Key, error) {
	raw = strings.TrimSpace(raw)
	t, err := time.Parse(layout, raw)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", raw, err)
	}
	return Local(t), nil
}

// Valid reports whether k is a well-formed calendar date.
func (k Key) Valid() bool {
	_, err := time.Parse(layout, string(k))
	return err == nil
}

// Time returns midnight of k in UTC+9. Invalid keys yield the zero time.
func (k Key) Time() time.Time {
	t, err := time.ParseInLocation(layout, string(k), Location)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (k Key) String() string {
	return string(k)
}

// AddDays shifts k by n calendar days.
func (k Key) AddDays(n int) Key {
	t := wallClock(k)
	if t.IsZero() {
		return k
	}
	return Local(t.AddDate(0, 0, n))
}

// Weekday of the calendar date k.
func (k Key) Weekday() time.Weekday {
	return wallClock(k).Weekday()
}

// WeekStart returns the Sunday on or before k. The computation works on the
// wall-clock date and never shifts by an offset.
func WeekStart(k Key) Key {
	t := wallClock(k)
	if t.IsZero() {
		return k
	}
	return Local(t.AddDate(0, 0, -int(t.Weekday())))
}

// MonthKey returns the YYYY-MM prefix of k.
func MonthKey(k Key) string {
	if len(k) < 7 {
		return string(k)
	}
	return string(k[:7])
}

// ParseMonth validates a YYYY-MM string and returns the first day of that month.
func ParseMonth(raw string) (Key, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse month %q: %w", raw, err)
	}
	return Local(t), nil
}

// ShiftMonth moves a YYYY-MM month by n months.
func ShiftMonth(month string, n int) string {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return month
	}
	return t.AddDate(0, n, 0).Format("2006-01")
}

// MonthGrid returns the Sunday-aligned run of dates covering the whole month,
// padded with days of the neighbouring months to full weeks.
func MonthGrid(month string) []Key {
	first, err := time.Parse("2006-01", month)
	if err != nil {
		return nil
	}
	last := first.AddDate(0, 1, -1)
	gridStart := first.AddDate(0, 0, -int(first.Weekday()))
	gridEnd := last.AddDate(0, 0, 6-int(last.Weekday()))

	days := make([]Key, 0, 42)
	for day := gridStart; !day.After(gridEnd); day = day.AddDate(0, 0, 1) {
		days = append(days, Local(day))
	}
	return days
}

func wallClock(k Key) time.Time {
	t, err := time.Parse(layout, string(k))
	if err != nil {
		return time.Time{}
	}
	return t
}
