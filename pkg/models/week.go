package models

import (
	"fmt"
	"time"
)

// WeekLayout is the textual form of a week: the date of its Monday
const WeekLayout = "2006-01-02"

// Week is a calendar week identified by its Monday at UTC midnight.
// The zero value is not a valid week.
type Week struct {
	monday time.Time
}

// WeekOf returns the week containing t
func WeekOf(t time.Time) Week {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7 // days since Monday
	return Week{monday: day.AddDate(0, 0, -offset)}
}

// ParseWeek parses a YYYY-MM-DD date and returns the week containing it
func ParseWeek(s string) (Week, error) {
	t, err := time.Parse(WeekLayout, s)
	if err != nil {
		return Week{}, fmt.Errorf("invalid week %q: %w", s, err)
	}
	return WeekOf(t), nil
}

// MustParseWeek is like ParseWeek but panics on error
func MustParseWeek(s string) Week {
	w, err := ParseWeek(s)
	if err != nil {
		panic(err)
	}
	return w
}

// Date returns the Monday of the week
func (w Week) Date() time.Time { return w.monday }

// ID returns the week's Monday formatted as YYYY-MM-DD
func (w Week) ID() string { return w.monday.Format(WeekLayout) }

func (w Week) String() string { return w.ID() }

// IsZero reports whether w is the zero week
func (w Week) IsZero() bool { return w.monday.IsZero() }

// Next returns the following week
func (w Week) Next() Week { return w.Add(1) }

// Add moves n weeks forward (or backward for negative n), 7 days at a time
func (w Week) Add(n int) Week {
	return Week{monday: w.monday.AddDate(0, 0, 7*n)}
}

// Before reports whether w comes before other
func (w Week) Before(other Week) bool { return w.monday.Before(other.monday) }

// IsStartOfMonth reports whether the week's Monday is among the first seven
// days of its month
func (w Week) IsStartOfMonth() bool { return w.monday.Day() <= 7 }

// MarshalText implements encoding.TextMarshaler
func (w Week) MarshalText() ([]byte, error) {
	return []byte(w.ID()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (w *Week) UnmarshalText(text []byte) error {
	parsed, err := ParseWeek(string(text))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}
