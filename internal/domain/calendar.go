package domain

import (
	"fmt"
	"time"
)

// Holiday is an org-wide non-working day.
type Holiday struct {
	ID    string
	OrgID string
	Date  time.Time
	Name  string
}

// Calendar counts working days between dates.
type Calendar struct {
	weekend  map[time.Weekday]bool
	holidays map[string]bool
}

// NewCalendar returns a calendar with a Saturday/Sunday weekend and the given holidays.
func NewCalendar(holidays []Holiday) *Calendar {
	c := &Calendar{
		weekend:  map[time.Weekday]bool{time.Saturday: true, time.Sunday: true},
		holidays: make(map[string]bool, len(holidays)),
	}
	for _, h := range holidays {
		c.holidays[dateKey(h.Date)] = true
	}
	return c
}

// IsWorkday reports whether d is neither a weekend day nor a holiday.
func (c *Calendar) IsWorkday(d time.Time) bool {
	return !c.weekend[d.Weekday()] && !c.holidays[dateKey(d)]
}

// WorkingDays counts working days in [start, end]. halfDayStart and halfDayEnd
// take half a day off the first and last day when those are working days.
func (c *Calendar) WorkingDays(start, end time.Time, halfDayStart, halfDayEnd bool) (HalfDays, error) {
	start, end = StartOfDay(start), StartOfDay(end)
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end %s before start %s", ErrInvalidDateRange, end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	var total HalfDays
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if c.IsWorkday(d) {
			total += WholeDays(1)
		}
	}

	if halfDayStart && c.IsWorkday(start) {
		total--
	}
	if halfDayEnd && c.IsWorkday(end) && (!start.Equal(end) || !halfDayStart) {
		total--
	}

	if total <= 0 {
		return 0, fmt.Errorf("%w: no working days between %s and %s", ErrInvalidDateRange, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	return total, nil
}

// StartOfDay truncates t to midnight UTC of its calendar date.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}
