// Package calendartest builds calendar values from literals in tests.
package calendartest

import (
	"time"

	"github.com/klokku/calbar/pkg/calendar"
)

// TimedSpan is calendar.TimedSpan for literals known to be ordered; it panics otherwise.
func TimedSpan(start, end time.Time) calendar.Span {
	s, err := calendar.TimedSpan(start, end)
	if err != nil {
		panic(err)
	}
	return s
}

// AllDaySpan is calendar.AllDaySpan for literals known to be ordered; it panics otherwise.
func AllDaySpan(start, end calendar.Date) calendar.Span {
	s, err := calendar.AllDaySpan(start, end)
	if err != nil {
		panic(err)
	}
	return s
}
