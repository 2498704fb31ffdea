package calendar

import (
	"fmt"
	"time"
)

// Moment is either an absolute instant (timed events) or a plain Date (all-day events).
// Instants are kept in UTC at microsecond precision, which is what the store can represent,
// so two Moments describing the same point in time compare equal with ==.
type Moment struct {
	instant time.Time
	date    Date
	isDate  bool
}

func InstantOf(t time.Time) Moment {
	return Moment{instant: t.UTC().Truncate(time.Microsecond)}
}

func DateOf(d Date) Moment {
	return Moment{date: d, isDate: true}
}

func (m Moment) IsDate() bool { return m.isDate }

// Instant returns the instant and true for timed moments.
func (m Moment) Instant() (time.Time, bool) {
	if m.isDate {
		return time.Time{}, false
	}
	return m.instant, true
}

// Date returns the date and true for all-day moments.
func (m Moment) Date() (Date, bool) {
	if !m.isDate {
		return Date{}, false
	}
	return m.date, true
}

// Anchor places the moment on the time line: instants as themselves, dates at UTC midnight.
// It is meant for range comparisons only.
func (m Moment) Anchor() time.Time {
	if m.isDate {
		return m.date.Midnight(time.UTC)
	}
	return m.instant
}

func (m Moment) Compare(o Moment) int {
	return m.Anchor().Compare(o.Anchor())
}

// In projects an instant into loc. Dates have no instant to project and come back at midnight in loc.
func (m Moment) In(loc *time.Location) time.Time {
	if m.isDate {
		return m.date.Midnight(loc)
	}
	return m.instant.In(loc)
}

// LocalDate is the calendar date of the moment as seen in loc; dates are returned unchanged.
func (m Moment) LocalDate(loc *time.Location) Date {
	if m.isDate {
		return m.date
	}
	return DateFromTime(m.instant.In(loc))
}

func (m Moment) String() string {
	if m.isDate {
		return m.date.String()
	}
	return m.instant.Format(time.RFC3339Nano)
}

// Span is the start/end pair of an event. Both ends always share one representation;
// the only ways to build one are TimedSpan and AllDaySpan.
type Span struct {
	start Moment
	end   Moment
}

func TimedSpan(start, end time.Time) (Span, error) {
	s := Span{start: InstantOf(start), end: InstantOf(end)}
	if s.start.Compare(s.end) > 0 {
		return Span{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidEvent, s.start, s.end)
	}
	return s, nil
}

func AllDaySpan(start, end Date) (Span, error) {
	if start.After(end) {
		return Span{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidEvent, start, end)
	}
	return Span{start: DateOf(start), end: DateOf(end)}, nil
}

func (s Span) Start() Moment { return s.start }
func (s Span) End() Moment   { return s.end }
func (s Span) AllDay() bool  { return s.start.isDate }

func (s Span) Duration() time.Duration {
	return s.end.Anchor().Sub(s.start.Anchor())
}
