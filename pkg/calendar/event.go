package calendar

import (
	"fmt"
	"time"
)

// Event mirrors a row of the events table. An empty Description is stored as NULL.
type Event struct {
	ID          string
	CalendarID  string
	Span        Span
	Name        string
	Description string
}

func (e Event) Start() Moment { return e.Span.Start() }
func (e Event) End() Moment   { return e.Span.End() }
func (e Event) AllDay() bool  { return e.Span.AllDay() }

// LocalStart is the start projected into loc; all-day starts are dates and are not projected.
func (e Event) LocalStart(loc *time.Location) time.Time {
	return e.Start().In(loc)
}

func (e Event) LocalEnd(loc *time.Location) time.Time {
	return e.End().In(loc)
}

func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidEvent)
	}
	if e.CalendarID == "" {
		return fmt.Errorf("%w: event %s has no calendar id", ErrInvalidEvent, e.ID)
	}
	if e.Start().Compare(e.End()) > 0 {
		return fmt.Errorf("%w: event %s starts after it ends", ErrInvalidEvent, e.ID)
	}
	return nil
}
