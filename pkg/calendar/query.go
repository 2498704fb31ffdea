package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Window bounds event starts, inclusive on both ends.
type Window struct {
	From time.Time
	To   time.Time
}

func NewWindow(from, to time.Time) *Window {
	return &Window{From: from, To: to}
}

// Contains compares at the precision events are stored with. Dates sit at UTC midnight.
func (w Window) Contains(m Moment) bool {
	return m.Compare(InstantOf(w.From)) >= 0 && m.Compare(InstantOf(w.To)) <= 0
}

// EventQuery describes a Find. A nil Window matches every event; Limit <= 0 means no cap.
type EventQuery struct {
	Window     *Window
	Limit      int
	ActiveOnly bool
}

func (q EventQuery) Validate() error {
	if q.Window != nil && q.Window.From.After(q.Window.To) {
		return fmt.Errorf("%w: window starts at %s after it ends at %s", ErrInvalidQuery,
			q.Window.From.Format(time.RFC3339), q.Window.To.Format(time.RFC3339))
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: negative limit %d", ErrInvalidQuery, q.Limit)
	}
	return nil
}

// toSQL selects candidate rows. julianday() reads both encodings, taking a date as UTC
// midnight, but only to the millisecond, so the window here is a superset and rows sharing a
// millisecond come back in text order. finish makes the result exact.
func (q EventQuery) toSQL() (string, []any) {
	var sb strings.Builder
	args := make([]any, 0, 2)

	sb.WriteString(`SELECT e.id, e.calendar_id, e.start, e."end", e.name, e.description FROM events e`)
	if q.ActiveOnly {
		sb.WriteString(` INNER JOIN calendars c ON e.calendar_id = c.id`)
	}

	var where []string
	if q.ActiveOnly {
		where = append(where, `c.active = 1`)
	}
	if q.Window != nil {
		where = append(where, `julianday(e.start) BETWEEN julianday(?) AND julianday(?)`)
		args = append(args, encodeMoment(InstantOf(q.Window.From)), encodeMoment(InstantOf(q.Window.To)))
	}
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}

	sb.WriteString(` ORDER BY julianday(e.start), e.start, e.id`)
	return sb.String(), args
}

// finish drops events outside the window, orders by start then id and applies the limit.
func (q EventQuery) finish(events []Event) []Event {
	if q.Window != nil {
		kept := events[:0]
		for _, e := range events {
			if q.Window.Contains(e.Start()) {
				kept = append(kept, e)
			}
		}
		events = kept
	}
	sort.SliceStable(events, func(i, j int) bool {
		if c := events[i].Start().Compare(events[j].Start()); c != 0 {
			return c < 0
		}
		return events[i].ID < events[j].ID
	})
	if q.Limit > 0 && len(events) > q.Limit {
		events = events[:q.Limit]
	}
	return events
}
