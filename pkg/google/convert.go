package google

import (
	"errors"
	"fmt"
	"time"

	"github.com/klokku/calbar/pkg/calendar"
	gcal "google.golang.org/api/calendar/v3"
)

const eventStatusCancelled = "cancelled"

var errCancelled = errors.New("event is cancelled")

// toCalendar maps a calendar list entry. The user's own summaryOverride wins over the
// shared summary, and "selected" in the Google UI seeds the active flag of new calendars.
func toCalendar(entry *gcal.CalendarListEntry) (calendar.Calendar, error) {
	name := entry.Summary
	if entry.SummaryOverride != "" {
		name = entry.SummaryOverride
	}
	tz := entry.TimeZone
	if tz == "" {
		tz = calendar.DefaultTimeZone
	}
	c := calendar.Calendar{
		ID:          entry.Id,
		Name:        name,
		Description: entry.Description,
		TimeZone:    tz,
		Active:      entry.Selected,
	}
	if err := c.Validate(); err != nil {
		return calendar.Calendar{}, err
	}
	return c, nil
}

// toEvent resolves Google's dateTime/date pair into a Span. Both ends must use the same form.
func toEvent(calendarId string, item *gcal.Event) (calendar.Event, error) {
	if item.Status == eventStatusCancelled {
		return calendar.Event{}, errCancelled
	}
	if item.Start == nil || item.End == nil {
		return calendar.Event{}, fmt.Errorf("%w: event %s has no start or end", calendar.ErrInvalidEvent, item.Id)
	}

	span, err := toSpan(item.Start, item.End)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("event %s: %w", item.Id, err)
	}

	event := calendar.Event{
		ID:          item.Id,
		CalendarID:  calendarId,
		Span:        span,
		Name:        item.Summary,
		Description: item.Description,
	}
	if err := event.Validate(); err != nil {
		return calendar.Event{}, err
	}
	return event, nil
}

func toSpan(start, end *gcal.EventDateTime) (calendar.Span, error) {
	switch {
	case start.DateTime != "" && end.DateTime != "":
		s, err := time.Parse(time.RFC3339, start.DateTime)
		if err != nil {
			return calendar.Span{}, fmt.Errorf("%w: start: %w", calendar.ErrInvalidEvent, err)
		}
		e, err := time.Parse(time.RFC3339, end.DateTime)
		if err != nil {
			return calendar.Span{}, fmt.Errorf("%w: end: %w", calendar.ErrInvalidEvent, err)
		}
		return calendar.TimedSpan(s, e)
	case start.Date != "" && end.Date != "":
		s, err := calendar.ParseDate(start.Date)
		if err != nil {
			return calendar.Span{}, fmt.Errorf("%w: start: %w", calendar.ErrInvalidEvent, err)
		}
		e, err := calendar.ParseDate(end.Date)
		if err != nil {
			return calendar.Span{}, fmt.Errorf("%w: end: %w", calendar.ErrInvalidEvent, err)
		}
		return calendar.AllDaySpan(s, e)
	default:
		return calendar.Span{}, fmt.Errorf("%w: start and end mix dates and times", calendar.ErrInvalidEvent)
	}
}
