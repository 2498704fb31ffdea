package calendar

import (
	"fmt"
	"sort"
	"time"
)

const DefaultTimeZone = "UTC"

// Calendar mirrors a row of the calendars table. Name, Description and TimeZone come
// from the remote provider; Active is owned by this program and only changed locally.
type Calendar struct {
	ID          string
	Name        string
	Description string
	TimeZone    string
	Active      bool
}

func NewCalendar(id, name string) Calendar {
	return Calendar{ID: id, Name: name, TimeZone: DefaultTimeZone}
}

func (c Calendar) Location() (*time.Location, error) {
	tz := c.TimeZone
	if tz == "" {
		tz = DefaultTimeZone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: calendar %s: unknown time zone %q: %w", ErrInvalidCalendar, c.ID, c.TimeZone, err)
	}
	return loc, nil
}

// Validate reports whether c can be stored and read back. An empty TimeZone is allowed
// and means DefaultTimeZone.
func (c Calendar) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: calendar without id", ErrInvalidCalendar)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Calendars is a snapshot keyed by calendar id. Changes are not visible to the store
// until passed to UpsertCalendars.
type Calendars map[string]Calendar

func CalendarsOf(calendars ...Calendar) Calendars {
	result := make(Calendars, len(calendars))
	for _, c := range calendars {
		result[c.ID] = c
	}
	return result
}

func (cs Calendars) Active() Calendars {
	result := make(Calendars)
	for id, c := range cs {
		if c.Active {
			result[id] = c
		}
	}
	return result
}

// Sorted returns the calendars ordered by name, then id.
func (cs Calendars) Sorted() []Calendar {
	result := make([]Calendar, 0, len(cs))
	for _, c := range cs {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result
}
