package calendar

import (
	"context"
	"fmt"
	"sync"
)

// RepositoryStub is an in-memory Repository for service tests. It mirrors the SQL
// semantics of RepositoryImpl: insert-or-replace by id, rollback on error, and the
// same filtering and ordering for LoadEvents.
type RepositoryStub struct {
	mu        sync.Mutex
	calendars map[string]Calendar
	events    map[string]Event
	failNext  error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		calendars: make(map[string]Calendar),
		events:    make(map[string]Event),
	}
}

// FailNextWrite makes the next upsert return err.
func (r *RepositoryStub) FailNextWrite(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failNext = err
}

func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	originalCalendars := make(map[string]Calendar, len(r.calendars))
	for k, v := range r.calendars {
		originalCalendars[k] = v
	}
	originalEvents := make(map[string]Event, len(r.events))
	for k, v := range r.events {
		originalEvents[k] = v
	}
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.calendars = originalCalendars
		r.events = originalEvents
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *RepositoryStub) LoadCalendars(ctx context.Context) (Calendars, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make(Calendars, len(r.calendars))
	for k, v := range r.calendars {
		result[k] = v
	}
	return result, nil
}

func (r *RepositoryStub) LoadCalendar(ctx context.Context, id string) (Calendar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.calendars[id]
	if !ok {
		return Calendar{}, fmt.Errorf("%w: %s", ErrCalendarNotFound, id)
	}
	return c, nil
}

func (r *RepositoryStub) UpsertCalendars(ctx context.Context, calendars []Calendar) error {
	for _, c := range calendars {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	for _, c := range calendars {
		if c.TimeZone == "" {
			c.TimeZone = DefaultTimeZone
		}
		r.calendars[c.ID] = c
	}
	return nil
}

func (r *RepositoryStub) LoadEvents(ctx context.Context, q EventQuery) ([]Event, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]Event, 0)
	for _, e := range r.events {
		if q.ActiveOnly {
			c, ok := r.calendars[e.CalendarID]
			if !ok || !c.Active {
				continue
			}
		}
		result = append(result, e)
	}
	return q.finish(result), nil
}

func (r *RepositoryStub) UpsertEvents(ctx context.Context, events []Event) error {
	for _, e := range events {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	for _, e := range events {
		r.events[e.ID] = e
	}
	return nil
}

func (r *RepositoryStub) takeFailure() error {
	err := r.failNext
	r.failNext = nil
	return err
}
