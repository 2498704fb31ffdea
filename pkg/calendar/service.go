package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/klokku/calbar/internal/event_bus"
	"github.com/klokku/calbar/internal/utils"
	log "github.com/sirupsen/logrus"
)

type Service struct {
	repo  Repository
	bus   *event_bus.EventBus
	clock utils.Clock
}

func NewService(repo Repository, bus *event_bus.EventBus) *Service {
	return &Service{
		repo:  repo,
		bus:   bus,
		clock: utils.SystemClock{},
	}
}

func (s *Service) Calendars(ctx context.Context) (Calendars, error) {
	return s.repo.LoadCalendars(ctx)
}

// SyncCalendars merges fetched into the stored calendars and persists the result in one
// transaction, so a concurrent toggle is either fully before or fully after the merge.
func (s *Service) SyncCalendars(ctx context.Context, fetched Calendars) (Calendars, error) {
	var merged Calendars
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		local, err := repo.LoadCalendars(ctx)
		if err != nil {
			return fmt.Errorf("failed to load calendars: %w", err)
		}
		merged = Merge(local, fetched)

		changed := make([]Calendar, 0, len(fetched))
		for id := range fetched {
			changed = append(changed, merged[id])
		}
		if err := repo.UpsertCalendars(ctx, changed); err != nil {
			return fmt.Errorf("failed to store calendars: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("Synced %d fetched calendars, %d known", len(fetched), len(merged))
	return merged, nil
}

// SyncEvents stores fetched events as they are; the remote side owns every event field.
func (s *Service) SyncEvents(ctx context.Context, events []Event) error {
	if err := s.repo.UpsertEvents(ctx, events); err != nil {
		return fmt.Errorf("failed to store events: %w", err)
	}
	return nil
}

// SetActive changes the program-owned flag of one calendar.
func (s *Service) SetActive(ctx context.Context, calendarId string, active bool) (Calendar, error) {
	var updated Calendar
	err := s.repo.WithTransaction(ctx, func(repo Repository) error {
		c, err := repo.LoadCalendar(ctx, calendarId)
		if err != nil {
			return err
		}
		c.Active = active
		updated = c
		return repo.UpsertCalendars(ctx, []Calendar{c})
	})
	if err != nil {
		return Calendar{}, err
	}

	if s.bus != nil {
		event := event_bus.NewEvent(ctx, event_bus.CalendarToggledType, event_bus.CalendarToggled{
			CalendarID: updated.ID,
			Name:       updated.Name,
			Active:     updated.Active,
		})
		if err := s.bus.Publish(event); err != nil {
			log.Warnf("calendar toggled handlers failed: %v", err)
		}
	}
	return updated, nil
}

func (s *Service) FindEvents(ctx context.Context, query EventQuery) ([]Event, error) {
	return s.repo.LoadEvents(ctx, query)
}

// NextEvent returns the first active event starting within the given duration from now.
// Finding nothing is not an error; ok is false then.
func (s *Service) NextEvent(ctx context.Context, within time.Duration) (event Event, ok bool, err error) {
	now := s.clock.Now()
	events, err := s.repo.LoadEvents(ctx, EventQuery{
		Window:     NewWindow(now, now.Add(within)),
		Limit:      1,
		ActiveOnly: true,
	})
	if err != nil {
		return Event{}, false, err
	}
	if len(events) == 0 {
		return Event{}, false, nil
	}
	return events[0], true, nil
}

// Agenda returns the active events starting in [from, to] grouped by local day in loc.
func (s *Service) Agenda(ctx context.Context, from, to time.Time, loc *time.Location, dayFormat string) ([]DayGroup, error) {
	events, err := s.repo.LoadEvents(ctx, EventQuery{
		Window:     NewWindow(from, to),
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}
	return GroupByLocalDay(events, loc, dayFormat), nil
}
