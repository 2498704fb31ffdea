package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/klokku/calbar/internal/config"
	"github.com/klokku/calbar/internal/utils"
	"github.com/klokku/calbar/pkg/calendar"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Source fetches every calendar of the authorized account and its upcoming events.
type Source struct {
	cfg        config.Google
	newService func(ctx context.Context) (*gcal.Service, error)
	clock      utils.Clock
}

func NewSource(cfg config.Google, auth *GoogleAuth) *Source {
	return &Source{
		cfg: cfg,
		newService: func(ctx context.Context) (*gcal.Service, error) {
			client, err := auth.Client(ctx)
			if err != nil {
				return nil, err
			}
			return gcal.NewService(ctx, option.WithHTTPClient(client))
		},
		clock: utils.SystemClock{},
	}
}

// NewSourceWithOptions builds the calendar service from explicit client options
// (an endpoint and HTTP client of a fake server, for instance).
func NewSourceWithOptions(cfg config.Google, opts ...option.ClientOption) *Source {
	return &Source{
		cfg: cfg,
		newService: func(ctx context.Context) (*gcal.Service, error) {
			return gcal.NewService(ctx, opts...)
		},
		clock: utils.SystemClock{},
	}
}

func (s *Source) Name() string {
	return "google"
}

func (s *Source) Fetch(ctx context.Context) (calendar.Calendars, []calendar.Event, error) {
	service, err := s.newService(ctx)
	if err != nil {
		err := fmt.Errorf("unable to create Google Calendar client: %w", err)
		log.Error(err)
		return nil, nil, err
	}

	calendars, err := s.listCalendars(ctx, service)
	if err != nil {
		return nil, nil, err
	}

	now := s.clock.Now()
	until := now.AddDate(0, 0, s.cfg.LookaheadDays)
	events := make([]calendar.Event, 0)
	for _, c := range calendars.Sorted() {
		calendarEvents, err := s.listEvents(ctx, service, c.ID, now, until)
		if err != nil {
			return nil, nil, err
		}
		events = append(events, calendarEvents...)
	}
	log.Debugf("Fetched %d calendars and %d events from Google", len(calendars), len(events))
	return calendars, events, nil
}

func (s *Source) listCalendars(ctx context.Context, service *gcal.Service) (calendar.Calendars, error) {
	calendars := make(calendar.Calendars)
	err := service.CalendarList.List().
		MaxResults(s.cfg.PageSize).
		Pages(ctx, func(page *gcal.CalendarList) error {
			for _, entry := range page.Items {
				c, err := toCalendar(entry)
				if err != nil {
					log.Warnf("ignoring Google calendar %s: %v", entry.Id, err)
					continue
				}
				calendars[c.ID] = c
			}
			return nil
		})
	if err != nil {
		err := fmt.Errorf("unable to retrieve calendars from Google Calendar: %w", err)
		log.Error(err)
		return nil, err
	}
	return calendars, nil
}

func (s *Source) listEvents(ctx context.Context, service *gcal.Service, calendarId string, from, to time.Time) ([]calendar.Event, error) {
	events := make([]calendar.Event, 0)
	err := service.Events.List(calendarId).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(s.cfg.PageSize).
		Pages(ctx, func(page *gcal.Events) error {
			for _, item := range page.Items {
				event, err := toEvent(calendarId, item)
				if errors.Is(err, errCancelled) {
					continue
				}
				if err != nil {
					log.Warnf("ignoring event from calendar %s: %v", calendarId, err)
					continue
				}
				events = append(events, event)
			}
			return nil
		})
	if err != nil {
		err := fmt.Errorf("unable to retrieve events of calendar %s from Google Calendar: %w", calendarId, err)
		log.Error(err)
		return nil, err
	}
	return events, nil
}
