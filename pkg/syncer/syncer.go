package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klokku/calbar/internal/event_bus"
	"github.com/klokku/calbar/internal/utils"
	"github.com/klokku/calbar/pkg/calendar"
	log "github.com/sirupsen/logrus"
)

// ErrRunning is returned when a run is requested while another one is in progress.
var ErrRunning = errors.New("sync already running")

// Source is a remote calendar provider.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (calendar.Calendars, []calendar.Event, error)
}

type Report struct {
	RunID     string    `json:"runId"`
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished"`
	Calendars int       `json:"calendars"`
	Events    int       `json:"events"`
	Errors    []string  `json:"errors"`
}

func (r Report) Failed() bool {
	return len(r.Errors) > 0
}

type Syncer struct {
	calendar *calendar.Service
	sources  []Source
	bus      *event_bus.EventBus
	clock    utils.Clock

	running sync.Mutex
	mu      sync.RWMutex
	last    *Report
}

func NewSyncer(calendarService *calendar.Service, bus *event_bus.EventBus, sources ...Source) *Syncer {
	return &Syncer{
		calendar: calendarService,
		sources:  sources,
		bus:      bus,
		clock:    utils.SystemClock{},
	}
}

// Run fetches every source and stores what it got. A failing source does not stop the
// others; all failures are returned joined and listed in the report.
func (s *Syncer) Run(ctx context.Context) (Report, error) {
	if !s.running.TryLock() {
		return Report{}, ErrRunning
	}
	defer s.running.Unlock()

	report := Report{RunID: uuid.NewString(), Started: s.clock.Now(), Errors: []string{}}
	logger := log.WithField("run", report.RunID)
	logger.Infof("Starting sync of %d source(s)", len(s.sources))

	var errs []error
	for _, source := range s.sources {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		calendars, events, err := s.syncSource(ctx, source)
		if err != nil {
			err = fmt.Errorf("%s: %w", source.Name(), err)
			logger.WithField("source", source.Name()).Error(err)
			errs = append(errs, err)
			continue
		}
		logger.WithFields(log.Fields{
			"source":    source.Name(),
			"calendars": calendars,
			"events":    events,
		}).Info("Source synced")
		report.Calendars += calendars
		report.Events += events
	}

	for _, err := range errs {
		report.Errors = append(report.Errors, err.Error())
	}
	report.Finished = s.clock.Now()

	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()

	logger.WithFields(log.Fields{
		"calendars": report.Calendars,
		"events":    report.Events,
		"errors":    len(report.Errors),
	}).Info("Sync finished")
	s.publish(ctx, report)

	return report, errors.Join(errs...)
}

func (s *Syncer) syncSource(ctx context.Context, source Source) (int, int, error) {
	calendars, events, err := source.Fetch(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch failed: %w", err)
	}
	if _, err := s.calendar.SyncCalendars(ctx, calendars); err != nil {
		return 0, 0, err
	}
	if err := s.calendar.SyncEvents(ctx, events); err != nil {
		return len(calendars), 0, err
	}
	return len(calendars), len(events), nil
}

func (s *Syncer) publish(ctx context.Context, report Report) {
	if s.bus == nil {
		return
	}
	// publish even when the run was cancelled
	event := event_bus.NewEvent(context.WithoutCancel(ctx), event_bus.SyncCompletedType, event_bus.SyncCompleted{
		RunID:     report.RunID,
		Started:   report.Started,
		Finished:  report.Finished,
		Calendars: report.Calendars,
		Events:    report.Events,
		Errors:    report.Errors,
	})
	if err := s.bus.Publish(event); err != nil {
		log.Warnf("sync completed handlers failed: %v", err)
	}
}

// LastReport returns the report of the most recent run, if there was one.
func (s *Syncer) LastReport() (Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return Report{}, false
	}
	return *s.last, true
}
