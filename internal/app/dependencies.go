package app

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/klokku/calbar/internal/config"
	"github.com/klokku/calbar/internal/event_bus"
	"github.com/klokku/calbar/internal/utils"
	"github.com/klokku/calbar/pkg/calendar"
	"github.com/klokku/calbar/pkg/google"
	"github.com/klokku/calbar/pkg/ics"
	"github.com/klokku/calbar/pkg/syncer"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Location *time.Location

	CalendarRepository *calendar.RepositoryImpl
	CalendarService    *calendar.Service
	CalendarHandler    *calendar.Handler

	GoogleAuth *google.GoogleAuth
	ICSFetcher *ics.Fetcher

	Syncer      *syncer.Syncer
	SyncHandler *syncer.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	loc, err := time.LoadLocation(cfg.Display.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid display.timezone %q: %w", cfg.Display.Timezone, err)
	}
	deps.Location = loc
	deps.Clock = utils.SystemClock{}

	deps.EventBus = event_bus.NewEventBus()
	subscribeLogging(deps.EventBus)

	deps.CalendarRepository = calendar.NewRepository(db)
	deps.CalendarService = calendar.NewService(deps.CalendarRepository, deps.EventBus)
	deps.CalendarHandler = calendar.NewHandler(deps.CalendarService, calendar.HandlerSettings{
		Location:   deps.Location,
		DayFormat:  cfg.Display.DayFormat,
		Horizon:    time.Duration(cfg.Display.HorizonDays) * 24 * time.Hour,
		NextWithin: cfg.Display.NextWithin,
	})

	deps.GoogleAuth = google.NewGoogleAuth(cfg.Google)
	deps.ICSFetcher = ics.NewFetcher(nil)

	deps.Syncer = syncer.NewSyncer(deps.CalendarService, deps.EventBus, buildSources(cfg, deps)...)
	deps.SyncHandler = syncer.NewHandler(deps.Syncer)

	return deps, nil
}

func buildSources(cfg config.Application, deps *Dependencies) []syncer.Source {
	sources := make([]syncer.Source, 0, len(cfg.ICS)+1)
	if cfg.Google.Enabled {
		if deps.GoogleAuth.IsAuthorized() {
			sources = append(sources, google.NewSource(cfg.Google, deps.GoogleAuth))
		} else {
			log.Warn("Google Calendar is enabled but not authorized, run 'calbar auth' first")
		}
	}
	for _, source := range ics.NewSources(cfg.ICS, deps.ICSFetcher) {
		sources = append(sources, source)
	}
	return sources
}

func subscribeLogging(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped(bus, event_bus.CalendarToggledType, func(e event_bus.EventT[event_bus.CalendarToggled]) error {
		log.Infof("Calendar %s (%s) active=%v", e.Data.Name, e.Data.CalendarID, e.Data.Active)
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.SyncCompletedType, func(e event_bus.EventT[event_bus.SyncCompleted]) error {
		log.WithFields(log.Fields{
			"run":      e.Data.RunID,
			"duration": e.Data.Finished.Sub(e.Data.Started),
		}).Debugf("Sync completed with %d error(s)", len(e.Data.Errors))
		return nil
	})
}
