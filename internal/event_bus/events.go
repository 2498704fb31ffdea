package event_bus

import "time"

const (
	CalendarToggledType EventType = "calendar.toggled"
	SyncCompletedType   EventType = "sync.completed"
)

// CalendarToggled is published after a calendar's active flag was persisted.
type CalendarToggled struct {
	CalendarID string
	Name       string
	Active     bool
}

// SyncCompleted is published at the end of every sync run, successful or not.
type SyncCompleted struct {
	RunID     string
	Started   time.Time
	Finished  time.Time
	Calendars int
	Events    int
	Errors    []string
}
