package display

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klokku/calbar/pkg/calendar"
)

const (
	classUpcoming = "upcoming"
	classImminent = "imminent"
	classAllDay   = "allday"

	imminentWithin = 15 * time.Minute
)

// Status is a waybar custom module payload.
type Status struct {
	Text    string `json:"text"`
	Alt     string `json:"alt"`
	Tooltip string `json:"tooltip"`
	Class   string `json:"class"`
}

// StatusLine describes the next event relative to now. Times in the tooltip are shown in loc.
func StatusLine(event calendar.Event, now time.Time, loc *time.Location) Status {
	if loc == nil {
		loc = time.UTC
	}

	if event.AllDay() {
		start, _ := event.Start().Date()
		end, _ := event.End().Date()
		tooltip := "All day: " + start.String()
		if end.After(start) {
			tooltip = fmt.Sprintf("All day: %s - %s", start, end)
		}
		return Status{
			Text:    fmt.Sprintf("%s (all day)", event.Name),
			Alt:     classAllDay,
			Tooltip: tooltip,
			Class:   classAllDay,
		}
	}

	until := event.Start().Anchor().Sub(now)
	class := classUpcoming
	if until <= imminentWithin {
		class = classImminent
	}
	return Status{
		Text:    fmt.Sprintf("Next event: %s starting in %s", event.Name, Countdown(until)),
		Alt:     class,
		Tooltip: fmt.Sprintf("Start: %s \n End: %s", event.LocalStart(loc).Format("15:04"), event.LocalEnd(loc).Format("15:04")),
		Class:   class,
	}
}

// Countdown renders whole minutes, switching to hours past the first hour.
func Countdown(d time.Duration) string {
	minutes := int(d / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	if minutes <= 60 {
		return fmt.Sprintf("%d minutes", minutes)
	}
	hours, rest := minutes/60, minutes%60
	if rest == 0 {
		return fmt.Sprintf("%d hours", hours)
	}
	return fmt.Sprintf("%d hours and %d minutes", hours, rest)
}

// WriteStatus writes s as a single JSON line.
func WriteStatus(w io.Writer, s Status) error {
	return json.NewEncoder(w).Encode(s)
}
