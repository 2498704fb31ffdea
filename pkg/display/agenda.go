package display

import (
	"fmt"
	"io"
	"time"

	"github.com/klokku/calbar/pkg/calendar"
)

// RenderAgenda writes one heading per day group followed by its events.
func RenderAgenda(w io.Writer, groups []calendar.DayGroup, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	if len(groups) == 0 {
		_, err := fmt.Fprintln(w, "No upcoming events")
		return err
	}

	for i, group := range groups {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, group.Key); err != nil {
			return err
		}
		for _, e := range group.Events {
			if _, err := fmt.Fprintf(w, "  %-11s  %s\n", timeRange(e, loc), e.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func timeRange(e calendar.Event, loc *time.Location) string {
	if e.AllDay() {
		return "all day"
	}
	return e.LocalStart(loc).Format("15:04") + "-" + e.LocalEnd(loc).Format("15:04")
}
