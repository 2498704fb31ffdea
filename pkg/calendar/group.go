package calendar

import (
	"time"

	"github.com/ncruces/go-strftime"
)

const DefaultDayFormat = "%Y-%m-%d"

// DayGroup is one bucket of GroupByLocalDay, in input order.
type DayGroup struct {
	Key    string
	Events []Event
}

// GroupByLocalDay buckets events by the strftime rendering of their local start.
//
// Timed events are projected into loc first. All-day events use their date as is. Groups
// appear in order of first appearance and keep the relative order of their members.
func GroupByLocalDay(events []Event, loc *time.Location, keyFormat string) []DayGroup {
	if loc == nil {
		loc = time.UTC
	}
	if keyFormat == "" {
		keyFormat = DefaultDayFormat
	}

	groups := make([]DayGroup, 0)
	index := make(map[string]int)
	for _, e := range events {
		key := strftime.Format(keyFormat, groupingTime(e.Start(), loc))
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DayGroup{Key: key})
		}
		groups[i].Events = append(groups[i].Events, e)
	}
	return groups
}

func groupingTime(m Moment, loc *time.Location) time.Time {
	if d, ok := m.Date(); ok {
		return d.Midnight(time.UTC)
	}
	return m.In(loc)
}
