package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/klokku/calbar/internal/config"
	"github.com/klokku/calbar/pkg/calendar"
	log "github.com/sirupsen/logrus"
)

const (
	dateLayout        = "20060102"
	dateTimeLayout    = "20060102T150405"
	utcDateTimeLayout = "20060102T150405Z"
)

var errSkipped = errors.New("event skipped")

// Parse turns one feed into one calendar and its events.
//
// The feed's config wins over X-WR-CALNAME / X-WR-TIMEZONE. Floating times are read in the
// calendar's zone. Events without DTEND, cancelled events and overrides of recurring
// instances are skipped; recurrence rules are not expanded.
func Parse(feed config.ICSFeed, body []byte) (calendar.Calendar, []calendar.Event, error) {
	if len(body) == 0 {
		return calendar.Calendar{}, nil, errors.New("empty ICS body")
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return calendar.Calendar{}, nil, fmt.Errorf("parse ICS feed %s: %w", feed.ID, err)
	}

	c, err := feedCalendar(feed, cal)
	if err != nil {
		return calendar.Calendar{}, nil, err
	}
	loc, err := c.Location()
	if err != nil {
		return calendar.Calendar{}, nil, err
	}

	events := make([]calendar.Event, 0)
	for _, ve := range cal.Events() {
		event, err := toEvent(c.ID, ve, loc)
		if errors.Is(err, errSkipped) {
			continue
		}
		if err != nil {
			log.Warnf("ignoring event from feed %s: %v", c.ID, err)
			continue
		}
		events = append(events, event)
	}
	return c, events, nil
}

func feedCalendar(feed config.ICSFeed, cal *ical.Calendar) (calendar.Calendar, error) {
	id := feed.ID
	if id == "" {
		id = feed.URL
	}
	if id == "" {
		return calendar.Calendar{}, fmt.Errorf("%w: feed without id or url", calendar.ErrInvalidCalendar)
	}

	c := calendar.Calendar{ID: id, Name: feed.Name, TimeZone: feed.Timezone, Active: true}
	for _, p := range cal.CalendarProperties {
		switch ical.Property(p.IANAToken) {
		case ical.PropertyXWRCalName:
			if c.Name == "" {
				c.Name = p.Value
			}
		case ical.PropertyXWRCalDesc:
			c.Description = p.Value
		case ical.PropertyXWRTimezone:
			if c.TimeZone == "" {
				c.TimeZone = p.Value
			}
		}
	}
	if c.Name == "" {
		c.Name = id
	}
	if c.TimeZone == "" {
		c.TimeZone = calendar.DefaultTimeZone
	}
	return c, nil
}

func toEvent(calendarId string, ve *ical.VEvent, loc *time.Location) (calendar.Event, error) {
	if ve.GetProperty(ical.ComponentPropertyRecurrenceId) != nil {
		return calendar.Event{}, errSkipped
	}
	if p := ve.GetProperty(ical.ComponentPropertyStatus); p != nil && strings.EqualFold(p.Value, "CANCELLED") {
		return calendar.Event{}, errSkipped
	}
	startProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	endProp := ve.GetProperty(ical.ComponentPropertyDtEnd)
	if startProp == nil || endProp == nil {
		return calendar.Event{}, errSkipped
	}

	uid := ve.Id()
	if uid == "" {
		return calendar.Event{}, fmt.Errorf("%w: VEVENT without UID", calendar.ErrInvalidEvent)
	}

	span, err := toSpan(startProp, endProp, loc)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("event %s: %w", uid, err)
	}

	event := calendar.Event{ID: uid, CalendarID: calendarId, Span: span}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		event.Name = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		event.Description = p.Value
	}
	return event, event.Validate()
}

func toSpan(start, end *ical.IANAProperty, loc *time.Location) (calendar.Span, error) {
	startDate, startIsDate := isDate(start)
	endDate, endIsDate := isDate(end)
	switch {
	case startIsDate && endIsDate:
		s, err := calendar.ParseDate(startDate)
		if err != nil {
			return calendar.Span{}, fmt.Errorf("%w: DTSTART: %w", calendar.ErrInvalidEvent, err)
		}
		e, err := calendar.ParseDate(endDate)
		if err != nil {
			return calendar.Span{}, fmt.Errorf("%w: DTEND: %w", calendar.ErrInvalidEvent, err)
		}
		return calendar.AllDaySpan(s, e)
	case !startIsDate && !endIsDate:
		s, err := parseDateTime(start, loc)
		if err != nil {
			return calendar.Span{}, fmt.Errorf("%w: DTSTART: %w", calendar.ErrInvalidEvent, err)
		}
		e, err := parseDateTime(end, loc)
		if err != nil {
			return calendar.Span{}, fmt.Errorf("%w: DTEND: %w", calendar.ErrInvalidEvent, err)
		}
		return calendar.TimedSpan(s, e)
	default:
		return calendar.Span{}, fmt.Errorf("%w: DTSTART and DTEND mix dates and times", calendar.ErrInvalidEvent)
	}
}

// isDate reports whether the property holds a DATE value and returns it as YYYY-MM-DD.
func isDate(p *ical.IANAProperty) (string, bool) {
	value := strings.TrimSpace(p.Value)
	dateValue := false
	if vs, ok := p.ICalParameters[string(ical.ParameterValue)]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		dateValue = true
	}
	if !dateValue && (len(value) != len(dateLayout) || strings.Contains(value, "T")) {
		return "", false
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		// Let ParseDate report the malformed value.
		return value, true
	}
	return t.Format("2006-01-02"), true
}

func parseDateTime(p *ical.IANAProperty, loc *time.Location) (time.Time, error) {
	value := strings.TrimSpace(p.Value)
	if strings.HasSuffix(value, "Z") {
		return time.Parse(utcDateTimeLayout, value)
	}
	if tzids, ok := p.ICalParameters[string(ical.ParameterTzid)]; ok && len(tzids) > 0 {
		tz, err := time.LoadLocation(strings.Trim(tzids[0], `"`))
		if err != nil {
			log.Debugf("unknown TZID %q, using %s", tzids[0], loc)
		} else {
			loc = tz
		}
	}
	return time.ParseInLocation(dateTimeLayout, value, loc)
}
