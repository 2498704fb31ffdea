package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/klokku/calbar/internal/config"
	"github.com/klokku/calbar/pkg/calendar"
	"github.com/klokku/calbar/pkg/calendar/calendartest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func icsBody(lines ...string) []byte {
	all := append([]string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//test//EN"}, lines...)
	all = append(all, "END:VCALENDAR")
	return []byte(strings.Join(all, "\r\n") + "\r\n")
}

const sampleFeed = `X-WR-CALNAME:Team
X-WR-CALDESC:Team events
X-WR-TIMEZONE:Europe/Warsaw
BEGIN:VEVENT
UID:utc@test
SUMMARY:Standup
DESCRIPTION:Daily sync
DTSTART:20210601T100000Z
DTEND:20210601T101500Z
END:VEVENT
BEGIN:VEVENT
UID:tzid@test
SUMMARY:Lunch
DTSTART;TZID=America/New_York:20210601T120000
DTEND;TZID=America/New_York:20210601T130000
END:VEVENT
BEGIN:VEVENT
UID:floating@test
SUMMARY:Gym
DTSTART:20210601T180000
DTEND:20210601T190000
END:VEVENT
BEGIN:VEVENT
UID:holiday@test
SUMMARY:Holiday
DTSTART;VALUE=DATE:20210602
DTEND;VALUE=DATE:20210603
END:VEVENT
BEGIN:VEVENT
UID:cancelled@test
SUMMARY:Cancelled
STATUS:CANCELLED
DTSTART:20210601T100000Z
DTEND:20210601T110000Z
END:VEVENT
BEGIN:VEVENT
UID:noend@test
SUMMARY:Reminder
DTSTART:20210601T100000Z
END:VEVENT
BEGIN:VEVENT
UID:holiday@test
RECURRENCE-ID:20210609T100000Z
SUMMARY:Moved
DTSTART:20210610T100000Z
DTEND:20210610T110000Z
END:VEVENT
BEGIN:VEVENT
UID:backwards@test
SUMMARY:Broken
DTSTART:20210601T110000Z
DTEND:20210601T100000Z
END:VEVENT`

func TestParse(t *testing.T) {
	feed := config.ICSFeed{ID: "team", URL: "https://example.com/team.ics"}

	c, events, err := Parse(feed, icsBody(strings.Split(sampleFeed, "\n")...))

	require.NoError(t, err)
	assert.Equal(t, calendar.Calendar{
		ID:          "team",
		Name:        "Team",
		Description: "Team events",
		TimeZone:    "Europe/Warsaw",
		Active:      true,
	}, c)

	newYork, _ := time.LoadLocation("America/New_York")
	warsaw, _ := time.LoadLocation("Europe/Warsaw")
	want := []calendar.Event{
		{
			ID: "utc@test", CalendarID: "team", Name: "Standup", Description: "Daily sync",
			Span: calendartest.TimedSpan(time.Date(2021, 6, 1, 10, 0, 0, 0, time.UTC), time.Date(2021, 6, 1, 10, 15, 0, 0, time.UTC)),
		},
		{
			ID: "tzid@test", CalendarID: "team", Name: "Lunch",
			Span: calendartest.TimedSpan(time.Date(2021, 6, 1, 12, 0, 0, 0, newYork), time.Date(2021, 6, 1, 13, 0, 0, 0, newYork)),
		},
		{
			ID: "floating@test", CalendarID: "team", Name: "Gym",
			Span: calendartest.TimedSpan(time.Date(2021, 6, 1, 18, 0, 0, 0, warsaw), time.Date(2021, 6, 1, 19, 0, 0, 0, warsaw)),
		},
		{
			ID: "holiday@test", CalendarID: "team", Name: "Holiday",
			Span: calendartest.AllDaySpan(calendar.NewDate(2021, 6, 2), calendar.NewDate(2021, 6, 3)),
		},
	}
	if diff := cmp.Diff(want, events, cmp.AllowUnexported(calendar.Span{}, calendar.Moment{})); diff != "" {
		t.Errorf("Parse() events mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_FeedConfigWins(t *testing.T) {
	feed := config.ICSFeed{ID: "team", Name: "My team", Timezone: "Asia/Tokyo"}

	c, _, err := Parse(feed, icsBody("X-WR-CALNAME:Team", "X-WR-TIMEZONE:Europe/Warsaw"))

	require.NoError(t, err)
	assert.Equal(t, "My team", c.Name)
	assert.Equal(t, "Asia/Tokyo", c.TimeZone)
}

func TestParse_Defaults(t *testing.T) {
	feed := config.ICSFeed{URL: "https://example.com/cal.ics"}

	c, events, err := Parse(feed, icsBody())

	require.NoError(t, err)
	assert.Equal(t, "https://example.com/cal.ics", c.ID)
	assert.Equal(t, "https://example.com/cal.ics", c.Name)
	assert.Equal(t, calendar.DefaultTimeZone, c.TimeZone)
	assert.True(t, c.Active)
	assert.Empty(t, events)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		feed config.ICSFeed
		body []byte
	}{
		{"empty body", config.ICSFeed{ID: "a"}, nil},
		{"no identity", config.ICSFeed{}, icsBody()},
		{"unknown time zone", config.ICSFeed{ID: "a", Timezone: "Mars/Olympus"}, icsBody()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.feed, tt.body)
			assert.Error(t, err)
		})
	}
}

func TestToSpan_MixedKinds(t *testing.T) {
	_, events, err := Parse(config.ICSFeed{ID: "a"}, icsBody(
		"BEGIN:VEVENT",
		"UID:mixed@test",
		"DTSTART;VALUE=DATE:20210601",
		"DTEND:20210601T100000Z",
		"END:VEVENT",
	))

	require.NoError(t, err)
	assert.Empty(t, events)
}
