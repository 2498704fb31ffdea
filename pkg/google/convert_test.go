package google

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/klokku/calbar/pkg/calendar"
	"github.com/klokku/calbar/pkg/calendar/calendartest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
)

func TestToCalendar(t *testing.T) {
	tests := []struct {
		name  string
		entry *gcal.CalendarListEntry
		want  calendar.Calendar
	}{
		{
			name:  "summary override wins",
			entry: &gcal.CalendarListEntry{Id: "a", Summary: "Shared", SummaryOverride: "Mine", TimeZone: "Europe/Berlin", Selected: true},
			want:  calendar.Calendar{ID: "a", Name: "Mine", TimeZone: "Europe/Berlin", Active: true},
		},
		{
			name:  "defaults to UTC",
			entry: &gcal.CalendarListEntry{Id: "b", Summary: "B", Description: "about b"},
			want:  calendar.Calendar{ID: "b", Name: "B", Description: "about b", TimeZone: "UTC"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toCalendar(tt.entry)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("toCalendar() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToCalendarRejects(t *testing.T) {
	tests := []struct {
		name  string
		entry *gcal.CalendarListEntry
	}{
		{"unknown time zone", &gcal.CalendarListEntry{Id: "a", Summary: "A", TimeZone: "Mars/Olympus"}},
		{"missing id", &gcal.CalendarListEntry{Summary: "A", TimeZone: "UTC"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := toCalendar(tt.entry)
			assert.ErrorIs(t, err, calendar.ErrInvalidCalendar)
		})
	}
}

func TestToEvent(t *testing.T) {
	timed, err := toEvent("cal", &gcal.Event{
		Id:          "t",
		Summary:     "Standup",
		Description: "daily",
		Start:       &gcal.EventDateTime{DateTime: "2021-06-01T12:00:00+02:00"},
		End:         &gcal.EventDateTime{DateTime: "2021-06-01T12:15:00+02:00"},
	})
	require.NoError(t, err)
	assert.Equal(t, calendar.Event{
		ID:          "t",
		CalendarID:  "cal",
		Span:        calendartest.TimedSpan(time.Date(2021, 6, 1, 10, 0, 0, 0, time.UTC), time.Date(2021, 6, 1, 10, 15, 0, 0, time.UTC)),
		Name:        "Standup",
		Description: "daily",
	}, timed)

	allDay, err := toEvent("cal", &gcal.Event{
		Id:      "d",
		Summary: "Holiday",
		Start:   &gcal.EventDateTime{Date: "2021-06-01"},
		End:     &gcal.EventDateTime{Date: "2021-06-02"},
	})
	require.NoError(t, err)
	assert.True(t, allDay.AllDay())
	start, _ := allDay.Start().Date()
	assert.Equal(t, calendar.NewDate(2021, 6, 1), start)
}

func TestToEventRejects(t *testing.T) {
	tests := []struct {
		name string
		item *gcal.Event
	}{
		{"mixed kinds", &gcal.Event{Id: "x", Start: &gcal.EventDateTime{Date: "2021-06-01"}, End: &gcal.EventDateTime{DateTime: "2021-06-01T10:00:00Z"}}},
		{"start after end", &gcal.Event{Id: "x", Start: &gcal.EventDateTime{DateTime: "2021-06-01T11:00:00Z"}, End: &gcal.EventDateTime{DateTime: "2021-06-01T10:00:00Z"}}},
		{"bad date", &gcal.Event{Id: "x", Start: &gcal.EventDateTime{Date: "June 1"}, End: &gcal.EventDateTime{Date: "2021-06-02"}}},
		{"missing end", &gcal.Event{Id: "x", Start: &gcal.EventDateTime{Date: "2021-06-01"}}},
		{"missing id", &gcal.Event{Start: &gcal.EventDateTime{Date: "2021-06-01"}, End: &gcal.EventDateTime{Date: "2021-06-02"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := toEvent("cal", tt.item)
			assert.ErrorIs(t, err, calendar.ErrInvalidEvent)
		})
	}

	_, err := toEvent("cal", &gcal.Event{Id: "x", Status: "cancelled"})
	assert.ErrorIs(t, err, errCancelled)
}
