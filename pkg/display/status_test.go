package display

import (
	"bytes"
	"testing"
	"time"

	"github.com/klokku/calbar/pkg/calendar"
	"github.com/klokku/calbar/pkg/calendar/calendartest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2021, 6, 1, 9, 30, 0, 0, time.UTC)

func timed(name string, start time.Time, d time.Duration) calendar.Event {
	return calendar.Event{ID: name, CalendarID: "c", Name: name, Span: calendartest.TimedSpan(start, start.Add(d))}
}

func TestCountdown(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0 minutes"},
		{-time.Minute, "0 minutes"},
		{59*time.Second + 5*time.Minute, "5 minutes"},
		{60 * time.Minute, "60 minutes"},
		{61 * time.Minute, "1 hours and 1 minutes"},
		{2 * time.Hour, "2 hours"},
		{26*time.Hour + 30*time.Minute, "26 hours and 30 minutes"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Countdown(tt.in))
		})
	}
}

func TestStatusLine_Timed(t *testing.T) {
	melbourne, err := time.LoadLocation("Australia/Melbourne")
	require.NoError(t, err)

	status := StatusLine(timed("Standup", now.Add(90*time.Minute), 15*time.Minute), now, melbourne)

	assert.Equal(t, Status{
		Text:    "Next event: Standup starting in 1 hours and 30 minutes",
		Alt:     "upcoming",
		Tooltip: "Start: 21:00 \n End: 21:15",
		Class:   "upcoming",
	}, status)
}

func TestStatusLine_Imminent(t *testing.T) {
	status := StatusLine(timed("Call", now.Add(10*time.Minute), time.Hour), now, nil)

	assert.Equal(t, "Next event: Call starting in 10 minutes", status.Text)
	assert.Equal(t, "imminent", status.Class)
	assert.Equal(t, "Start: 09:40 \n End: 10:40", status.Tooltip)
}

func TestStatusLine_AllDay(t *testing.T) {
	single := calendar.Event{ID: "h", CalendarID: "c", Name: "Holiday",
		Span: calendartest.AllDaySpan(calendar.NewDate(2021, 6, 2), calendar.NewDate(2021, 6, 2))}
	trip := calendar.Event{ID: "t", CalendarID: "c", Name: "Trip",
		Span: calendartest.AllDaySpan(calendar.NewDate(2021, 6, 2), calendar.NewDate(2021, 6, 4))}

	assert.Equal(t, Status{
		Text:    "Holiday (all day)",
		Alt:     "allday",
		Tooltip: "All day: 2021-06-02",
		Class:   "allday",
	}, StatusLine(single, now, time.UTC))
	assert.Equal(t, "All day: 2021-06-02 - 2021-06-04", StatusLine(trip, now, time.UTC).Tooltip)
}

func TestWriteStatus(t *testing.T) {
	var buf bytes.Buffer

	err := WriteStatus(&buf, Status{Text: "a", Alt: "b", Tooltip: "c \n d", Class: "e"})

	require.NoError(t, err)
	assert.Equal(t, `{"text":"a","alt":"b","tooltip":"c \n d","class":"e"}`+"\n", buf.String())
}
