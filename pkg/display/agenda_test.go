package display

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/klokku/calbar/pkg/calendar"
	"github.com/klokku/calbar/pkg/calendar/calendartest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderAgenda(t *testing.T) {
	holiday := calendar.Event{ID: "h", CalendarID: "c", Name: "Holiday",
		Span: calendartest.AllDaySpan(calendar.NewDate(2021, 6, 2), calendar.NewDate(2021, 6, 2))}
	groups := []calendar.DayGroup{
		{Key: "Tuesday, 01 June", Events: []calendar.Event{
			timed("Standup", now.Add(30*time.Minute), 15*time.Minute),
			timed("Review", now.Add(5*time.Hour), time.Hour),
		}},
		{Key: "Wednesday, 02 June", Events: []calendar.Event{holiday}},
	}
	var buf bytes.Buffer

	err := RenderAgenda(&buf, groups, time.UTC)

	require.NoError(t, err)
	assert.Equal(t, "Tuesday, 01 June\n"+
		"  10:00-10:15  Standup\n"+
		"  14:30-15:30  Review\n"+
		"\n"+
		"Wednesday, 02 June\n"+
		"  all day      Holiday\n", buf.String())
}

func TestRenderAgenda_Empty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, RenderAgenda(&buf, nil, nil))

	assert.Equal(t, "No upcoming events\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestRenderAgenda_WriteError(t *testing.T) {
	groups := []calendar.DayGroup{{Key: "x", Events: []calendar.Event{timed("a", now, time.Minute)}}}

	assert.Error(t, RenderAgenda(failingWriter{}, groups, time.UTC))
}
