package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate(t *testing.T) {
	d, err := ParseDate("2021-12-31")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2021, 12, 31), d)
	assert.Equal(t, "2021-12-31", d.String())
	assert.Equal(t, NewDate(2022, 1, 1), d.AddDays(1))
	assert.Equal(t, NewDate(2021, 3, 2), NewDate(2021, 2, 30))

	assert.True(t, d.After(NewDate(2021, 12, 30)))
	assert.True(t, d.Before(NewDate(2022, 1, 1)))
	assert.Equal(t, 0, d.Compare(NewDate(2021, 12, 31)))

	_, err = ParseDate("31.12.2021")
	assert.Error(t, err)
}

func TestDateMidnight(t *testing.T) {
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)

	m := NewDate(2021, 6, 1).Midnight(warsaw)

	assert.Equal(t, time.Date(2021, 5, 31, 22, 0, 0, 0, time.UTC), m.UTC())
}

func TestMomentKinds(t *testing.T) {
	instant := InstantOf(utc(2021, 6, 1, 10, 0))
	date := DateOf(NewDate(2021, 6, 1))

	assert.False(t, instant.IsDate())
	_, ok := instant.Date()
	assert.False(t, ok)
	got, ok := instant.Instant()
	assert.True(t, ok)
	assert.Equal(t, utc(2021, 6, 1, 10, 0), got)

	assert.True(t, date.IsDate())
	_, ok = date.Instant()
	assert.False(t, ok)
	assert.Equal(t, utc(2021, 6, 1, 0, 0), date.Anchor())

	assert.Equal(t, 1, instant.Compare(date))
	assert.Equal(t, -1, date.Compare(instant))
}

func TestMomentEqualityAcrossZones(t *testing.T) {
	plusTwo := time.FixedZone("", 2*60*60)

	assert.Equal(t, InstantOf(utc(2021, 6, 1, 10, 0)), InstantOf(time.Date(2021, 6, 1, 12, 0, 0, 0, plusTwo)))
	assert.True(t, InstantOf(utc(2021, 6, 1, 10, 0)) == InstantOf(time.Date(2021, 6, 1, 12, 0, 0, 0, plusTwo)))
}

func TestMomentLocalDate(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	assert.Equal(t, NewDate(2021, 6, 2), InstantOf(utc(2021, 6, 1, 16, 0)).LocalDate(tokyo))
	assert.Equal(t, NewDate(2021, 6, 1), DateOf(NewDate(2021, 6, 1)).LocalDate(tokyo))
}

func TestSpans(t *testing.T) {
	_, err := TimedSpan(utc(2021, 6, 1, 11, 0), utc(2021, 6, 1, 10, 0))
	assert.ErrorIs(t, err, ErrInvalidEvent)

	_, err = AllDaySpan(NewDate(2021, 6, 2), NewDate(2021, 6, 1))
	assert.ErrorIs(t, err, ErrInvalidEvent)

	zero, err := TimedSpan(utc(2021, 6, 1, 10, 0), utc(2021, 6, 1, 10, 0))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), zero.Duration())
	assert.False(t, zero.AllDay())

	allDay := mustAllDaySpan(NewDate(2021, 6, 1), NewDate(2021, 6, 3))
	assert.True(t, allDay.AllDay())
	assert.Equal(t, 48*time.Hour, allDay.Duration())
}

func TestEventValidate(t *testing.T) {
	assert.NoError(t, timedEvent("e", "c", utc(2021, 6, 1, 10, 0), time.Hour).Validate())
	assert.ErrorIs(t, timedEvent("", "c", utc(2021, 6, 1, 10, 0), time.Hour).Validate(), ErrInvalidEvent)
	assert.ErrorIs(t, timedEvent("e", "", utc(2021, 6, 1, 10, 0), time.Hour).Validate(), ErrInvalidEvent)
}

func TestCalendarsSortedAndActive(t *testing.T) {
	calendars := CalendarsOf(
		Calendar{ID: "2", Name: "Work", Active: true},
		Calendar{ID: "1", Name: "Work"},
		Calendar{ID: "3", Name: "Home", Active: true},
	)

	sorted := calendars.Sorted()
	require.Len(t, sorted, 3)
	assert.Equal(t, []string{"3", "1", "2"}, []string{sorted[0].ID, sorted[1].ID, sorted[2].ID})

	assert.Equal(t, CalendarsOf(
		Calendar{ID: "2", Name: "Work", Active: true},
		Calendar{ID: "3", Name: "Home", Active: true},
	), calendars.Active())
}

func TestCalendarLocation(t *testing.T) {
	loc, err := Calendar{ID: "a"}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = Calendar{ID: "a", TimeZone: "Bad/Zone"}.Location()
	assert.ErrorIs(t, err, ErrInvalidCalendar)
}

func TestCalendarValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       Calendar
		wantErr bool
	}{
		{"default zone", Calendar{ID: "a"}, false},
		{"named zone", Calendar{ID: "a", TimeZone: "Asia/Tokyo"}, false},
		{"missing id", Calendar{TimeZone: "UTC"}, true},
		{"unknown zone", Calendar{ID: "a", TimeZone: "Mars/Olympus"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCalendar)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
