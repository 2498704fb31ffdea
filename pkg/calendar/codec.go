package calendar

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// On-disk encoding shared with existing cal.db files:
//   - instants are ISO-8601 with a numeric offset, fractional seconds only when non-zero
//     (2021-06-01T10:00:00+00:00, 2021-06-01T10:00:00.250000+00:00);
//   - dates are the 10 character YYYY-MM-DD form;
//   - booleans are the integers 0 and 1.
//
// Decoding tells dates from instants by the encoded length alone.
const (
	instantLayout      = "2006-01-02T15:04:05-07:00"
	instantMicroLayout = "2006-01-02T15:04:05.000000-07:00"
	encodedDateLength  = len(dateLayout)
)

var errNaiveInstant = errors.New("instant has no time zone offset")

func encodeMoment(m Moment) string {
	if d, ok := m.Date(); ok {
		return d.String()
	}
	t, _ := m.Instant()
	if t.Nanosecond() == 0 {
		return t.Format(instantLayout)
	}
	return t.Format(instantMicroLayout)
}

func decodeMoment(s string) (Moment, error) {
	if len(s) == encodedDateLength {
		d, err := ParseDate(s)
		if err != nil {
			return Moment{}, err
		}
		return DateOf(d), nil
	}

	// Older writers separated date and time with a space.
	value := strings.Replace(s, " ", "T", 1)
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		if _, naiveErr := time.Parse("2006-01-02T15:04:05.999999999", value); naiveErr == nil {
			return Moment{}, errNaiveInstant
		}
		return Moment{}, err
	}
	return InstantOf(t), nil
}

func decodeSpan(start, end string) (Span, error) {
	s, err := decodeMoment(start)
	if err != nil {
		return Span{}, fmt.Errorf("start: %w", err)
	}
	e, err := decodeMoment(end)
	if err != nil {
		return Span{}, fmt.Errorf("end: %w", err)
	}
	if s.IsDate() != e.IsDate() {
		return Span{}, fmt.Errorf("%w: start %s and end %s mix dates and instants", ErrInvalidEvent, start, end)
	}
	if s.IsDate() {
		sd, _ := s.Date()
		ed, _ := e.Date()
		return AllDaySpan(sd, ed)
	}
	si, _ := s.Instant()
	ei, _ := e.Instant()
	return TimedSpan(si, ei)
}

func encodeBool(b bool) int {
	if b {
		return 1
	}
	return 0
}

func decodeBool(v sql.NullInt64) bool {
	return v.Valid && v.Int64 != 0
}

func encodeOptional(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func decodeTimeZone(v sql.NullString) (string, error) {
	if !v.Valid || v.String == "" {
		return DefaultTimeZone, nil
	}
	if _, err := time.LoadLocation(v.String); err != nil {
		return "", err
	}
	return v.String, nil
}
