package calendar

import "time"

func mustTimedSpan(start, end time.Time) Span {
	s, err := TimedSpan(start, end)
	if err != nil {
		panic(err)
	}
	return s
}

func mustAllDaySpan(start, end Date) Span {
	s, err := AllDaySpan(start, end)
	if err != nil {
		panic(err)
	}
	return s
}
