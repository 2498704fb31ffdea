package ics

import (
	"context"

	"github.com/klokku/calbar/internal/config"
	"github.com/klokku/calbar/pkg/calendar"
)

// Source is one configured ICS subscription.
type Source struct {
	feed    config.ICSFeed
	fetcher *Fetcher
}

func NewSource(feed config.ICSFeed, fetcher *Fetcher) *Source {
	return &Source{feed: feed, fetcher: fetcher}
}

// NewSources builds one Source per feed, sharing a fetcher.
func NewSources(feeds []config.ICSFeed, fetcher *Fetcher) []*Source {
	sources := make([]*Source, 0, len(feeds))
	for _, feed := range feeds {
		sources = append(sources, NewSource(feed, fetcher))
	}
	return sources
}

func (s *Source) Name() string {
	if s.feed.ID != "" {
		return "ics:" + s.feed.ID
	}
	return "ics:" + redactURL(s.feed.URL)
}

func (s *Source) Fetch(ctx context.Context) (calendar.Calendars, []calendar.Event, error) {
	body, err := s.fetcher.Fetch(ctx, s.feed.URL)
	if err != nil {
		return nil, nil, err
	}
	c, events, err := Parse(s.feed, body)
	if err != nil {
		return nil, nil, err
	}
	return calendar.CalendarsOf(c), events, nil
}
