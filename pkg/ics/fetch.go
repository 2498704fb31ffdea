package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const maxFeedSize = 16 << 20

type cacheEntry struct {
	etag         string
	lastModified string
	body         []byte
}

// Fetcher downloads ICS feeds, revalidating with ETag / Last-Modified against the
// previous response kept in memory.
type Fetcher struct {
	client *http.Client
	mu     sync.Mutex
	cache  map[string]cacheEntry
}

func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{client: client, cache: make(map[string]cacheEntry)}
}

func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]byte, error) {
	if feedURL == "" {
		return nil, errors.New("feed URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	cached, hasCache := f.cache[feedURL]
	f.mu.Unlock()
	if hasCache {
		if cached.etag != "" {
			req.Header.Set("If-None-Match", cached.etag)
		}
		if cached.lastModified != "" {
			req.Header.Set("If-Modified-Since", cached.lastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		err := fmt.Errorf("fetch %s: %w", redactURL(feedURL), err)
		log.Error(err)
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", redactURL(feedURL), err)
		}
		f.mu.Lock()
		f.cache[feedURL] = cacheEntry{
			etag:         resp.Header.Get("ETag"),
			lastModified: resp.Header.Get("Last-Modified"),
			body:         body,
		}
		f.mu.Unlock()
		log.Debugf("Fetched %d bytes from %s", len(body), redactURL(feedURL))
		return body, nil
	case http.StatusNotModified:
		if !hasCache {
			return nil, fmt.Errorf("fetch %s: 304 Not Modified without a cached body", redactURL(feedURL))
		}
		log.Debugf("Feed %s not modified", redactURL(feedURL))
		return cached.body, nil
	default:
		err := fmt.Errorf("fetch %s: unexpected status %s", redactURL(feedURL), resp.Status)
		log.Error(err)
		return nil, err
	}
}

// redactURL drops credentials and query strings, which private feed URLs use as secrets.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	u.User = nil
	u.RawQuery = ""
	return u.String()
}
