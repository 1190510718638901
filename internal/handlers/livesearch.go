package handlers

import (
	"context"
	"strings"
	"sync"
	"time"

	"evantra-web/internal/catalog"
)

// streamTTL is how long an idle events view keeps its browser alive.
const streamTTL = 15 * time.Minute

// searchStream pairs one visitor's catalog browser with the latest applied
// result so request handlers can wait for the outcome of a debounced edit.
type searchStream struct {
	browser *catalog.Browser

	mu       sync.Mutex
	latest   *catalog.Result
	notify   chan struct{}
	lastSeen time.Time
}

func newSearchStream(api catalog.Lister, opts ...catalog.Option) *searchStream {
	s := &searchStream{
		notify:   make(chan struct{}),
		lastSeen: time.Now(),
	}
	s.browser = catalog.NewBrowser(api, s.apply, opts...)
	return s
}

// apply records a freshly applied result and wakes every waiter. Runs from
// the browser's callback.
func (s *searchStream) apply(r catalog.Result) {
	s.mu.Lock()
	s.latest = &r
	close(s.notify)
	s.notify = make(chan struct{})
	s.mu.Unlock()
}

// await blocks until the latest applied result matches the wanted query and
// page, or the context expires. A debounced edit means the wait spans the
// quiescence window.
func (s *searchStream) await(ctx context.Context, query string, page int) (*catalog.Result, error) {
	query = strings.TrimSpace(query)
	for {
		s.mu.Lock()
		latest, notify := s.latest, s.notify
		s.mu.Unlock()

		if latest != nil && latest.Query == query && latest.Page == page {
			return latest, nil
		}
		select {
		case <-notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// streamRegistry holds the live search streams, one per events view.
type streamRegistry struct {
	api  catalog.Lister
	opts []catalog.Option

	mu      sync.Mutex
	streams map[string]*searchStream
}

func newStreamRegistry(api catalog.Lister, opts ...catalog.Option) *streamRegistry {
	return &streamRegistry{
		api:     api,
		opts:    opts,
		streams: make(map[string]*searchStream),
	}
}

// get returns the stream for a view ID, creating it on first sight.
func (r *streamRegistry) get(viewID string) *searchStream {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	s, ok := r.streams[viewID]
	if !ok {
		s = newSearchStream(r.api, r.opts...)
		r.streams[viewID] = s
	}
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
	return s
}

// sweepLocked closes browsers idle past the TTL. Caller holds the lock.
func (r *streamRegistry) sweepLocked() {
	cutoff := time.Now().Add(-streamTTL)
	for id, s := range r.streams {
		s.mu.Lock()
		stale := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if stale {
			s.browser.Close()
			delete(r.streams, id)
		}
	}
}
