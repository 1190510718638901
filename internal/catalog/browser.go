// Package catalog reconciles the events listing's search text and page
// selection into a single outstanding backend request.
package catalog

import (
	"context"
	"strings"
	"sync"
	"time"

	"evantra-web/internal/models"
)

// DefaultDebounce is the quiescence window applied to search text edits so
// one request is issued per burst of keystrokes, not one per keystroke.
const DefaultDebounce = 300 * time.Millisecond

// Lister is the slice of the backend API the browser needs.
type Lister interface {
	ListPublishedEvents(ctx context.Context, page int) (*models.Page[models.PublishedEventSummary], error)
	SearchPublishedEvents(ctx context.Context, query string, page int) (*models.Page[models.PublishedEventSummary], error)
}

// Result is one settled catalog request. Exactly one of Events/Err is set.
type Result struct {
	Query  string
	Page   int
	Events *models.Page[models.PublishedEventSummary]
	Err    error
}

// Browser owns the "current query" and "current page" state for one events
// view. Text edits are debounced; page flips fire immediately; and every
// request carries a sequence number so a slow stale response can never
// overwrite a newer one.
type Browser struct {
	api      Lister
	debounce time.Duration
	onResult func(Result)

	mu      sync.Mutex
	query   string
	page    int
	seq     uint64 // last issued request
	applied uint64 // highest sequence whose response was applied
	timer   *time.Timer
	cancel  context.CancelFunc // cancels the superseded in-flight request
	closed  bool
}

// Option configures a Browser.
type Option func(*Browser)

// WithDebounce overrides the debounce window (tests use a short one).
func WithDebounce(d time.Duration) Option {
	return func(b *Browser) { b.debounce = d }
}

// NewBrowser creates a catalog browser. onResult receives every applied
// result; it is invoked with the browser's lock held, so it must not call
// back into the browser.
func NewBrowser(api Lister, onResult func(Result), opts ...Option) *Browser {
	b := &Browser{
		api:      api,
		debounce: DefaultDebounce,
		onResult: onResult,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Refresh issues the current query and page immediately. Used for the
// initial load of the view.
func (b *Browser) Refresh() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.issueLocked()
}

// SetQuery records a new search text. The page resets to zero and the
// request is deferred by the debounce window; further edits inside the
// window coalesce into the final one.
func (b *Browser) SetQuery(query string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	b.query = query
	b.page = 0

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.debounce, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.closed {
			return
		}
		b.issueLocked()
	})
}

// SetPage flips to another page of the current query. A pagination click is
// a deliberate action, so it fires immediately, with no debounce.
func (b *Browser) SetPage(page int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if page < 0 {
		page = 0
	}
	b.page = page

	// A pending debounced request is now stale: it targeted page 0.
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.issueLocked()
}

// Query returns the current search text.
func (b *Browser) Query() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query
}

// Page returns the current page index.
func (b *Browser) Page() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page
}

// Close cancels pending and in-flight work. No result is delivered after
// Close returns.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

// issueLocked sends the request for the current query and page. The caller
// holds the lock. Whitespace-only text routes to the plain listing.
func (b *Browser) issueLocked() {
	b.seq++
	seq := b.seq
	query := strings.TrimSpace(b.query)
	page := b.page

	// Supersede the previous in-flight request. Its HTTP call may still
	// complete, but its effect is discarded by the sequence check below.
	if b.cancel != nil {
		b.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	go func() {
		var events *models.Page[models.PublishedEventSummary]
		var err error
		if query == "" {
			events, err = b.api.ListPublishedEvents(ctx, page)
		} else {
			events, err = b.api.SearchPublishedEvents(ctx, query, page)
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		if b.closed || seq <= b.applied {
			// A newer response already landed, or the view is gone.
			return
		}
		if err != nil && ctx.Err() != nil {
			// Cancelled because a newer request was issued; not a failure.
			return
		}
		b.applied = seq
		if b.onResult != nil {
			b.onResult(Result{Query: query, Page: page, Events: events, Err: err})
		}
	}()
}
