package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"evantra-web/internal/api"
	"evantra-web/internal/catalog"
	"evantra-web/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const eventsViewCookie = "events_view"

// searchWait bounds how long the events page waits for a debounced search
// to settle before giving up on the backend.
const searchWait = catalog.DefaultDebounce + 10*time.Second

// PublicHandler handles anonymous browsing: home, events list/search, and
// the published event detail page
type PublicHandler struct {
	api     *api.Client
	streams *streamRegistry
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(apiClient *api.Client) *PublicHandler {
	return &PublicHandler{
		api:     apiClient,
		streams: newStreamRegistry(apiClient),
	}
}

type homePageData struct {
	pageContext
	Events []models.PublishedEventSummary
	Error  string
}

// HomePage renders the landing page with the first page of published events.
func (h *PublicHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	data := homePageData{pageContext: newPageContext(r)}
	page, err := h.api.ListPublishedEvents(r.Context(), 0)
	if err != nil {
		data.Error = models.UserMessage(err)
	} else {
		data.Events = page.Content
	}
	render(w, "home.tmpl", data)
}

type eventsPageData struct {
	pageContext
	Query   string
	Page    int
	Results *models.Page[models.PublishedEventSummary]
	Error   string
}

// EventsPage renders the events listing with search and pagination. Search
// edits go through the visitor's catalog browser, so rapid keystrokes from
// the page's live search coalesce into one backend request and a stale slow
// response never replaces a newer one.
func (h *PublicHandler) EventsPage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	page := 0
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p >= 0 {
			page = p
		}
	}

	stream := h.streams.get(h.viewID(w, r))
	browser := stream.browser

	switch {
	case browser.Query() != query:
		// Text edit: debounced, page resets to zero.
		browser.SetQuery(query)
		page = 0
	case browser.Page() != page:
		browser.SetPage(page)
	default:
		browser.Refresh()
	}

	ctx, cancel := context.WithTimeout(r.Context(), searchWait)
	defer cancel()
	result, err := stream.await(ctx, query, page)

	data := eventsPageData{
		pageContext: newPageContext(r),
		Query:       query,
		Page:        page,
	}
	switch {
	case err != nil:
		data.Error = "The search took too long. Please try again."
	case result.Err != nil:
		data.Error = models.UserMessage(result.Err)
	default:
		data.Results = result.Events
	}
	render(w, "events.tmpl", data)
}

type eventDetailData struct {
	pageContext
	Event *models.PublishedEvent
}

// EventDetailPage renders one published event with its ticket type picker.
func (h *PublicHandler) EventDetailPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	event, err := h.api.GetPublishedEvent(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		renderError(w, r, models.UserMessage(err))
		return
	}
	render(w, "event_detail.tmpl", eventDetailData{
		pageContext: newPageContext(r),
		Event:       event,
	})
}

// viewID identifies the visitor's events view across requests so their
// search stream survives page loads.
func (h *PublicHandler) viewID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(eventsViewCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     eventsViewCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(streamTTL / time.Second),
	})
	return id
}

type errorPageData struct {
	pageContext
	Message string
}

// renderError shows the dismissible error page used for failures that have
// no more specific rendering.
func renderError(w http.ResponseWriter, r *http.Request, message string) {
	render(w, "error.tmpl", errorPageData{
		pageContext: newPageContext(r),
		Message:     message,
	})
}
