package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"evantra-web/internal/api"
	"evantra-web/internal/middleware"
	"evantra-web/internal/models"
	"evantra-web/internal/roles"

	"github.com/go-chi/chi/v5"
)

// OrganizerHandler handles the organizer's event management and analytics
// pages. Role enforcement lives here, inside the pages, not in the route
// guard: the backend rejects anything forged past the UI check anyway.
type OrganizerHandler struct {
	api *api.Client
}

// NewOrganizerHandler creates a new organizer handler
func NewOrganizerHandler(apiClient *api.Client) *OrganizerHandler {
	return &OrganizerHandler{api: apiClient}
}

type organizerEventsData struct {
	pageContext
	Page   int
	Events *models.Page[models.Event]
	Error  string
}

// EventsPage lists the organizer's own events, drafts included.
func (h *OrganizerHandler) EventsPage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.requireOrganizer(w, r)
	if !ok {
		return
	}

	page := 0
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p >= 0 {
			page = p
		}
	}

	data := organizerEventsData{pageContext: newPageContext(r), Page: page}
	events, err := h.api.ListEvents(r.Context(), session.AccessToken(), page)
	if err != nil {
		data.Error = models.UserMessage(err)
	} else {
		data.Events = events
	}
	render(w, "organizer_events.tmpl", data)
}

type eventFormData struct {
	pageContext
	Event *models.Event
	Error string
}

// NewEventPage renders the blank event creation form.
func (h *OrganizerHandler) NewEventPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireOrganizer(w, r); !ok {
		return
	}
	render(w, "event_form.tmpl", eventFormData{pageContext: newPageContext(r)})
}

// CreateEvent submits a new event to the backend.
func (h *OrganizerHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	session, ok := h.requireOrganizer(w, r)
	if !ok {
		return
	}

	image, err := formImage(r)
	if err != nil {
		render(w, "event_form.tmpl", eventFormData{
			pageContext: newPageContext(r),
			Error:       "Could not read the uploaded image",
		})
		return
	}

	req := &models.CreateEventRequest{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Venue:       r.FormValue("venue"),
		Status:      models.EventStatus(r.FormValue("status")),
		Start:       parseFormTime(r.FormValue("start")),
		End:         parseFormTime(r.FormValue("end")),
		SalesStart:  parseFormTime(r.FormValue("sales_start")),
		SalesEnd:    parseFormTime(r.FormValue("sales_end")),
		TicketTypes: parseTicketTypes(r),
	}
	if req.Status == "" {
		req.Status = models.EventDraft
	}

	if err := h.api.CreateEvent(r.Context(), session.AccessToken(), req, image); err != nil {
		render(w, "event_form.tmpl", eventFormData{
			pageContext: newPageContext(r),
			Error:       models.UserMessage(err),
		})
		return
	}
	http.Redirect(w, r, "/dashboard/events", http.StatusSeeOther)
}

// EditEventPage renders the update form pre-filled from the backend.
func (h *OrganizerHandler) EditEventPage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.requireOrganizer(w, r)
	if !ok {
		return
	}

	event, err := h.api.GetEvent(r.Context(), session.AccessToken(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		renderError(w, r, models.UserMessage(err))
		return
	}
	render(w, "event_form.tmpl", eventFormData{
		pageContext: newPageContext(r),
		Event:       event,
	})
}

// UpdateEvent submits changes to an existing event.
func (h *OrganizerHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	session, ok := h.requireOrganizer(w, r)
	if !ok {
		return
	}

	image, err := formImage(r)
	if err != nil {
		render(w, "event_form.tmpl", eventFormData{
			pageContext: newPageContext(r),
			Error:       "Could not read the uploaded image",
		})
		return
	}

	id := chi.URLParam(r, "id")
	req := &models.UpdateEventRequest{
		ID:          id,
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Venue:       r.FormValue("venue"),
		Status:      models.EventStatus(r.FormValue("status")),
		Start:       parseFormTime(r.FormValue("start")),
		End:         parseFormTime(r.FormValue("end")),
		SalesStart:  parseFormTime(r.FormValue("sales_start")),
		SalesEnd:    parseFormTime(r.FormValue("sales_end")),
		TicketTypes: parseTicketTypes(r),
	}

	if err := h.api.UpdateEvent(r.Context(), session.AccessToken(), id, req, image); err != nil {
		render(w, "event_form.tmpl", eventFormData{
			pageContext: newPageContext(r),
			Error:       models.UserMessage(err),
		})
		return
	}
	http.Redirect(w, r, "/dashboard/events", http.StatusSeeOther)
}

// DeleteEvent removes one of the organizer's events.
func (h *OrganizerHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	session, ok := h.requireOrganizer(w, r)
	if !ok {
		return
	}

	if err := h.api.DeleteEvent(r.Context(), session.AccessToken(), chi.URLParam(r, "id")); err != nil {
		renderError(w, r, models.UserMessage(err))
		return
	}
	http.Redirect(w, r, "/dashboard/events", http.StatusSeeOther)
}

type analyticsPageData struct {
	pageContext
	Analytics *models.OrganizerAnalytics
	Error     string
}

// AnalyticsPage renders the organizer's sales analytics.
func (h *OrganizerHandler) AnalyticsPage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.requireOrganizer(w, r)
	if !ok {
		return
	}

	data := analyticsPageData{pageContext: newPageContext(r)}
	analytics, err := h.api.GetOrganizerAnalytics(r.Context(), session.AccessToken())
	if err != nil {
		data.Error = models.UserMessage(err)
	} else {
		data.Analytics = analytics
	}
	render(w, "analytics.tmpl", data)
}

// requireOrganizer enforces the organizer role inside the page.
func (h *OrganizerHandler) requireOrganizer(w http.ResponseWriter, r *http.Request) (session sessionAccessor, ok bool) {
	s := middleware.GetSessionFromContext(r.Context())
	if roles.Resolve(s) != roles.Organizer {
		http.Error(w, "Access denied", http.StatusForbidden)
		return nil, false
	}
	return s, true
}

// sessionAccessor is the slice of the session the organizer pages use.
type sessionAccessor interface {
	AccessToken() string
}

// maxImageUpload bounds how much of an event image is buffered in memory.
const maxImageUpload = 10 << 20

// formImage reads the optional event image from the multipart form. A post
// without a file selected, or a plain urlencoded post, yields nil.
func formImage(r *http.Request) (*api.Upload, error) {
	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		// Browsers submit an empty part when no file was chosen.
		return nil, nil
	}
	return &api.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// parseFormTime reads an HTML datetime-local input, nil when empty or
// malformed.
func parseFormTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02T15:04", value)
	if err != nil {
		return nil
	}
	return &t
}

// parseTicketTypes reads the repeated ticket type rows of the event form.
func parseTicketTypes(r *http.Request) []models.TicketType {
	r.ParseForm()
	names := r.Form["tt_name"]
	prices := r.Form["tt_price"]
	gsts := r.Form["tt_gst"]
	discounts := r.Form["tt_discount"]
	totals := r.Form["tt_total"]
	descriptions := r.Form["tt_description"]

	var ticketTypes []models.TicketType
	for i, name := range names {
		if name == "" {
			continue
		}
		tt := models.TicketType{Name: name}
		if i < len(prices) {
			tt.Price, _ = strconv.ParseFloat(prices[i], 64)
		}
		if i < len(gsts) {
			tt.GSTRate, _ = strconv.ParseFloat(gsts[i], 64)
		}
		if i < len(discounts) {
			tt.DiscountRate, _ = strconv.ParseFloat(discounts[i], 64)
		}
		if i < len(totals) {
			tt.TotalAvailable, _ = strconv.Atoi(totals[i])
		}
		if i < len(descriptions) {
			tt.Description = descriptions[i]
		}
		ticketTypes = append(ticketTypes, tt)
	}
	return ticketTypes
}
