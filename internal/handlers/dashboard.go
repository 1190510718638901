package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"

	"evantra-web/internal/api"
	"evantra-web/internal/middleware"
	"evantra-web/internal/models"
	"evantra-web/internal/ticketview"

	"github.com/go-chi/chi/v5"
)

// DashboardHandler handles the signed-in user's dashboard: the ticket list
// and the ticket detail view with its scannable credential
type DashboardHandler struct {
	api *api.Client
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(apiClient *api.Client) *DashboardHandler {
	return &DashboardHandler{api: apiClient}
}

type dashboardPageData struct {
	pageContext
}

// DashboardPage renders the role-appropriate dashboard home.
func (h *DashboardHandler) DashboardPage(w http.ResponseWriter, r *http.Request) {
	render(w, "dashboard.tmpl", dashboardPageData{pageContext: newPageContext(r)})
}

type profilePageData struct {
	pageContext
}

// ProfilePage renders the signed-in user's identity as the issuer reported
// it. Everything shown comes from the session claims; nothing is fetched.
func (h *DashboardHandler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	render(w, "profile.tmpl", profilePageData{pageContext: newPageContext(r)})
}

type ticketsPageData struct {
	pageContext
	Page    int
	Tickets *models.Page[models.TicketSummary]
	Error   string
}

// TicketsPage renders one page of the attendee's tickets.
func (h *DashboardHandler) TicketsPage(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	page := 0
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p >= 0 {
			page = p
		}
	}

	data := ticketsPageData{pageContext: newPageContext(r), Page: page}
	tickets, err := h.api.ListTickets(r.Context(), session.AccessToken(), page)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			http.Redirect(w, r, "/login?redirect="+r.URL.Path, http.StatusSeeOther)
			return
		}
		data.Error = models.UserMessage(err)
	} else {
		data.Tickets = tickets
	}
	render(w, "tickets.tmpl", data)
}

type ticketPageData struct {
	pageContext
	Ticket        *models.TicketDetails
	DetailsError  string
	CredentialURI string
	QRError       string
}

// TicketPage renders one ticket with its credential image. Details and
// credential load independently: a failed QR fetch still shows the details,
// and vice versa. The credential handle lives exactly as long as this
// request.
func (h *DashboardHandler) TicketPage(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	viewer := ticketview.NewViewer(h.api)
	defer viewer.Close()

	view := viewer.Load(r.Context(), session.AccessToken(), id)
	if view.DetailsErr != nil && errors.Is(view.DetailsErr, models.ErrUnauthorized) {
		http.Redirect(w, r, "/login?redirect="+r.URL.Path, http.StatusSeeOther)
		return
	}
	if view.DetailsErr != nil && errors.Is(view.DetailsErr, models.ErrNotFound) {
		http.NotFound(w, r)
		return
	}

	data := ticketPageData{pageContext: newPageContext(r)}
	if view.DetailsErr != nil {
		data.DetailsError = models.UserMessage(view.DetailsErr)
	} else {
		data.Ticket = view.Details
	}
	if view.CredentialErr != nil {
		data.QRError = "Unable to get ticket QR code"
	} else if view.Credential != nil {
		contentType := view.Credential.ContentType()
		if contentType == "" {
			contentType = "image/png"
		}
		data.CredentialURI = "data:" + contentType + ";base64," +
			base64.StdEncoding.EncodeToString(view.Credential.Bytes())
	}
	render(w, "ticket.tmpl", data)
}
