package handlers

import (
	"net/http"

	"evantra-web/internal/api"
	"evantra-web/internal/middleware"
	"evantra-web/internal/models"
	"evantra-web/internal/roles"
)

// StaffHandler handles venue-side ticket validation
type StaffHandler struct {
	api *api.Client
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(apiClient *api.Client) *StaffHandler {
	return &StaffHandler{api: apiClient}
}

type validatePageData struct {
	pageContext
	Result *models.ValidateTicketResponse
	Error  string
}

// ValidatePage renders the validation form.
func (h *StaffHandler) ValidatePage(w http.ResponseWriter, r *http.Request) {
	if !h.requireStaff(w, r) {
		return
	}
	render(w, "validate.tmpl", validatePageData{pageContext: newPageContext(r)})
}

// ValidateTicket submits a ticket ID for validation and shows the verdict.
func (h *StaffHandler) ValidateTicket(w http.ResponseWriter, r *http.Request) {
	if !h.requireStaff(w, r) {
		return
	}
	session := middleware.GetSessionFromContext(r.Context())

	method := models.ValidationMethod(r.FormValue("method"))
	if method != models.ValidationQRScan {
		method = models.ValidationManual
	}
	req := &models.ValidateTicketRequest{
		ID:     r.FormValue("ticket_id"),
		Method: method,
	}

	data := validatePageData{pageContext: newPageContext(r)}
	result, err := h.api.ValidateTicket(r.Context(), session.AccessToken(), req)
	if err != nil {
		data.Error = models.UserMessage(err)
	} else {
		data.Result = result
	}
	render(w, "validate.tmpl", data)
}

func (h *StaffHandler) requireStaff(w http.ResponseWriter, r *http.Request) bool {
	session := middleware.GetSessionFromContext(r.Context())
	if roles.Resolve(session) != roles.Staff {
		http.Error(w, "Access denied", http.StatusForbidden)
		return false
	}
	return true
}
