package handlers

import (
	"html/template"
	"log"
	"net/http"
	"time"

	"evantra-web/internal/identity"
	"evantra-web/internal/middleware"
	"evantra-web/internal/roles"

	webtemplates "evantra-web/web/templates"
)

var pageTemplates = template.Must(
	template.New("pages").Funcs(template.FuncMap{
		"formatTime":      formatTime,
		"formatInputTime": formatInputTime,
		"add":             func(a, b int) int { return a + b },
		"sub":             func(a, b int) int { return a - b },
	}).ParseFS(webtemplates.FS, "*.tmpl"),
)

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("Jan 2, 2006 3:04 PM")
}

// formatInputTime renders a time for an HTML datetime-local input.
func formatInputTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02T15:04")
}

// pageContext is the data every template receives alongside its own fields.
type pageContext struct {
	Session *identity.Session
	Role    roles.Role
}

// Role predicates keep the nav template's four variants readable.

func (p pageContext) IsAnonymous() bool { return p.Role == roles.Anonymous }
func (p pageContext) IsAttendee() bool  { return p.Role == roles.Attendee }
func (p pageContext) IsOrganizer() bool { return p.Role == roles.Organizer }
func (p pageContext) IsStaff() bool     { return p.Role == roles.Staff }

func newPageContext(r *http.Request) pageContext {
	session := middleware.GetSessionFromContext(r.Context())
	return pageContext{
		Session: session,
		Role:    roles.Resolve(session),
	}
}

// render writes the named page template. Render failures after headers are
// sent can only be logged.
func render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("failed to render %s: %v", name, err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}
