package handlers

import (
	"log"
	"net/http"
	"strings"

	"evantra-web/internal/identity"
	"evantra-web/internal/middleware"
)

// AuthHandler handles sign-in, the provider callback, and sign-out
type AuthHandler struct {
	manager *identity.Manager
	baseURL string
}

// NewAuthHandler creates a new auth handler. baseURL is where the issuer
// sends the browser after sign-out.
func NewAuthHandler(manager *identity.Manager, baseURL string) *AuthHandler {
	return &AuthHandler{manager: manager, baseURL: baseURL}
}

type loginPageData struct {
	pageContext
	Message  string
	Redirect string
}

// LoginPage renders the login screen, carrying an optional explanatory
// message (e.g. "log in as an attendee to purchase tickets").
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session.IsAuthenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	render(w, "login.tmpl", loginPageData{
		pageContext: newPageContext(r),
		Message:     r.URL.Query().Get("message"),
		Redirect:    sanitizeRedirect(r.URL.Query().Get("redirect")),
	})
}

// BeginLogin starts the redirect flow to the identity provider. The
// intended destination rides along so the callback can restore it.
func (h *AuthHandler) BeginLogin(w http.ResponseWriter, r *http.Request) {
	redirectPath := sanitizeRedirect(r.URL.Query().Get("redirect"))
	authURL, err := h.manager.BeginLogin(w, r, redirectPath)
	if err != nil {
		log.Printf("failed to begin login: %v", err)
		http.Error(w, "Failed to start sign-in", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, authURL, http.StatusSeeOther)
}

// Callback completes the redirect flow: the issuer sends the browser here
// with a state value and authorization code.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if errParam := r.URL.Query().Get("error"); errParam != "" || code == "" {
		log.Printf("login callback error: %s", errParam)
		http.Redirect(w, r, "/login?message=Sign-in+failed.+Please+try+again.", http.StatusSeeOther)
		return
	}

	redirectPath, err := h.manager.CompleteLogin(w, r, state, code)
	if err != nil {
		log.Printf("failed to complete login: %v", err)
		http.Redirect(w, r, "/login?message=Sign-in+failed.+Please+try+again.", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, redirectPath, http.StatusSeeOther)
}

// Logout tears down the session and hands the browser to the issuer's
// end-session endpoint.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	endSessionURL := h.manager.Logout(w, r, h.baseURL+"/")
	http.Redirect(w, r, endSessionURL, http.StatusSeeOther)
}

// sanitizeRedirect keeps post-login redirects on this site. Anything that
// isn't a local absolute path falls back to the home page.
func sanitizeRedirect(path string) string {
	if path == "" || !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return "/"
	}
	return path
}
