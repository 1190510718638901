package identity

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"evantra-web/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	sessionName = "evantra_session"

	// refreshLeeway is how close to expiry a token may get before a silent
	// refresh is attempted on load.
	refreshLeeway = 30 * time.Second
)

var errStateMismatch = errors.New("login state mismatch")

// Manager owns the session cookie and the token lifecycle: it is the only
// place that writes tokens, and every other component reads them through the
// Session it produces per request.
type Manager struct {
	store    sessions.Store
	provider Provider
}

// NewManager creates a session manager backed by the given cookie store and
// identity provider.
func NewManager(store sessions.Store, provider Provider) *Manager {
	return &Manager{store: store, provider: provider}
}

// Load resolves the current session from the request. A token nearing expiry
// is refreshed silently; a refresh the issuer rejects tears the session down
// to anonymous, while a transient failure yields a pending session so the
// guard can hold rendering instead of bouncing the user to login.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) *Session {
	cookie, err := m.store.Get(r, sessionName)
	if err != nil {
		// Corrupt or stale cookie: start over anonymous.
		return Anonymous()
	}

	token := readToken(cookie)
	if token.AccessToken == "" {
		return Anonymous()
	}

	if token.ExpiresWithin(refreshLeeway) {
		if token.RefreshToken == "" {
			m.clear(cookie, w, r)
			return Anonymous()
		}
		refreshed, err := m.provider.Refresh(r.Context(), token.RefreshToken)
		if err != nil {
			if errors.Is(err, models.ErrNetworkFailure) {
				// Issuer unreachable; not a verdict on the session.
				return &Session{Status: StatusPending}
			}
			log.Printf("session refresh rejected: %v", err)
			m.clear(cookie, w, r)
			return Anonymous()
		}
		token = *refreshed
		writeToken(cookie, token)
		if err := cookie.Save(r, w); err != nil {
			log.Printf("failed to persist refreshed session: %v", err)
		}
	}

	profile, err := parseProfile(token.AccessToken)
	if err != nil {
		log.Printf("failed to parse session token: %v", err)
		m.clear(cookie, w, r)
		return Anonymous()
	}

	return &Session{Status: StatusAuthenticated, Token: token, Profile: *profile}
}

// BeginLogin stores the post-login destination plus a fresh state value and
// returns the issuer URL to redirect the browser to.
func (m *Manager) BeginLogin(w http.ResponseWriter, r *http.Request, redirectPath string) (string, error) {
	cookie, _ := m.store.Get(r, sessionName)
	state := uuid.NewString()
	cookie.Values["login_state"] = state
	if redirectPath != "" {
		cookie.Values["redirect_path"] = redirectPath
	}
	if err := cookie.Save(r, w); err != nil {
		return "", fmt.Errorf("failed to save login state: %w", err)
	}
	return m.provider.AuthCodeURL(state), nil
}

// CompleteLogin finishes the redirect flow: verifies state, exchanges the
// code, persists the token set, and returns the originally requested path.
func (m *Manager) CompleteLogin(w http.ResponseWriter, r *http.Request, state, code string) (string, error) {
	cookie, _ := m.store.Get(r, sessionName)

	wantState, _ := cookie.Values["login_state"].(string)
	if wantState == "" || wantState != state {
		return "", errStateMismatch
	}

	token, err := m.provider.Exchange(r.Context(), code)
	if err != nil {
		return "", fmt.Errorf("failed to complete login: %w", err)
	}

	redirectPath, _ := cookie.Values["redirect_path"].(string)
	if redirectPath == "" {
		redirectPath = "/"
	}

	delete(cookie.Values, "login_state")
	delete(cookie.Values, "redirect_path")
	writeToken(cookie, *token)
	if err := cookie.Save(r, w); err != nil {
		return "", fmt.Errorf("failed to persist session: %w", err)
	}
	return redirectPath, nil
}

// Logout tears down the local session and returns the issuer's end-session
// URL for the final redirect.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request, postLogoutRedirect string) string {
	cookie, _ := m.store.Get(r, sessionName)
	idToken, _ := cookie.Values["id_token"].(string)
	m.clear(cookie, w, r)
	return m.provider.EndSessionURL(idToken, postLogoutRedirect)
}

func (m *Manager) clear(cookie *sessions.Session, w http.ResponseWriter, r *http.Request) {
	cookie.Values = map[any]any{}
	cookie.Options.MaxAge = -1
	if err := cookie.Save(r, w); err != nil {
		log.Printf("failed to clear session: %v", err)
	}
}

func readToken(cookie *sessions.Session) Token {
	token := Token{}
	token.AccessToken, _ = cookie.Values["access_token"].(string)
	token.RefreshToken, _ = cookie.Values["refresh_token"].(string)
	token.IDToken, _ = cookie.Values["id_token"].(string)
	if unix, ok := cookie.Values["token_expiry"].(int64); ok && unix > 0 {
		token.Expiry = time.Unix(unix, 0)
	}
	return token
}

func writeToken(cookie *sessions.Session, token Token) {
	cookie.Values["access_token"] = token.AccessToken
	cookie.Values["refresh_token"] = token.RefreshToken
	cookie.Values["id_token"] = token.IDToken
	if !token.Expiry.IsZero() {
		cookie.Values["token_expiry"] = token.Expiry.Unix()
	} else {
		delete(cookie.Values, "token_expiry")
	}
}
