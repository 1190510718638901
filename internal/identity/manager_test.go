package identity

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"evantra-web/internal/models"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fake provider for testing
type fakeProvider struct {
	exchangeToken *Token
	exchangeErr   error
	refreshToken  *Token
	refreshErr    error
	refreshCalls  int
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://issuer.example.com/auth?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(ctx context.Context, code string) (*Token, error) {
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return p.exchangeToken, nil
}

func (p *fakeProvider) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	p.refreshCalls++
	if p.refreshErr != nil {
		return nil, p.refreshErr
	}
	return p.refreshToken, nil
}

func (p *fakeProvider) EndSessionURL(idTokenHint, postLogoutRedirect string) string {
	return "https://issuer.example.com/logout?post_logout_redirect_uri=" + url.QueryEscape(postLogoutRedirect)
}

func testToken(t *testing.T, expiry time.Time) *Token {
	t.Helper()
	return &Token{
		AccessToken: makeToken(t, map[string]any{
			"sub":                "user-123",
			"preferred_username": "asha",
			"realm_access":       map[string]any{"roles": []any{"ROLE_ORGANIZER"}},
		}),
		RefreshToken: "refresh-1",
		IDToken:      "id-1",
		Expiry:       expiry,
	}
}

func newTestManager(provider Provider) *Manager {
	return NewManager(sessions.NewCookieStore([]byte("test-secret")), provider)
}

// carryCookies copies Set-Cookie headers from a response onto a new request,
// like a browser following a redirect.
func carryCookies(rec *httptest.ResponseRecorder, req *http.Request) {
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
}

func TestLoadWithoutCookieIsAnonymous(t *testing.T) {
	manager := newTestManager(&fakeProvider{})
	req := httptest.NewRequest("GET", "/", nil)
	session := manager.Load(httptest.NewRecorder(), req)
	assert.Equal(t, StatusAnonymous, session.Status)
	assert.Empty(t, session.AccessToken())
}

func TestLoginRoundTrip(t *testing.T) {
	provider := &fakeProvider{
		exchangeToken: testToken(t, time.Now().Add(time.Hour)),
	}
	manager := newTestManager(provider)

	// Begin: the state lands in the cookie, the issuer URL carries it.
	beginReq := httptest.NewRequest("GET", "/login/start?redirect=/dashboard/tickets", nil)
	beginRec := httptest.NewRecorder()
	authURL, err := manager.BeginLogin(beginRec, beginReq, "/dashboard/tickets")
	require.NoError(t, err)

	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)

	// Callback with the same state completes and restores the destination.
	cbReq := httptest.NewRequest("GET", "/callback?state="+state+"&code=code-1", nil)
	carryCookies(beginRec, cbReq)
	cbRec := httptest.NewRecorder()
	redirectPath, err := manager.CompleteLogin(cbRec, cbReq, state, "code-1")
	require.NoError(t, err)
	assert.Equal(t, "/dashboard/tickets", redirectPath)

	// The next load sees an authenticated session with the parsed profile.
	loadReq := httptest.NewRequest("GET", "/dashboard/tickets", nil)
	carryCookies(cbRec, loadReq)
	session := manager.Load(httptest.NewRecorder(), loadReq)
	assert.Equal(t, StatusAuthenticated, session.Status)
	assert.Equal(t, "asha", session.Profile.DisplayName)
	assert.Equal(t, []string{"ROLE_ORGANIZER"}, session.RoleClaims())
}

func TestCompleteLoginRejectsStateMismatch(t *testing.T) {
	provider := &fakeProvider{exchangeToken: testToken(t, time.Now().Add(time.Hour))}
	manager := newTestManager(provider)

	beginReq := httptest.NewRequest("GET", "/login/start", nil)
	beginRec := httptest.NewRecorder()
	_, err := manager.BeginLogin(beginRec, beginReq, "")
	require.NoError(t, err)

	cbReq := httptest.NewRequest("GET", "/callback", nil)
	carryCookies(beginRec, cbReq)
	_, err = manager.CompleteLogin(httptest.NewRecorder(), cbReq, "forged-state", "code-1")
	assert.Error(t, err)
}

func TestCompleteLoginDefaultsRedirectToHome(t *testing.T) {
	provider := &fakeProvider{exchangeToken: testToken(t, time.Now().Add(time.Hour))}
	manager := newTestManager(provider)

	beginReq := httptest.NewRequest("GET", "/login/start", nil)
	beginRec := httptest.NewRecorder()
	authURL, err := manager.BeginLogin(beginRec, beginReq, "")
	require.NoError(t, err)
	state, _ := url.Parse(authURL)

	cbReq := httptest.NewRequest("GET", "/callback", nil)
	carryCookies(beginRec, cbReq)
	redirectPath, err := manager.CompleteLogin(httptest.NewRecorder(), cbReq, state.Query().Get("state"), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "/", redirectPath)
}

// authenticate returns a request carrying a session cookie with the token.
func authenticate(t *testing.T, manager *Manager, provider *fakeProvider, token *Token) *http.Request {
	t.Helper()
	provider.exchangeToken = token

	beginReq := httptest.NewRequest("GET", "/login/start", nil)
	beginRec := httptest.NewRecorder()
	authURL, err := manager.BeginLogin(beginRec, beginReq, "")
	require.NoError(t, err)
	parsed, _ := url.Parse(authURL)

	cbReq := httptest.NewRequest("GET", "/callback", nil)
	carryCookies(beginRec, cbReq)
	cbRec := httptest.NewRecorder()
	_, err = manager.CompleteLogin(cbRec, cbReq, parsed.Query().Get("state"), "code-1")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	carryCookies(cbRec, req)
	return req
}

func TestLoadRefreshesExpiringToken(t *testing.T) {
	provider := &fakeProvider{
		refreshToken: testToken(t, time.Now().Add(time.Hour)),
	}
	manager := newTestManager(provider)

	// Token already inside the refresh leeway.
	req := authenticate(t, manager, provider, testToken(t, time.Now().Add(5*time.Second)))

	session := manager.Load(httptest.NewRecorder(), req)
	assert.Equal(t, StatusAuthenticated, session.Status)
	assert.Equal(t, 1, provider.refreshCalls)
}

func TestLoadPendingWhenIssuerUnreachable(t *testing.T) {
	provider := &fakeProvider{
		refreshErr: fmt.Errorf("%w: connection refused", models.ErrNetworkFailure),
	}
	manager := newTestManager(provider)
	req := authenticate(t, manager, provider, testToken(t, time.Now().Add(5*time.Second)))

	// Unreachable issuer is not a verdict on the session.
	session := manager.Load(httptest.NewRecorder(), req)
	assert.Equal(t, StatusPending, session.Status)
}

func TestLoadAnonymousWhenRefreshRejected(t *testing.T) {
	provider := &fakeProvider{
		refreshErr: models.NewAPIError(401, "session not active"),
	}
	manager := newTestManager(provider)
	req := authenticate(t, manager, provider, testToken(t, time.Now().Add(5*time.Second)))

	rec := httptest.NewRecorder()
	session := manager.Load(rec, req)
	assert.Equal(t, StatusAnonymous, session.Status)

	// The session cookie is torn down.
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestLoadSkipsRefreshForFreshToken(t *testing.T) {
	provider := &fakeProvider{}
	manager := newTestManager(provider)
	req := authenticate(t, manager, provider, testToken(t, time.Now().Add(time.Hour)))

	session := manager.Load(httptest.NewRecorder(), req)
	assert.Equal(t, StatusAuthenticated, session.Status)
	assert.Zero(t, provider.refreshCalls)
}

func TestLogoutBuildsEndSessionURL(t *testing.T) {
	provider := &fakeProvider{}
	manager := newTestManager(provider)
	req := authenticate(t, manager, provider, testToken(t, time.Now().Add(time.Hour)))

	rec := httptest.NewRecorder()
	endSessionURL := manager.Logout(rec, req, "http://localhost:3000/")
	assert.Contains(t, endSessionURL, "issuer.example.com/logout")
	assert.Contains(t, endSessionURL, url.QueryEscape("http://localhost:3000/"))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
