package identity

// Status is the resolution state of the browser's session. Pending exists so
// the route guard can hold rendering instead of issuing a false redirect
// while the provider is still being consulted.
type Status int

const (
	StatusAnonymous Status = iota
	StatusAuthenticated
	StatusPending
)

// Session is the per-request view of the signed-in identity. It is built
// fresh on every request from the session cookie and is immutable once
// handed to handlers; the token may change between requests (silent refresh)
// and callers must not cache it beyond one backend call.
type Session struct {
	Status  Status
	Token   Token
	Profile Profile
}

// Anonymous is the session of an unauthenticated visitor.
func Anonymous() *Session {
	return &Session{Status: StatusAnonymous}
}

// IsAuthenticated reports whether the session carries a signed-in identity.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.Status == StatusAuthenticated
}

// AccessToken returns the bearer token for backend calls, or "" when the
// session is not authenticated.
func (s *Session) AccessToken() string {
	if !s.IsAuthenticated() {
		return ""
	}
	return s.Token.AccessToken
}

// RoleClaims returns the role markers from the token, empty when anonymous.
func (s *Session) RoleClaims() []string {
	if !s.IsAuthenticated() {
		return nil
	}
	return s.Profile.RoleClaims
}
