package identity

import (
	"context"
	"time"
)

// Token is the credential set issued by the identity provider. The access
// token is the only piece of it that leaves this package, and only for the
// duration of a single backend call.
type Token struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	Expiry       time.Time
}

// ExpiresWithin reports whether the token expires inside the given window.
// Zero expiry means the provider gave no lifetime; treat it as expiring so
// a refresh gets attempted rather than sending a possibly dead token.
func (t *Token) ExpiresWithin(window time.Duration) bool {
	if t.Expiry.IsZero() {
		return true
	}
	return time.Until(t.Expiry) < window
}

// Provider is the port to the external identity provider. Any OIDC
// authorization-code issuer can sit behind it; handlers and middleware only
// ever see this interface.
type Provider interface {
	// AuthCodeURL returns the issuer's sign-in URL for the given opaque
	// state value.
	AuthCodeURL(state string) string

	// Exchange redeems the callback code for a token set.
	Exchange(ctx context.Context, code string) (*Token, error)

	// Refresh silently renews a token set using its refresh token.
	Refresh(ctx context.Context, refreshToken string) (*Token, error)

	// EndSessionURL returns the issuer's sign-out URL. idTokenHint may be
	// empty; postLogoutRedirect is where the issuer sends the browser after.
	EndSessionURL(idTokenHint, postLogoutRedirect string) string
}
