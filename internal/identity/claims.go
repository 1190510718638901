package identity

import (
	"fmt"

	"github.com/golang-jwt/jwt"
)

// Profile is the identity information the UI cares about, extracted from
// the access token's claims.
type Profile struct {
	Subject     string
	DisplayName string
	Email       string
	Phone       string
	RoleClaims  []string
}

// parseProfile extracts the profile from a Keycloak access token. The token
// is parsed without signature verification: it was just handed to us by the
// issuer over TLS, and the backend independently verifies it on every call.
func parseProfile(accessToken string) (*Profile, error) {
	claims := jwt.MapClaims{}
	parser := &jwt.Parser{}
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}

	profile := &Profile{
		Subject:     stringClaim(claims, "sub"),
		DisplayName: stringClaim(claims, "preferred_username"),
		Email:       stringClaim(claims, "email"),
		Phone:       stringClaim(claims, "phone_number"),
		RoleClaims:  realmRoles(claims),
	}
	if profile.DisplayName == "" {
		profile.DisplayName = stringClaim(claims, "name")
	}
	return profile, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

// realmRoles digs the role list out of Keycloak's realm_access claim.
// A missing or malformed claim yields an empty list, never an error.
func realmRoles(claims jwt.MapClaims) []string {
	realmAccess, ok := claims["realm_access"].(map[string]any)
	if !ok {
		return nil
	}
	rawRoles, ok := realmAccess["roles"].([]any)
	if !ok {
		return nil
	}
	roles := make([]string, 0, len(rawRoles))
	for _, r := range rawRoles {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}
