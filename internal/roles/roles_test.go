package roles

import (
	"testing"

	"evantra-web/internal/identity"

	"github.com/stretchr/testify/assert"
)

func authenticated(claims ...string) *identity.Session {
	return &identity.Session{
		Status:  identity.StatusAuthenticated,
		Profile: identity.Profile{RoleClaims: claims},
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		session *identity.Session
		want    Role
	}{
		{"nil session", nil, Anonymous},
		{"anonymous", identity.Anonymous(), Anonymous},
		{"pending", &identity.Session{Status: identity.StatusPending}, Anonymous},
		{"no role claims", authenticated(), Attendee},
		{"unrelated claims", authenticated("offline_access", "uma_authorization"), Attendee},
		{"organizer", authenticated("ROLE_ORGANIZER"), Organizer},
		{"staff", authenticated("ROLE_STAFF"), Staff},
		{"organizer among others", authenticated("offline_access", "ROLE_ORGANIZER"), Organizer},
		{"both markers prefer organizer", authenticated("ROLE_STAFF", "ROLE_ORGANIZER"), Organizer},
		{"attendee marker is not special", authenticated("ROLE_ATTENDEE"), Attendee},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.session))
		})
	}
}

func TestAnonymousRoleIgnoresClaims(t *testing.T) {
	// Role claims on a non-authenticated session must not leak through.
	session := &identity.Session{
		Status:  identity.StatusPending,
		Profile: identity.Profile{RoleClaims: []string{"ROLE_ORGANIZER"}},
	}
	assert.Equal(t, Anonymous, Resolve(session))
}
