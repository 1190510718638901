// Package roles derives the single role category a session falls into from
// the identity provider's role claims.
package roles

import "evantra-web/internal/identity"

// Role is one of the four mutually exclusive user categories.
type Role string

const (
	Anonymous Role = "anonymous"
	Attendee  Role = "attendee"
	Organizer Role = "organizer"
	Staff     Role = "staff"
)

// Claim markers issued by the identity provider.
const (
	organizerMarker = "ROLE_ORGANIZER"
	staffMarker     = "ROLE_STAFF"
)

// Resolve maps a session to exactly one role. Anonymous iff unauthenticated.
// The issuer keeps the organizer and staff claim sets disjoint; if a token
// somehow carries both markers, organizer wins. An authenticated session with
// neither marker is an attendee.
func Resolve(session *identity.Session) Role {
	if !session.IsAuthenticated() {
		return Anonymous
	}

	hasOrganizer := false
	hasStaff := false
	for _, claim := range session.RoleClaims() {
		switch claim {
		case organizerMarker:
			hasOrganizer = true
		case staffMarker:
			hasStaff = true
		}
	}

	switch {
	case hasOrganizer:
		return Organizer
	case hasStaff:
		return Staff
	default:
		return Attendee
	}
}
