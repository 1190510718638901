package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"evantra-web/internal/identity"
	"evantra-web/internal/middleware"

	"github.com/stretchr/testify/assert"
)

func TestProfilePageShowsSessionClaims(t *testing.T) {
	h := NewDashboardHandler(nil)

	req := httptest.NewRequest("GET", "/dashboard/profile", nil)
	session := &identity.Session{
		Status:  identity.StatusAuthenticated,
		Profile: identity.Profile{DisplayName: "asha", Email: "asha@example.com"},
	}
	req = req.WithContext(middleware.SetSessionContext(req.Context(), session))

	rec := httptest.NewRecorder()
	h.ProfilePage(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "asha")
	assert.Contains(t, rec.Body.String(), "asha@example.com")
	assert.Contains(t, rec.Body.String(), "Not set", "phone is absent from the claims")
}
