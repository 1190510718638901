package middleware

import (
	"net/http"
	"net/url"

	"evantra-web/internal/identity"
)

// RequireAuth gates protected routes. While session resolution is pending
// (issuer being consulted) it renders a neutral retrying page rather than
// redirecting, since a premature redirect would bounce a signed-in user to
// login. Unauthenticated requests are redirected to login with the intended
// destination preserved. Role checks belong to the pages, not the guard.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := GetSessionFromContext(r.Context())

		switch session.Status {
		case identity.StatusAuthenticated:
			next.ServeHTTP(w, r)
		case identity.StatusPending:
			renderPending(w)
		default:
			target := r.URL.Path
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, "/login?redirect="+url.QueryEscape(target), http.StatusSeeOther)
		}
	})
}

// renderPending shows a neutral loading page that retries shortly. Used when
// the silent token refresh could not reach the issuer.
func renderPending(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Retry-After", "2")
	w.WriteHeader(http.StatusServiceUnavailable)
	w.Write([]byte(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><meta http-equiv="refresh" content="2"><title>Loading</title></head>
<body><p>Loading...</p></body>
</html>`))
}
