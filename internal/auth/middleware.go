package auth

import (
	"net/http"

	log "github.com/sirupsen/logrus"
)

// RequireLogin redirects clients for which isLoggedIn reports false to
// loginPath.
func RequireLogin(isLoggedIn func(*http.Request) bool, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isLoggedIn(r) {
				log.Debugf("auth: anonymous request to %s, redirecting to %s", r.URL.Path, loginPath)
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
