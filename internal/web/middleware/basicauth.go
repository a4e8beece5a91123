package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
)

// BasicAuth returns middleware that protects the admin API with HTTP basic
// auth. When no credentials are configured the admin API is disabled rather
// than left open.
func BasicAuth(user, password string) func(http.Handler) http.Handler {
	configured := user != "" && password != ""
	userHash := sha256.Sum256([]byte(user))
	passwordHash := sha256.Sum256([]byte(password))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !configured {
				http.Error(w, "admin interface is not configured", http.StatusServiceUnavailable)
				return
			}

			u, p, ok := r.BasicAuth()
			if !ok {
				unauthorized(w)
				return
			}

			uHash := sha256.Sum256([]byte(u))
			pHash := sha256.Sum256([]byte(p))
			userMatch := subtle.ConstantTimeCompare(uHash[:], userHash[:]) == 1
			passwordMatch := subtle.ConstantTimeCompare(pHash[:], passwordHash[:]) == 1
			if !userMatch || !passwordMatch {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}
