package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// BasicAuth guards admin routes with a static username/password pair. When
// passwordHash is set it takes precedence and is verified as a bcrypt hash;
// otherwise password is compared in constant time. With neither configured
// every request is refused.
func BasicAuth(realm, username, password, passwordHash string) func(http.Handler) http.Handler {
	challenge := fmt.Sprintf("Basic realm=%q", realm)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || !constantTimeEquals(user, username) || !validPassword(pass, password, passwordHash) {
				w.Header().Set("WWW-Authenticate", challenge)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func validPassword(given, want, wantHash string) bool {
	if wantHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(wantHash), []byte(given)) == nil
	}
	if want == "" {
		return false
	}
	return constantTimeEquals(given, want)
}

// constantTimeEquals compares two strings in constant time. Hashing first keeps the
// comparison length-independent.
func constantTimeEquals(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}
