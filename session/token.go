package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired reports whether a stored bearer token is a JWT whose exp
// claim has passed. The token is parsed unverified — signature validation
// is the server's job; this only avoids rehydrating a session the server
// is guaranteed to reject. Opaque (non-JWT) tokens and JWTs without an exp
// claim are accepted as-is.
func tokenExpired(raw string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
