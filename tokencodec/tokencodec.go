// tokencodec/tokencodec.go
/* The tokencodec package decodes the payload claims of JWT-shaped bearer tokens without
verifying the signature. Tokens handled here were already issued by a trusted authorization
server; the client only needs the claims (notably expiry) to decide whether a cached token
is still usable. Any decode failure is folded into "expired" by IsExpired so a malformed
token can never be treated as valid. */
package tokencodec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken indicates a token string that is not structurally a valid bearer token:
// wrong segment count, invalid base64url, or a non-JSON payload.
var ErrMalformedToken = errors.New("malformed bearer token")

// Claims is the decoded payload of a bearer token, keyed by claim name.
// Values carry the JSON types produced by decoding: string, bool, float64,
// []interface{} and map[string]interface{}.
type Claims map[string]interface{}

// Decode parses the payload segment of the provided token string and returns its claims.
// The signature is NOT verified. Returns an error wrapping ErrMalformedToken when the
// string is not structurally a valid token.
func Decode(tokenString string) (Claims, error) {
	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, mapClaims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return Claims(mapClaims), nil
}

// IsExpired reports whether the token should be treated as expired. It returns true when
// the token fails to decode, when the expiry claim is missing, or when the expiry is at or
// before the current time. It returns false only when the token decodes cleanly and its
// expiry is strictly in the future.
func IsExpired(tokenString string) bool {
	return isExpiredAt(tokenString, time.Now())
}

// isExpiredAt is the clock-injected form of IsExpired.
func isExpiredAt(tokenString string, now time.Time) bool {
	claims, err := Decode(tokenString)
	if err != nil {
		return true
	}
	exp, ok := ExpiresAt(claims)
	if !ok {
		return true
	}
	return !exp.After(now)
}

// ExpiresAt returns the expiry claim as a time.Time. The second return value is false when
// the claim is absent or not a numeric date.
func ExpiresAt(c Claims) (time.Time, bool) {
	exp, err := jwt.MapClaims(c).GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
