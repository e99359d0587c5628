package credstore

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the diagnostic view of the access token's JWT claims.
// The token is decoded without signature verification - claims are used for
// display and cross-checking the stored expiry, never for authorization.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
	HasExpiry bool
}

// InspectAccessToken decodes the record's access token as an unverified JWT.
// Returns (zero, false) when the token is absent or not JWT-shaped; opaque
// access tokens are a valid host format, not an error.
func InspectAccessToken(rec *Record) (TokenClaims, bool) {
	if rec == nil || rec.AccessToken == "" {
		return TokenClaims{}, false
	}

	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(rec.AccessToken, jwt.MapClaims{})
	if err != nil {
		return TokenClaims{}, false
	}

	var claims TokenClaims
	if sub, err := token.Claims.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if exp, err := token.Claims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time.UTC()
		claims.HasExpiry = true
	}
	return claims, true
}
