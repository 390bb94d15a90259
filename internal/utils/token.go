// Package utils holds small helpers shared by the server and the
// development tooling.
package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// NewIdentityToken signs an HS256 JWT shaped like the credential
// the external identity provider issues: subject = external user
// id, plus an email claim. Production tokens come from the
// provider; this helper exists for local development and tests,
// where running a real provider would be pointless.
func NewIdentityToken(secret, externalID, email string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   externalID,
		"email": email,
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}
