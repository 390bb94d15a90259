// Package middleware provides the request-processing chain shared
// by the API routes: bearer-token authentication, directory-record
// resolution, role enforcement, response caching and rate limiting.
package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by the middleware chain.
const (
	// CtxExternalID holds the identity provider's stable user id
	// (the token subject) as a string.
	CtxExternalID = "external_id"
	// CtxEmail holds the email claim when the token carries one.
	CtxEmail = "email"
	// CtxUser holds the resolved *model.User set by ResolveUser.
	CtxUser = "user"
)

// Authenticate returns middleware that validates the bearer token
// issued by the external identity provider and stores its subject
// in the request context. Tokens are HS256-signed with a secret
// shared with the provider; issuing tokens is not this service's
// job. Requests without a valid credential get 401.
func Authenticate(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			sub, _ := claims["sub"].(string)
			if sub == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token has no subject"})
			}
			c.Set(CtxExternalID, sub)
			if email, _ := claims["email"].(string); email != "" {
				c.Set(CtxEmail, email)
			}
			return next(c)
		}
	}
}

// ExternalID returns the authenticated external identity id stored
// by Authenticate, or "" when the request is unauthenticated.
func ExternalID(c echo.Context) string {
	v, _ := c.Get(CtxExternalID).(string)
	return v
}
