package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/careconnect/booking-api/internal/model"
	"github.com/careconnect/booking-api/internal/repository"
)

// ResolveUser returns middleware that loads the directory record
// for the authenticated external id and stores it in the context.
// It must run after Authenticate. A credential without a matching
// directory record yields 404: the account exists at the identity
// provider but was never registered here.
func ResolveUser(users repository.UserStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			extID := ExternalID(c)
			if extID == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			u, err := users.UserByExternalID(c.Request().Context(), extID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
			}
			c.Set(CtxUser, &u)
			return next(c)
		}
	}
}

// CurrentUser returns the directory record stored by ResolveUser.
// The boolean is false when no record is present in the context.
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(CtxUser).(*model.User)
	return u, ok && u != nil
}
