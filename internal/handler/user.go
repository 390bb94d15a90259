package handler

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/careconnect/booking-api/internal/middleware"
	"github.com/careconnect/booking-api/internal/model"
	"github.com/careconnect/booking-api/internal/repository"
)

// UserHandler serves the user directory endpoints: registration of
// a directory record for an authenticated identity, the current
// user's profile, profile updates and the public doctor listing.
type UserHandler struct {
	Users   repository.UserStore
	Timeout time.Duration
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(users repository.UserStore, timeout time.Duration) *UserHandler {
	if users == nil {
		panic("nil user store passed to NewUserHandler")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &UserHandler{Users: users, Timeout: timeout}
}

// ----- DTOs -----

type createUserReq struct {
	ExternalID      string  `json:"externalId"`
	Email           string  `json:"email"`
	Role            string  `json:"role"` // patient | doctor
	DisplayName     *string `json:"displayName"`
	Specialty       *string `json:"specialty"`
	PhoneNumber     *string `json:"phoneNumber"`
	ProfileComplete bool    `json:"profileComplete"`
}

type updateUserReq struct {
	DisplayName     *string `json:"displayName"`
	Specialty       *string `json:"specialty"`
	PhoneNumber     *string `json:"phoneNumber"`
	ProfileComplete *bool   `json:"profileComplete"`
	// present only to reject attempts at redefining identity fields
	ID         *uint64 `json:"id"`
	ExternalID *string `json:"externalId"`
	Email      *string `json:"email"`
	Role       *string `json:"role"`
}

type userResp struct {
	ID              uint64  `json:"id"`
	ExternalID      string  `json:"externalId"`
	Email           string  `json:"email"`
	DisplayName     *string `json:"displayName"`
	Role            string  `json:"role"`
	Specialty       *string `json:"specialty"`
	PhoneNumber     *string `json:"phoneNumber"`
	ProfileComplete bool    `json:"profileComplete"`
}

func toUserResp(u model.User) userResp {
	return userResp{
		ID:              u.ID,
		ExternalID:      u.ExternalID,
		Email:           u.Email,
		DisplayName:     u.DisplayName,
		Role:            u.Role,
		Specialty:       u.Specialty,
		PhoneNumber:     u.PhoneNumber,
		ProfileComplete: u.ProfileComplete,
	}
}

// Create handles POST /api/users. The caller must present a valid
// identity credential; the external id in the body has to match
// the token subject so nobody can register a record for someone
// else's identity. Duplicate registrations are rejected with 409.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.ExternalID = strings.TrimSpace(req.ExternalID)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.ExternalID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "externalId required"})
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}
	if !model.ValidRole(req.Role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be patient or doctor"})
	}
	if req.ExternalID != middleware.ExternalID(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "externalId does not match credential"})
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	u, err := h.Users.CreateUser(ctx, repository.NewUser{
		ExternalID:      req.ExternalID,
		Email:           req.Email,
		Role:            req.Role,
		DisplayName:     req.DisplayName,
		Specialty:       req.Specialty,
		PhoneNumber:     req.PhoneNumber,
		ProfileComplete: req.ProfileComplete,
	})
	if err != nil {
		if errors.Is(err, repository.ErrExternalIDExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "user already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return c.JSON(http.StatusCreated, toUserResp(u))
}

// Me handles GET /api/users/me: the directory record bound to the
// authenticated identity. ResolveUser middleware has already done
// the lookup (and produced 401/404 when it failed).
func (h *UserHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, toUserResp(*u))
}

// UpdateMe handles PATCH /api/users/me. Only the optional profile
// fields can change; a body naming id, externalId, email or role
// is rejected outright rather than silently ignored.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ID != nil || req.ExternalID != nil || req.Email != nil || req.Role != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id, externalId, email and role cannot be changed"})
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	updated, err := h.Users.UpdateUser(ctx, u.ID, model.UserUpdate{
		DisplayName:     req.DisplayName,
		Specialty:       req.Specialty,
		PhoneNumber:     req.PhoneNumber,
		ProfileComplete: req.ProfileComplete,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
	}
	return c.JSON(http.StatusOK, toUserResp(updated))
}

// ListDoctors handles GET /api/users/doctors, the public directory
// patients search when booking. The route sits behind the response
// cache; a staleness window of a minute is fine here.
func (h *UserHandler) ListDoctors(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	doctors, err := h.Users.ListDoctors(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list doctors failed"})
	}
	out := make([]userResp, 0, len(doctors))
	for _, d := range doctors {
		out = append(out, toUserResp(d))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) ctx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), h.Timeout)
}
