package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/careconnect/booking-api/internal/middleware"
	"github.com/careconnect/booking-api/internal/model"
	"github.com/careconnect/booking-api/internal/repository"
)

// AvailabilityHandler serves a doctor's weekly recurring slots.
type AvailabilityHandler struct {
	Store   repository.AvailabilityStore
	Timeout time.Duration
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(store repository.AvailabilityStore, timeout time.Duration) *AvailabilityHandler {
	if store == nil {
		panic("nil availability store passed to NewAvailabilityHandler")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AvailabilityHandler{Store: store, Timeout: timeout}
}

type createAvailabilityReq struct {
	DayOfWeek int    `json:"dayOfWeek"` // 0 (Sunday) - 6
	StartTime string `json:"startTime"` // HH:MM
	EndTime   string `json:"endTime"`   // HH:MM
}

type availabilityResp struct {
	ID        uint64 `json:"id"`
	DoctorID  uint64 `json:"doctorId"`
	DayOfWeek int    `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func toAvailabilityResp(av model.Availability) availabilityResp {
	return availabilityResp{
		ID:        av.ID,
		DoctorID:  av.DoctorID,
		DayOfWeek: av.DayOfWeek,
		StartTime: av.StartTime,
		EndTime:   av.EndTime,
	}
}

// Create handles POST /api/availability (doctor role).
func (h *AvailabilityHandler) Create(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createAvailabilityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dayOfWeek must be 0-6"})
	}
	if req.StartTime == "" || req.EndTime == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "startTime and endTime required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	av, err := h.Store.CreateAvailability(ctx, model.Availability{
		DoctorID:  u.ID,
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create availability failed"})
	}
	return c.JSON(http.StatusCreated, toAvailabilityResp(av))
}

// ListForDoctor handles GET /api/doctors/:id/availability. Public:
// patients consult a doctor's hours before booking.
func (h *AvailabilityHandler) ListForDoctor(c echo.Context) error {
	doctorID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || doctorID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid doctor id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	slots, err := h.Store.ListAvailability(ctx, doctorID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list availability failed"})
	}
	out := make([]availabilityResp, 0, len(slots))
	for _, av := range slots {
		out = append(out, toAvailabilityResp(av))
	}
	return c.JSON(http.StatusOK, out)
}

// Delete handles DELETE /api/availability/:id (doctor role, own
// slots only).
func (h *AvailabilityHandler) Delete(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid availability id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Timeout)
	defer cancel()

	if err := h.Store.DeleteAvailability(ctx, id, u.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "availability not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete availability failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
