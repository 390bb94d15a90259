package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/careconnect/booking-api/internal/middleware"
	"github.com/careconnect/booking-api/internal/model"
	"github.com/careconnect/booking-api/internal/queue"
	"github.com/careconnect/booking-api/internal/repository"
)

// EventPublisher is the slice of the queue publisher the ledger
// handlers need. A nil publisher disables events, which is how the
// tests and the bare development setup run.
type EventPublisher interface {
	AppointmentBooked(ctx context.Context, ev queue.AppointmentEvent) error
	AppointmentCancelled(ctx context.Context, ev queue.AppointmentEvent) error
}

// AppointmentHandler serves the appointment ledger endpoints:
// booking, per-role listings, cancel and confirm.
type AppointmentHandler struct {
	Store   repository.AppointmentStore
	Events  EventPublisher
	Timeout time.Duration
}

// NewAppointmentHandler constructs an AppointmentHandler. events
// may be nil.
func NewAppointmentHandler(store repository.AppointmentStore, events EventPublisher, timeout time.Duration) *AppointmentHandler {
	if store == nil {
		panic("nil appointment store passed to NewAppointmentHandler")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AppointmentHandler{Store: store, Events: events, Timeout: timeout}
}

// ----- DTOs -----

type createAppointmentReq struct {
	DoctorID uint64  `json:"doctorId"`
	DateTime string  `json:"dateTime"` // RFC3339
	Type     string  `json:"type"`     // in-person | virtual
	Notes    *string `json:"notes"`
}

type appointmentResp struct {
	ID        uint64  `json:"id"`
	PatientID uint64  `json:"patientId"`
	DoctorID  uint64  `json:"doctorId"`
	DateTime  string  `json:"dateTime"`
	Type      string  `json:"type"`
	Status    string  `json:"status"`
	Notes     *string `json:"notes"`
}

// appointmentDetailResp adds the counterpart user's name and, for
// doctors, specialty. On a patient's listing the counterpart is
// the doctor; on a doctor's, the patient.
type appointmentDetailResp struct {
	appointmentResp
	CounterpartID        uint64  `json:"counterpartId"`
	CounterpartName      *string `json:"counterpartName"`
	CounterpartSpecialty *string `json:"counterpartSpecialty,omitempty"`
}

func toAppointmentResp(a model.Appointment) appointmentResp {
	return appointmentResp{
		ID:        a.ID,
		PatientID: a.PatientID,
		DoctorID:  a.DoctorID,
		DateTime:  a.DateTime.UTC().Format(time.RFC3339),
		Type:      a.Type,
		Status:    a.Status,
		Notes:     a.Notes,
	}
}

func toDetailResp(d repository.AppointmentDetail) appointmentDetailResp {
	return appointmentDetailResp{
		appointmentResp:      toAppointmentResp(d.Appointment),
		CounterpartID:        d.CounterpartID,
		CounterpartName:      d.CounterpartName,
		CounterpartSpecialty: d.CounterpartSpecialty,
	}
}

// Create handles POST /api/appointments. Patients book with a
// doctor at a future time; the appointment starts out pending
// until the doctor confirms it.
func (h *AppointmentHandler) Create(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createAppointmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.DoctorID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "doctorId required"})
	}
	if !model.ValidAppointmentType(req.Type) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be in-person or virtual"})
	}
	at, err := time.Parse(time.RFC3339, req.DateTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dateTime must be RFC3339"})
	}
	if !at.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dateTime must be in the future"})
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	a, err := h.Store.CreateAppointment(ctx, u.ID, req.DoctorID, at, req.Type, req.Notes)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "doctor not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create appointment failed"})
	}

	h.publish(c, a, u.ID, false)
	return c.JSON(http.StatusCreated, toAppointmentResp(a))
}

// ListMe handles GET /api/appointments/me. The resolved role
// decides which side of the ledger is listed.
func (h *AppointmentHandler) ListMe(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if u.Role == model.RoleDoctor {
		return h.list(c, u.ID, false)
	}
	return h.list(c, u.ID, true)
}

// ListPatient handles GET /api/appointments/patient (patient role).
func (h *AppointmentHandler) ListPatient(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return h.list(c, u.ID, true)
}

// ListDoctor handles GET /api/appointments/doctor (doctor role).
func (h *AppointmentHandler) ListDoctor(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return h.list(c, u.ID, false)
}

func (h *AppointmentHandler) list(c echo.Context, userID uint64, asPatient bool) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	var (
		details []repository.AppointmentDetail
		err     error
	)
	if asPatient {
		details, err = h.Store.ListForPatient(ctx, userID)
	} else {
		details, err = h.Store.ListForDoctor(ctx, userID)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list appointments failed"})
	}
	out := make([]appointmentDetailResp, 0, len(details))
	for _, d := range details {
		out = append(out, toDetailResp(d))
	}
	return c.JSON(http.StatusOK, out)
}

// Cancel handles POST /api/appointments/:id/cancel. Either party
// may cancel; anyone else gets 403. Cancelling twice yields 409
// and leaves the record untouched.
func (h *AppointmentHandler) Cancel(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment id"})
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	a, err := h.Store.Cancel(ctx, id, u.ID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "appointment already cancelled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel appointment failed"})
	}

	h.publish(c, a, u.ID, true)
	return c.JSON(http.StatusOK, toAppointmentResp(a))
}

// Confirm handles POST /api/appointments/:id/confirm. Only the
// doctor on the appointment may confirm, and only from pending.
func (h *AppointmentHandler) Confirm(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment id"})
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	a, err := h.Store.Confirm(ctx, id, u.ID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "appointment is not pending"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "confirm appointment failed"})
	}
	return c.JSON(http.StatusOK, toAppointmentResp(a))
}

// publish emits the lifecycle event for a booked or cancelled
// appointment. Failures only get logged; the state change already
// committed and the client must still see success.
func (h *AppointmentHandler) publish(c echo.Context, a model.Appointment, actorID uint64, cancelled bool) {
	if h.Events == nil {
		return
	}
	ev := queue.AppointmentEvent{
		AppointmentID: a.ID,
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		ActorID:       actorID,
		DateTime:      a.DateTime.UTC().Format(time.RFC3339),
		Type:          a.Type,
		Status:        a.Status,
		Notes:         a.Notes,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var err error
	if cancelled {
		err = h.Events.AppointmentCancelled(ctx, ev)
	} else {
		err = h.Events.AppointmentBooked(ctx, ev)
	}
	if err != nil {
		log.Printf("appointment event publish failed: %v", err)
	}
}

func (h *AppointmentHandler) ctx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), h.Timeout)
}
