package repository

import (
	"context"
	"time"

	"github.com/careconnect/booking-api/internal/model"
)

// NewUser carries the fields accepted when creating a directory
// record. Optional fields default to null/false when absent.
type NewUser struct {
	ExternalID      string
	Email           string
	Role            string
	DisplayName     *string
	Specialty       *string
	PhoneNumber     *string
	ProfileComplete bool
}

// AppointmentDetail is an appointment joined with the counterpart
// user's display name and specialty, as returned by the list
// operations. For a patient's listing the counterpart is the
// doctor and vice versa.
type AppointmentDetail struct {
	Appointment          model.Appointment
	CounterpartID        uint64
	CounterpartName      *string
	CounterpartSpecialty *string
}

// UserStore is the single source of truth for identity-to-role
// bindings. Create enforces external id uniqueness; no operation
// redefines id, external id, email or role after creation.
type UserStore interface {
	CreateUser(ctx context.Context, nu NewUser) (model.User, error)
	UserByExternalID(ctx context.Context, externalID string) (model.User, error)
	UserByID(ctx context.Context, id uint64) (model.User, error)
	ListDoctors(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, id uint64, upd model.UserUpdate) (model.User, error)
}

// AppointmentStore tracks the appointment lifecycle. Cancel and
// Confirm are the only state transitions and must be atomic with
// respect to concurrent attempts on the same appointment id.
type AppointmentStore interface {
	// CreateAppointment stores a pending appointment. It returns
	// ErrNotFound when patientID does not resolve to a patient or
	// doctorID does not resolve to a doctor.
	CreateAppointment(ctx context.Context, patientID, doctorID uint64, at time.Time, typ string, notes *string) (model.Appointment, error)
	// ListForPatient returns the patient's appointments joined with
	// each doctor's name and specialty, ordered by date ascending.
	ListForPatient(ctx context.Context, patientID uint64) ([]AppointmentDetail, error)
	// ListForDoctor returns the doctor's appointments joined with
	// each patient's name, ordered by date ascending.
	ListForDoctor(ctx context.Context, doctorID uint64) ([]AppointmentDetail, error)
	// Cancel transitions the appointment to cancelled on behalf of
	// requesterID, which must be the patient or the doctor on the
	// record. It returns ErrNotFound, ErrForbidden or ErrConflict
	// (already cancelled) accordingly.
	Cancel(ctx context.Context, appointmentID, requesterID uint64) (model.Appointment, error)
	// Confirm transitions a pending appointment to confirmed on
	// behalf of its doctor.
	Confirm(ctx context.Context, appointmentID, doctorID uint64) (model.Appointment, error)
}

// AvailabilityStore manages a doctor's weekly recurring slots.
type AvailabilityStore interface {
	CreateAvailability(ctx context.Context, av model.Availability) (model.Availability, error)
	ListAvailability(ctx context.Context, doctorID uint64) ([]model.Availability, error)
	// DeleteAvailability removes a slot owned by doctorID. It
	// returns ErrNotFound for unknown ids and ErrForbidden when the
	// slot belongs to another doctor.
	DeleteAvailability(ctx context.Context, id, doctorID uint64) error
}

// Store aggregates the three storage contracts. The MySQL and the
// in-memory implementations both satisfy it.
type Store interface {
	UserStore
	AppointmentStore
	AvailabilityStore
}
