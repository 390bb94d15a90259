package model

import "time"

// Appointment status values. An appointment is created PENDING,
// may be confirmed by the doctor, and may be cancelled by either
// party. CANCELLED is terminal; there is no transition out of it.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Appointment type values.
const (
	TypeInPerson = "in-person"
	TypeVirtual  = "virtual"
)

// ValidAppointmentType reports whether s is a known appointment type.
func ValidAppointmentType(s string) bool {
	return s == TypeInPerson || s == TypeVirtual
}

// Appointment links a patient and a doctor at a point in time.
// It mirrors the `appointments` table.
//
// Fields:
//  ID        – primary key identifier.
//  PatientID – user id of the patient; the referenced user has role "patient".
//  DoctorID  – user id of the doctor; the referenced user has role "doctor".
//  DateTime  – scheduled time in UTC; must be in the future at creation.
//  Type      – "in-person" or "virtual".
//  Status    – "pending", "confirmed" or "cancelled".
//  Notes     – optional free-text notes.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Appointment struct {
	ID        uint64    // appointments.id
	PatientID uint64    // appointments.patient_id
	DoctorID  uint64    // appointments.doctor_id
	DateTime  time.Time // appointments.date_time
	Type      string    // appointments.type
	Status    string    // appointments.status
	Notes     *string   // appointments.notes (nullable)
	CreatedAt time.Time // appointments.created_at
	UpdatedAt time.Time // appointments.updated_at
}
