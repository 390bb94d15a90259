// Package queue defines the message payloads exchanged over the
// broker and the background consumer that turns them into
// notifications.
package queue

// Queue names. Both queues are declared durable by publisher and
// consumer alike, so declaration order does not matter.
const (
	QueueAppointmentBooked    = "appointment.booked"
	QueueAppointmentCancelled = "appointment.cancelled"
)

// AppointmentEvent is published when an appointment is booked or
// cancelled. It carries enough context for downstream consumers
// (notification fan-out, analytics) to act without querying the
// primary store.
type AppointmentEvent struct {
	AppointmentID uint64  `json:"appointment_id"`
	PatientID     uint64  `json:"patient_id"`
	DoctorID      uint64  `json:"doctor_id"`
	ActorID       uint64  `json:"actor_id"` // user who triggered the change
	DateTime      string  `json:"date_time"` // RFC3339
	Type          string  `json:"type"`
	Status        string  `json:"status"`
	Notes         *string `json:"notes,omitempty"`
	OccurredAt    string  `json:"occurred_at"` // RFC3339
}
