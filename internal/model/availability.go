package model

import "time"

// Availability is a weekly recurring slot during which a doctor
// accepts appointments. Times are free-text HH:MM strings as
// entered by the doctor; DayOfWeek is 0 (Sunday) through 6.
type Availability struct {
	ID        uint64    // availability.id
	DoctorID  uint64    // availability.doctor_id
	DayOfWeek int       // availability.day_of_week (0-6)
	StartTime string    // availability.start_time
	EndTime   string    // availability.end_time
	CreatedAt time.Time // availability.created_at
}
