package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/careconnect/booking-api/internal/model"
)

// MemoryStore keeps all records in process memory behind a single
// mutex. It backs the service when no database is configured and
// is the store used by the test suites. Ids are auto-incrementing
// integers assigned per table; all mutations, including the cancel
// and confirm transitions, are serialized by the mutex.
type MemoryStore struct {
	mu sync.Mutex

	users        map[uint64]model.User
	appointments map[uint64]model.Appointment
	availability map[uint64]model.Availability

	// insertion order for deterministic listings
	userOrder []uint64

	nextUserID  uint64
	nextApptID  uint64
	nextAvailID uint64
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[uint64]model.User),
		appointments: make(map[uint64]model.Appointment),
		availability: make(map[uint64]model.Availability),
		nextUserID:   1,
		nextApptID:   1,
		nextAvailID:  1,
	}
}

// CreateUser assigns the next sequential id and stores the record.
// It rejects a duplicate external id with ErrExternalIDExists.
func (s *MemoryStore) CreateUser(_ context.Context, nu NewUser) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ExternalID == nu.ExternalID {
			return model.User{}, ErrExternalIDExists
		}
	}

	now := time.Now().UTC()
	u := model.User{
		ID:              s.nextUserID,
		ExternalID:      nu.ExternalID,
		Email:           nu.Email,
		DisplayName:     nu.DisplayName,
		Role:            nu.Role,
		Specialty:       nu.Specialty,
		PhoneNumber:     nu.PhoneNumber,
		ProfileComplete: nu.ProfileComplete,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.nextUserID++
	s.users[u.ID] = u
	s.userOrder = append(s.userOrder, u.ID)
	return u, nil
}

// UserByExternalID returns the record bound to the given external
// identity id, or ErrNotFound.
func (s *MemoryStore) UserByExternalID(_ context.Context, externalID string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.userOrder {
		if u := s.users[id]; u.ExternalID == externalID {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

// UserByID returns the record with the given id, or ErrNotFound.
func (s *MemoryStore) UserByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

// ListDoctors returns all records with role doctor in insertion order.
func (s *MemoryStore) ListDoctors(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.User, 0)
	for _, id := range s.userOrder {
		if u := s.users[id]; u.Role == model.RoleDoctor {
			out = append(out, u)
		}
	}
	return out, nil
}

// UpdateUser merges the provided optional fields into the record.
// Nil fields are left unchanged; identity fields cannot be touched
// through this operation at all.
func (s *MemoryStore) UpdateUser(_ context.Context, id uint64, upd model.UserUpdate) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	if upd.DisplayName != nil {
		u.DisplayName = upd.DisplayName
	}
	if upd.Specialty != nil {
		u.Specialty = upd.Specialty
	}
	if upd.PhoneNumber != nil {
		u.PhoneNumber = upd.PhoneNumber
	}
	if upd.ProfileComplete != nil {
		u.ProfileComplete = *upd.ProfileComplete
	}
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return u, nil
}

// CreateAppointment verifies that both parties exist with the
// expected roles and stores a pending appointment.
func (s *MemoryStore) CreateAppointment(_ context.Context, patientID, doctorID uint64, at time.Time, typ string, notes *string) (model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.users[patientID]; !ok || p.Role != model.RolePatient {
		return model.Appointment{}, ErrNotFound
	}
	if d, ok := s.users[doctorID]; !ok || d.Role != model.RoleDoctor {
		return model.Appointment{}, ErrNotFound
	}

	now := time.Now().UTC()
	a := model.Appointment{
		ID:        s.nextApptID,
		PatientID: patientID,
		DoctorID:  doctorID,
		DateTime:  at.UTC(),
		Type:      typ,
		Status:    model.StatusPending,
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextApptID++
	s.appointments[a.ID] = a
	return a, nil
}

// ListForPatient returns the patient's appointments with each
// doctor's name and specialty attached, ordered by date ascending.
func (s *MemoryStore) ListForPatient(_ context.Context, patientID uint64) ([]AppointmentDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(patientID, true), nil
}

// ListForDoctor returns the doctor's appointments with each
// patient's name attached, ordered by date ascending.
func (s *MemoryStore) ListForDoctor(_ context.Context, doctorID uint64) ([]AppointmentDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(doctorID, false), nil
}

func (s *MemoryStore) listLocked(userID uint64, forPatient bool) []AppointmentDetail {
	out := make([]AppointmentDetail, 0)
	for _, a := range s.appointments {
		var counterpartID uint64
		if forPatient {
			if a.PatientID != userID {
				continue
			}
			counterpartID = a.DoctorID
		} else {
			if a.DoctorID != userID {
				continue
			}
			counterpartID = a.PatientID
		}
		d := AppointmentDetail{Appointment: a, CounterpartID: counterpartID}
		if cp, ok := s.users[counterpartID]; ok {
			d.CounterpartName = cp.DisplayName
			d.CounterpartSpecialty = cp.Specialty
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Appointment.DateTime.Before(out[j].Appointment.DateTime)
	})
	return out
}

// Cancel transitions the appointment to cancelled. The mutex makes
// the read-check-write sequence atomic, so two concurrent cancels
// of the same id cannot both succeed.
func (s *MemoryStore) Cancel(_ context.Context, appointmentID, requesterID uint64) (model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[appointmentID]
	if !ok {
		return model.Appointment{}, ErrNotFound
	}
	if requesterID != a.PatientID && requesterID != a.DoctorID {
		return model.Appointment{}, ErrForbidden
	}
	if a.Status == model.StatusCancelled {
		return model.Appointment{}, ErrConflict
	}
	a.Status = model.StatusCancelled
	a.UpdatedAt = time.Now().UTC()
	s.appointments[appointmentID] = a
	return a, nil
}

// Confirm transitions a pending appointment to confirmed on behalf
// of its doctor.
func (s *MemoryStore) Confirm(_ context.Context, appointmentID, doctorID uint64) (model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[appointmentID]
	if !ok {
		return model.Appointment{}, ErrNotFound
	}
	if doctorID != a.DoctorID {
		return model.Appointment{}, ErrForbidden
	}
	if a.Status != model.StatusPending {
		return model.Appointment{}, ErrConflict
	}
	a.Status = model.StatusConfirmed
	a.UpdatedAt = time.Now().UTC()
	s.appointments[appointmentID] = a
	return a, nil
}

// CreateAvailability stores a weekly slot for a doctor.
func (s *MemoryStore) CreateAvailability(_ context.Context, av model.Availability) (model.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.users[av.DoctorID]; !ok || d.Role != model.RoleDoctor {
		return model.Availability{}, ErrNotFound
	}
	av.ID = s.nextAvailID
	s.nextAvailID++
	av.CreatedAt = time.Now().UTC()
	s.availability[av.ID] = av
	return av, nil
}

// ListAvailability returns a doctor's slots ordered by day of week,
// then start time.
func (s *MemoryStore) ListAvailability(_ context.Context, doctorID uint64) ([]model.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Availability, 0)
	for _, av := range s.availability {
		if av.DoctorID == doctorID {
			out = append(out, av)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

// DeleteAvailability removes a slot owned by doctorID.
func (s *MemoryStore) DeleteAvailability(_ context.Context, id, doctorID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	av, ok := s.availability[id]
	if !ok {
		return ErrNotFound
	}
	if av.DoctorID != doctorID {
		return ErrForbidden
	}
	delete(s.availability, id)
	return nil
}
