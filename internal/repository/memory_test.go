package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/careconnect/booking-api/internal/model"
)

func strptr(s string) *string { return &s }

func newPatient(t *testing.T, s *MemoryStore, extID string) model.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), NewUser{
		ExternalID: extID,
		Email:      extID + "@test.com",
		Role:       model.RolePatient,
	})
	if err != nil {
		t.Fatalf("create patient: %v", err)
	}
	return u
}

func newDoctor(t *testing.T, s *MemoryStore, extID, specialty string) model.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), NewUser{
		ExternalID: extID,
		Email:      extID + "@test.com",
		Role:       model.RoleDoctor,
		Specialty:  strptr(specialty),
	})
	if err != nil {
		t.Fatalf("create doctor: %v", err)
	}
	return u
}

func TestCreateUserAssignsIncreasingIDs(t *testing.T) {
	s := NewMemoryStore()
	var last uint64
	for i, ext := range []string{"ext-a", "ext-b", "ext-c"} {
		u := newPatient(t, s, ext)
		if u.ID <= last {
			t.Fatalf("user %d: id %d not greater than previous %d", i, u.ID, last)
		}
		last = u.ID
	}
}

func TestUserByExternalIDRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	created := newPatient(t, s, "firebase-uid-1")

	got, err := s.UserByExternalID(context.Background(), "firebase-uid-1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.ID != created.ID || got.ExternalID != "firebase-uid-1" {
		t.Fatalf("got %+v, want id=%d ext=firebase-uid-1", got, created.ID)
	}

	if _, err := s.UserByExternalID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing lookup: got %v, want ErrNotFound", err)
	}
}

func TestCreateUserRejectsDuplicateExternalID(t *testing.T) {
	s := NewMemoryStore()
	newPatient(t, s, "dup-ext")

	_, err := s.CreateUser(context.Background(), NewUser{
		ExternalID: "dup-ext",
		Email:      "other@test.com",
		Role:       model.RoleDoctor,
	})
	if !errors.Is(err, ErrExternalIDExists) {
		t.Fatalf("got %v, want ErrExternalIDExists", err)
	}
}

func TestListDoctorsReturnsOnlyDoctors(t *testing.T) {
	s := NewMemoryStore()
	newPatient(t, s, "p1")
	d1 := newDoctor(t, s, "d1", "cardiology")
	newPatient(t, s, "p2")
	d2 := newDoctor(t, s, "d2", "dermatology")

	doctors, err := s.ListDoctors(context.Background())
	if err != nil {
		t.Fatalf("list doctors: %v", err)
	}
	if len(doctors) != 2 {
		t.Fatalf("got %d doctors, want 2", len(doctors))
	}
	// insertion order
	if doctors[0].ID != d1.ID || doctors[1].ID != d2.ID {
		t.Fatalf("got order %d,%d want %d,%d", doctors[0].ID, doctors[1].ID, d1.ID, d2.ID)
	}
	for _, d := range doctors {
		if d.Role != model.RoleDoctor {
			t.Fatalf("non-doctor %+v in doctor listing", d)
		}
	}
}

func TestUpdateUserMergesOnlyProvidedFields(t *testing.T) {
	s := NewMemoryStore()
	u := newDoctor(t, s, "d-upd", "cardiology")

	done := true
	got, err := s.UpdateUser(context.Background(), u.ID, model.UserUpdate{
		DisplayName:     strptr("Dr. Grey"),
		ProfileComplete: &done,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.DisplayName == nil || *got.DisplayName != "Dr. Grey" {
		t.Fatalf("displayName not merged: %+v", got)
	}
	if !got.ProfileComplete {
		t.Fatal("profileComplete not merged")
	}
	if got.Specialty == nil || *got.Specialty != "cardiology" {
		t.Fatalf("untouched specialty changed: %+v", got)
	}
	if got.Role != model.RoleDoctor || got.ExternalID != "d-upd" {
		t.Fatalf("identity fields changed: %+v", got)
	}
}

func TestCreateAppointmentChecksRoles(t *testing.T) {
	s := NewMemoryStore()
	p := newPatient(t, s, "p")
	d := newDoctor(t, s, "d", "cardiology")
	future := time.Now().UTC().Add(48 * time.Hour)

	// swapped ids: patient slot holds a doctor and vice versa
	if _, err := s.CreateAppointment(context.Background(), d.ID, p.ID, future, model.TypeVirtual, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("swapped roles: got %v, want ErrNotFound", err)
	}
	if _, err := s.CreateAppointment(context.Background(), p.ID, 999, future, model.TypeVirtual, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown doctor: got %v, want ErrNotFound", err)
	}

	a, err := s.CreateAppointment(context.Background(), p.ID, d.ID, future, model.TypeVirtual, nil)
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	if a.Status != model.StatusPending {
		t.Fatalf("initial status %q, want pending", a.Status)
	}
}

func TestCancelLifecycle(t *testing.T) {
	s := NewMemoryStore()
	d := newDoctor(t, s, "doc", "cardiology")
	p := newPatient(t, s, "pat")
	future := time.Now().UTC().Add(24 * time.Hour)

	a, err := s.CreateAppointment(context.Background(), p.ID, d.ID, future, model.TypeVirtual, nil)
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	cancelled, err := s.Cancel(context.Background(), a.ID, p.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != model.StatusCancelled {
		t.Fatalf("status %q after cancel, want cancelled", cancelled.Status)
	}

	// second cancel fails and leaves the record untouched
	if _, err := s.Cancel(context.Background(), a.ID, p.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("double cancel: got %v, want ErrConflict", err)
	}
	list, err := s.ListForPatient(context.Background(), p.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("list after cancel: %v, %d items", err, len(list))
	}
	if list[0].Appointment.Status != model.StatusCancelled {
		t.Fatalf("status %q, want cancelled", list[0].Appointment.Status)
	}
}

func TestCancelByStrangerIsForbidden(t *testing.T) {
	s := NewMemoryStore()
	d := newDoctor(t, s, "doc", "cardiology")
	p := newPatient(t, s, "pat")
	stranger := newPatient(t, s, "stranger")
	future := time.Now().UTC().Add(24 * time.Hour)

	a, err := s.CreateAppointment(context.Background(), p.ID, d.ID, future, model.TypeInPerson, nil)
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	if _, err := s.Cancel(context.Background(), a.ID, stranger.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger cancel: got %v, want ErrForbidden", err)
	}
	list, _ := s.ListForPatient(context.Background(), p.ID)
	if list[0].Appointment.Status != model.StatusPending {
		t.Fatalf("status %q after forbidden cancel, want pending", list[0].Appointment.Status)
	}

	if _, err := s.Cancel(context.Background(), 999, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id: got %v, want ErrNotFound", err)
	}
}

func TestDoctorMayCancel(t *testing.T) {
	s := NewMemoryStore()
	d := newDoctor(t, s, "doc", "cardiology")
	p := newPatient(t, s, "pat")
	a, _ := s.CreateAppointment(context.Background(), p.ID, d.ID, time.Now().UTC().Add(time.Hour), model.TypeVirtual, nil)

	got, err := s.Cancel(context.Background(), a.ID, d.ID)
	if err != nil {
		t.Fatalf("doctor cancel: %v", err)
	}
	if got.Status != model.StatusCancelled {
		t.Fatalf("status %q, want cancelled", got.Status)
	}
}

func TestConfirmTransitions(t *testing.T) {
	s := NewMemoryStore()
	d := newDoctor(t, s, "doc", "cardiology")
	p := newPatient(t, s, "pat")
	a, _ := s.CreateAppointment(context.Background(), p.ID, d.ID, time.Now().UTC().Add(time.Hour), model.TypeVirtual, nil)

	// only the doctor on the record confirms
	if _, err := s.Confirm(context.Background(), a.ID, p.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("patient confirm: got %v, want ErrForbidden", err)
	}

	got, err := s.Confirm(context.Background(), a.ID, d.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if got.Status != model.StatusConfirmed {
		t.Fatalf("status %q, want confirmed", got.Status)
	}

	// confirmed is not pending anymore
	if _, err := s.Confirm(context.Background(), a.ID, d.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("double confirm: got %v, want ErrConflict", err)
	}

	// confirmed can still be cancelled, cancelled cannot be confirmed
	if _, err := s.Cancel(context.Background(), a.ID, d.ID); err != nil {
		t.Fatalf("cancel confirmed: %v", err)
	}
	if _, err := s.Confirm(context.Background(), a.ID, d.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("confirm cancelled: got %v, want ErrConflict", err)
	}
}

func TestListOrderedByDateTime(t *testing.T) {
	s := NewMemoryStore()
	d := newDoctor(t, s, "doc", "cardiology")
	p := newPatient(t, s, "pat")
	base := time.Now().UTC()

	// inserted out of order on purpose
	for _, h := range []int{72, 24, 48} {
		if _, err := s.CreateAppointment(context.Background(), p.ID, d.ID, base.Add(time.Duration(h)*time.Hour), model.TypeVirtual, nil); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := s.ListForDoctor(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d items, want 3", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].Appointment.DateTime.Before(list[i-1].Appointment.DateTime) {
			t.Fatalf("listing not ordered by dateTime ascending")
		}
	}
	// counterpart join carries the patient's side for the doctor
	if list[0].CounterpartID != p.ID {
		t.Fatalf("counterpart %d, want patient %d", list[0].CounterpartID, p.ID)
	}
}

func TestListJoinCarriesDoctorNameAndSpecialty(t *testing.T) {
	s := NewMemoryStore()
	d := newDoctor(t, s, "doc", "cardiology")
	if _, err := s.UpdateUser(context.Background(), d.ID, model.UserUpdate{DisplayName: strptr("Dr. Yang")}); err != nil {
		t.Fatalf("update doctor: %v", err)
	}
	p := newPatient(t, s, "pat")
	if _, err := s.CreateAppointment(context.Background(), p.ID, d.ID, time.Now().UTC().Add(time.Hour), model.TypeVirtual, nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := s.ListForPatient(context.Background(), p.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v, %d items", err, len(list))
	}
	got := list[0]
	if got.CounterpartName == nil || *got.CounterpartName != "Dr. Yang" {
		t.Fatalf("counterpart name %v, want Dr. Yang", got.CounterpartName)
	}
	if got.CounterpartSpecialty == nil || *got.CounterpartSpecialty != "cardiology" {
		t.Fatalf("counterpart specialty %v, want cardiology", got.CounterpartSpecialty)
	}
}

func TestAvailabilityOwnership(t *testing.T) {
	s := NewMemoryStore()
	d1 := newDoctor(t, s, "d1", "cardiology")
	d2 := newDoctor(t, s, "d2", "dermatology")

	av, err := s.CreateAvailability(context.Background(), model.Availability{
		DoctorID: d1.ID, DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00",
	})
	if err != nil {
		t.Fatalf("create availability: %v", err)
	}

	if err := s.DeleteAvailability(context.Background(), av.ID, d2.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign delete: got %v, want ErrForbidden", err)
	}
	if err := s.DeleteAvailability(context.Background(), av.ID, d1.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := s.DeleteAvailability(context.Background(), av.ID, d1.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("repeat delete: got %v, want ErrNotFound", err)
	}
}

func TestConcurrentCancelSingleWinner(t *testing.T) {
	s := NewMemoryStore()
	d := newDoctor(t, s, "doc", "cardiology")
	p := newPatient(t, s, "pat")
	a, _ := s.CreateAppointment(context.Background(), p.ID, d.ID, time.Now().UTC().Add(time.Hour), model.TypeVirtual, nil)

	const n = 16
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := s.Cancel(context.Background(), a.ID, p.ID)
			errs <- err
		}()
	}
	var wins, conflicts int
	for i := 0; i < n; i++ {
		switch err := <-errs; {
		case err == nil:
			wins++
		case errors.Is(err, ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != n-1 {
		t.Fatalf("got %d winners and %d conflicts, want 1 and %d", wins, conflicts, n-1)
	}
}
