package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/careconnect/booking-api/internal/model"
)

const apptCols = "id, patient_id, doctor_id, date_time, type, status, notes, created_at, updated_at"

func scanAppointment(row interface{ Scan(...any) error }) (model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.DateTime, &a.Type,
		&a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// CreateAppointment inserts a pending appointment after verifying
// that both parties exist with the expected roles.
func (s *MySQLStore) CreateAppointment(ctx context.Context, patientID, doctorID uint64, at time.Time, typ string, notes *string) (model.Appointment, error) {
	if err := s.checkRole(ctx, patientID, model.RolePatient); err != nil {
		return model.Appointment{}, err
	}
	if err := s.checkRole(ctx, doctorID, model.RoleDoctor); err != nil {
		return model.Appointment{}, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO appointments (patient_id, doctor_id, date_time, type, status, notes)
		 VALUES (?,?,?,?,?,?)`,
		patientID, doctorID, at.UTC(), typ, model.StatusPending, notes)
	if err != nil {
		return model.Appointment{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Appointment{}, err
	}
	a, err := scanAppointment(s.db.QueryRowContext(ctx,
		"SELECT "+apptCols+" FROM appointments WHERE id=?", id))
	if err != nil {
		return model.Appointment{}, err
	}
	return a, nil
}

func (s *MySQLStore) checkRole(ctx context.Context, userID uint64, role string) error {
	var got string
	err := s.db.QueryRowContext(ctx, "SELECT role FROM users WHERE id=? LIMIT 1", userID).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if got != role {
		return ErrNotFound
	}
	return nil
}

// ListForPatient joins each appointment with its doctor's display
// name and specialty, ordered by appointment time ascending.
func (s *MySQLStore) ListForPatient(ctx context.Context, patientID uint64) ([]AppointmentDetail, error) {
	const q = `SELECT a.id, a.patient_id, a.doctor_id, a.date_time, a.type, a.status, a.notes,
	                  a.created_at, a.updated_at, u.id, u.display_name, u.specialty
	           FROM appointments a
	           JOIN users u ON u.id = a.doctor_id
	           WHERE a.patient_id = ?
	           ORDER BY a.date_time ASC`
	return s.listDetails(ctx, q, patientID)
}

// ListForDoctor joins each appointment with its patient's display
// name, ordered by appointment time ascending.
func (s *MySQLStore) ListForDoctor(ctx context.Context, doctorID uint64) ([]AppointmentDetail, error) {
	const q = `SELECT a.id, a.patient_id, a.doctor_id, a.date_time, a.type, a.status, a.notes,
	                  a.created_at, a.updated_at, u.id, u.display_name, u.specialty
	           FROM appointments a
	           JOIN users u ON u.id = a.patient_id
	           WHERE a.doctor_id = ?
	           ORDER BY a.date_time ASC`
	return s.listDetails(ctx, q, doctorID)
}

func (s *MySQLStore) listDetails(ctx context.Context, query string, userID uint64) ([]AppointmentDetail, error) {
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]AppointmentDetail, 0)
	for rows.Next() {
		var d AppointmentDetail
		a := &d.Appointment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.DateTime, &a.Type, &a.Status,
			&a.Notes, &a.CreatedAt, &a.UpdatedAt,
			&d.CounterpartID, &d.CounterpartName, &d.CounterpartSpecialty); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Cancel locks the appointment row, checks the requester and the
// current status, and transitions to cancelled. The row lock makes
// a concurrent second cancel wait and then fail with ErrConflict.
func (s *MySQLStore) Cancel(ctx context.Context, appointmentID, requesterID uint64) (model.Appointment, error) {
	return s.transition(ctx, appointmentID, func(a model.Appointment) error {
		if requesterID != a.PatientID && requesterID != a.DoctorID {
			return ErrForbidden
		}
		if a.Status == model.StatusCancelled {
			return ErrConflict
		}
		return nil
	}, model.StatusCancelled)
}

// Confirm locks the appointment row and transitions a pending
// appointment to confirmed on behalf of its doctor.
func (s *MySQLStore) Confirm(ctx context.Context, appointmentID, doctorID uint64) (model.Appointment, error) {
	return s.transition(ctx, appointmentID, func(a model.Appointment) error {
		if doctorID != a.DoctorID {
			return ErrForbidden
		}
		if a.Status != model.StatusPending {
			return ErrConflict
		}
		return nil
	}, model.StatusConfirmed)
}

func (s *MySQLStore) transition(ctx context.Context, appointmentID uint64, check func(model.Appointment) error, next string) (model.Appointment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Appointment{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	a, err := scanAppointment(tx.QueryRowContext(ctx,
		"SELECT "+apptCols+" FROM appointments WHERE id=? FOR UPDATE", appointmentID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Appointment{}, ErrNotFound
	}
	if err != nil {
		return model.Appointment{}, err
	}
	if err := check(a); err != nil {
		return model.Appointment{}, err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE appointments SET status=?, updated_at=NOW() WHERE id=?", next, appointmentID); err != nil {
		return model.Appointment{}, err
	}
	a, err = scanAppointment(tx.QueryRowContext(ctx,
		"SELECT "+apptCols+" FROM appointments WHERE id=?", appointmentID))
	if err != nil {
		return model.Appointment{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Appointment{}, err
	}
	committed = true
	return a, nil
}
