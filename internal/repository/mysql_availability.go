package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/careconnect/booking-api/internal/model"
)

// CreateAvailability stores a weekly slot for a doctor.
func (s *MySQLStore) CreateAvailability(ctx context.Context, av model.Availability) (model.Availability, error) {
	if err := s.checkRole(ctx, av.DoctorID, model.RoleDoctor); err != nil {
		return model.Availability{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO availability (doctor_id, day_of_week, start_time, end_time) VALUES (?,?,?,?)`,
		av.DoctorID, av.DayOfWeek, av.StartTime, av.EndTime)
	if err != nil {
		return model.Availability{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Availability{}, err
	}
	err = s.db.QueryRowContext(ctx,
		`SELECT id, doctor_id, day_of_week, start_time, end_time, created_at FROM availability WHERE id=?`, id).
		Scan(&av.ID, &av.DoctorID, &av.DayOfWeek, &av.StartTime, &av.EndTime, &av.CreatedAt)
	if err != nil {
		return model.Availability{}, err
	}
	return av, nil
}

// ListAvailability returns a doctor's slots ordered by day, then
// start time.
func (s *MySQLStore) ListAvailability(ctx context.Context, doctorID uint64) ([]model.Availability, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, doctor_id, day_of_week, start_time, end_time, created_at
		 FROM availability WHERE doctor_id=?
		 ORDER BY day_of_week, start_time`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Availability, 0)
	for rows.Next() {
		var av model.Availability
		if err := rows.Scan(&av.ID, &av.DoctorID, &av.DayOfWeek, &av.StartTime, &av.EndTime, &av.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, av)
	}
	return out, rows.Err()
}

// DeleteAvailability removes a slot after verifying ownership.
func (s *MySQLStore) DeleteAvailability(ctx context.Context, id, doctorID uint64) error {
	var owner uint64
	err := s.db.QueryRowContext(ctx, "SELECT doctor_id FROM availability WHERE id=? LIMIT 1", id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if owner != doctorID {
		return ErrForbidden
	}
	_, err = s.db.ExecContext(ctx, "DELETE FROM availability WHERE id=?", id)
	return err
}
