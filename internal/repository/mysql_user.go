package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/careconnect/booking-api/internal/model"
)

// MySQLStore implements Store on top of a MySQL database. State
// transitions run inside transactions with row locks so concurrent
// attempts on the same appointment observe a consistent status.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore returns a MySQLStore bound to the given database.
func NewMySQLStore(db *sql.DB) *MySQLStore { return &MySQLStore{db: db} }

// DB exposes the underlying handle, mainly for health checks.
func (s *MySQLStore) DB() *sql.DB { return s.db }

const userCols = "id, external_id, email, display_name, role, specialty, phone_number, profile_complete, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.ExternalID, &u.Email, &u.DisplayName, &u.Role,
		&u.Specialty, &u.PhoneNumber, &u.ProfileComplete, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUser inserts a directory record and reads back the stored
// row so defaults and timestamps are populated. MySQL error 1062
// (duplicate key on external_id) maps to ErrExternalIDExists.
func (s *MySQLStore) CreateUser(ctx context.Context, nu NewUser) (model.User, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (external_id, email, display_name, role, specialty, phone_number, profile_complete)
		 VALUES (?,?,?,?,?,?,?)`,
		nu.ExternalID, nu.Email, nu.DisplayName, nu.Role, nu.Specialty, nu.PhoneNumber, nu.ProfileComplete)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrExternalIDExists
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return s.UserByID(ctx, uint64(id))
}

// UserByExternalID fetches a user by its identity provider id.
func (s *MySQLStore) UserByExternalID(ctx context.Context, externalID string) (model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE external_id=? LIMIT 1", externalID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// UserByID fetches a user by id.
func (s *MySQLStore) UserByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// ListDoctors returns all doctor records in insertion order.
func (s *MySQLStore) ListDoctors(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userCols+" FROM users WHERE role=? ORDER BY id", model.RoleDoctor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateUser merges the provided optional fields into the record.
// The statement is built only from the fields that are present, so
// identity columns can never be touched here.
func (s *MySQLStore) UpdateUser(ctx context.Context, id uint64, upd model.UserUpdate) (model.User, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if upd.DisplayName != nil {
		sets = append(sets, "display_name=?")
		args = append(args, *upd.DisplayName)
	}
	if upd.Specialty != nil {
		sets = append(sets, "specialty=?")
		args = append(args, *upd.Specialty)
	}
	if upd.PhoneNumber != nil {
		sets = append(sets, "phone_number=?")
		args = append(args, *upd.PhoneNumber)
	}
	if upd.ProfileComplete != nil {
		sets = append(sets, "profile_complete=?")
		args = append(args, *upd.ProfileComplete)
	}
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := s.db.ExecContext(ctx,
			"UPDATE users SET "+strings.Join(sets, ", ")+", updated_at=NOW() WHERE id=?", args...); err != nil {
			return model.User{}, err
		}
	}
	// existence is settled by the read-back
	return s.UserByID(ctx, id)
}
