// Package repository defines the storage contracts for the user
// directory and the appointment ledger, together with the sentinel
// error values shared by all implementations. Handlers compare
// against these sentinels with errors.Is and translate them into
// HTTP status codes.
package repository

import "errors"

// ErrNotFound is returned when a record does not exist. Handlers
// should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation
// on a record they are not a party to, such as cancelling someone
// else's appointment. Handlers should translate this into 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a state transition cannot be
// performed because of the record's current status, such as
// cancelling an appointment that is already cancelled. Handlers
// should translate this into 409.
var ErrConflict = errors.New("conflict")

// ErrExternalIDExists is returned when a directory record with the
// same external identity id already exists. One external identity
// maps to at most one user.
var ErrExternalIDExists = errors.New("external id already exists")
