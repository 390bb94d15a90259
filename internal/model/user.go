package model

import "time"

// Role values stored in users.role. A role is assigned when the
// directory record is created and never changes afterwards; it
// decides which views and endpoints the account may use.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// ValidRole reports whether s is one of the known role values.
func ValidRole(s string) bool {
	return s == RolePatient || s == RoleDoctor
}

// User represents a directory record as stored in the `users` table.
// The record binds the stable id issued by the external identity
// provider (ExternalID) to an application role. Handlers define
// separate response types with JSON tags; this struct mirrors the
// storage schema.
//
// Fields:
//  ID              – primary key identifier, assigned on creation.
//  ExternalID      – unique id supplied by the identity provider; immutable.
//  Email           – contact email address.
//  DisplayName     – optional display name.
//  Role            – "patient" or "doctor"; fixed at creation.
//  Specialty       – optional medical specialty; meaningful for doctors.
//  PhoneNumber     – optional phone number.
//  ProfileComplete – whether the user finished onboarding.
//  CreatedAt       – timestamp of creation.
//  UpdatedAt       – timestamp of last update.
type User struct {
	ID              uint64    // users.id
	ExternalID      string    // users.external_id
	Email           string    // users.email
	DisplayName     *string   // users.display_name (nullable)
	Role            string    // users.role
	Specialty       *string   // users.specialty (nullable)
	PhoneNumber     *string   // users.phone_number (nullable)
	ProfileComplete bool      // users.profile_complete
	CreatedAt       time.Time // users.created_at
	UpdatedAt       time.Time // users.updated_at
}

// UserUpdate carries the optional profile fields that may be merged
// into an existing record. Nil pointers mean "leave unchanged".
// Identity fields (ID, ExternalID, Email, Role) are deliberately
// absent: no operation redefines them after creation.
type UserUpdate struct {
	DisplayName     *string
	Specialty       *string
	PhoneNumber     *string
	ProfileComplete *bool
}
