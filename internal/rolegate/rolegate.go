// Package rolegate decides which view a browser session gets for a
// requested route. It is a pure policy function: the web client
// applies the decision, and keeping it free of I/O makes the
// access rules testable on their own. An earlier revision of the
// client defaulted to the patient view when role resolution
// failed; that is exactly the bug the explicit ViewError state
// exists to prevent.
package rolegate

import "github.com/careconnect/booking-api/internal/model"

// View is the rendering decision for a session/route pair.
type View int

const (
	// ViewLanding is the public landing page shown to visitors.
	ViewLanding View = iota
	// ViewStatic is an informational page, always public.
	ViewStatic
	// ViewLoading is shown while role resolution is in flight; a
	// session must never fall through to a dashboard before its
	// role is known.
	ViewLoading
	// ViewError is shown when role resolution failed. Distinct
	// from "no role": the session is authenticated but we do not
	// know who they are, so no dashboard may render.
	ViewError
	// ViewPatientDashboard and ViewDoctorDashboard are the
	// role-specific home views.
	ViewPatientDashboard
	ViewDoctorDashboard
	// ViewNotPermitted is shown when an authenticated session asks
	// for the other role's route. Deliberately not a 404: the
	// route exists, the caller may not use it.
	ViewNotPermitted
	// ViewNotFound is shown for unknown routes.
	ViewNotFound
)

// Session is the authentication state the client accumulated so
// far. Role is empty until resolution succeeds.
type Session struct {
	Authenticated bool
	RolePending   bool // resolution request still in flight
	RoleFailed    bool // resolution failed (network/parse error)
	Role          string
}

// static informational pages, public in every state
var staticRoutes = map[string]bool{
	"/terms":      true,
	"/privacy":    true,
	"/learn-more": true,
}

// routes reachable by exactly one role
var patientRoutes = map[string]bool{
	"/search":            true,
	"/dashboard/patient": true,
}

var doctorRoutes = map[string]bool{
	"/dashboard/doctor": true,
}

// routes shared by both roles
var sharedRoutes = map[string]bool{
	"/":             true,
	"/appointments": true,
	"/settings":     true,
}

// Resolve returns the view for the given session and route.
func Resolve(s Session, route string) View {
	if staticRoutes[route] {
		return ViewStatic
	}
	if !s.Authenticated {
		return ViewLanding
	}
	if s.RolePending {
		return ViewLoading
	}
	if s.RoleFailed || !model.ValidRole(s.Role) {
		return ViewError
	}

	known := sharedRoutes[route] || patientRoutes[route] || doctorRoutes[route]
	if !known {
		return ViewNotFound
	}

	switch s.Role {
	case model.RoleDoctor:
		if patientRoutes[route] {
			return ViewNotPermitted
		}
		return ViewDoctorDashboard
	default: // patient
		if doctorRoutes[route] {
			return ViewNotPermitted
		}
		return ViewPatientDashboard
	}
}
