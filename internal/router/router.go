// Package router wires the API routes to their handlers and
// middleware chains.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/careconnect/booking-api/internal/config"
	"github.com/careconnect/booking-api/internal/handler"
	"github.com/careconnect/booking-api/internal/middleware"
	"github.com/careconnect/booking-api/internal/model"
	"github.com/careconnect/booking-api/internal/repository"
)

// Deps carries everything route registration needs.
type Deps struct {
	Cfg          config.Config
	Store        repository.Store
	Redis        *redis.Client // may be nil; cache and limiter become no-ops
	Users        *handler.UserHandler
	Appointments *handler.AppointmentHandler
	Availability *handler.AvailabilityHandler
}

// Register sets up the full route table:
//
//	public:        health, doctor directory, doctor availability
//	authenticated: user registration, current-user record
//	resolved:      everything touching the ledger or the profile
//
// Authenticated routes only require a valid identity credential;
// resolved routes additionally require a directory record, and
// role-gated routes sit behind RequireRole on top of that.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	limiter := middleware.RateLimit(config.LoadRateLimitConfig(), d.Redis)
	cache := middleware.CacheResponses(config.LoadCacheConfig(), d.Redis)

	api := e.Group("/api", limiter)

	// Public directory reads. Cached; the cache is advisory and is
	// never consulted for authorization decisions.
	api.GET("/users/doctors", d.Users.ListDoctors, cache)
	api.GET("/doctors/:id/availability", d.Availability.ListForDoctor, cache)

	// Credential required, directory record not yet: this is where
	// a fresh identity registers its record.
	authed := api.Group("", middleware.Authenticate(d.Cfg.JWTSecret))
	authed.POST("/users", d.Users.Create)

	// Credential and directory record both required.
	resolved := authed.Group("", middleware.ResolveUser(d.Store))
	resolved.GET("/users/me", d.Users.Me)
	resolved.PATCH("/users/me", d.Users.UpdateMe)

	resolved.GET("/appointments/me", d.Appointments.ListMe)
	resolved.POST("/appointments/:id/cancel", d.Appointments.Cancel)

	patient := resolved.Group("", middleware.RequireRole(model.RolePatient))
	patient.GET("/appointments/patient", d.Appointments.ListPatient)
	patient.POST("/appointments", d.Appointments.Create)

	doctor := resolved.Group("", middleware.RequireRole(model.RoleDoctor))
	doctor.GET("/appointments/doctor", d.Appointments.ListDoctor)
	doctor.POST("/appointments/:id/confirm", d.Appointments.Confirm)
	doctor.POST("/availability", d.Availability.Create)
	doctor.DELETE("/availability/:id", d.Availability.Delete)
}
