package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/medsched/api/handler"
)

type Handlers struct {
	Auth        *apiHandler.AuthHandler
	Directory   *apiHandler.DirectoryHandler
	Appointment *apiHandler.AppointmentHandler
	Health      *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/register", handlers.Auth.Register)
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))
	r.GET("/api/v1/auth/session", authMiddleware(handlers.Auth.Session))

	// Directory
	r.GET("/api/v1/doctors", authMiddleware(handlers.Directory.Doctors))
	r.GET("/api/v1/users", authMiddleware(handlers.Directory.Users))
	r.GET("/api/v1/patients", authMiddleware(handlers.Directory.Patients))

	// Appointments
	r.GET("/api/v1/appointments", authMiddleware(handlers.Appointment.List))
	r.POST("/api/v1/appointments", authMiddleware(handlers.Appointment.Create))
	r.PUT("/api/v1/appointments/{id}/status", authMiddleware(handlers.Appointment.UpdateStatus))

	return r
}
