package v1

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/healthgrid/hospital-api/internal/config"
	"github.com/healthgrid/hospital-api/internal/domain"
	"github.com/healthgrid/hospital-api/pkg/auth"
	"github.com/healthgrid/hospital-api/pkg/metrics"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth         *AuthHandler
	Appointments *AppointmentHandler
	Doctors      *DoctorHandler
	Departments  *DepartmentHandler
}

// NewRouter wires middleware and all v1 routes onto a gin engine.
func NewRouter(cfg *config.Config, log *zap.Logger, collector *metrics.Collector, jwtManager *auth.JWTManager, h Handlers) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(Metrics(collector))
	r.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowedOrigins,
		AllowMethods: cfg.CORS.AllowedMethods,
		AllowHeaders: cfg.CORS.AllowedHeaders,
		MaxAge:       cfg.CORS.MaxAge,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.App.Name})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := r.Group("/api/v1")

	// Public routes. Slot listing and the directory back the booking screen
	// before login completes.
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.GET("/slots", h.Appointments.Slots)
	api.GET("/departments", h.Departments.List)
	api.GET("/departments/:id", h.Departments.Get)
	api.GET("/doctors", h.Doctors.List)
	api.GET("/doctors/:id", h.Doctors.Get)

	authed := api.Group("")
	authed.Use(Authenticate(jwtManager))

	authed.POST("/auth/change-password", h.Auth.ChangePassword)

	authed.GET("/appointments/availability", h.Appointments.CheckAvailability)
	authed.POST("/appointments", h.Appointments.Create)
	authed.GET("/appointments/:id", h.Appointments.Get)
	authed.POST("/appointments/:id/cancel", h.Appointments.Cancel)
	authed.GET("/appointments/patient/:patientId", h.Appointments.ListByPatient)
	authed.GET("/appointments/doctor/:doctorId", h.Appointments.ListByDoctor)

	staff := authed.Group("")
	staff.Use(RequireRoles(domain.RoleAdmin, domain.RoleDoctor))
	staff.GET("/appointments/schedule", h.Appointments.Schedule)
	staff.PATCH("/appointments/:id/status", h.Appointments.UpdateStatus)
	staff.GET("/doctors/me", h.Doctors.Me)
	staff.GET("/doctors/:id/appointment-count", h.Doctors.AppointmentCount)

	admin := authed.Group("")
	admin.Use(RequireRoles(domain.RoleAdmin))
	admin.GET("/appointments", h.Appointments.List)
	admin.GET("/appointments/stats", h.Appointments.Stats)
	admin.GET("/appointments/recent", h.Appointments.Recent)
	admin.POST("/appointments/:id/admin-cancel", h.Appointments.AdminCancel)
	admin.POST("/departments", h.Departments.Create)
	admin.PUT("/departments/:id", h.Departments.Update)
	admin.DELETE("/departments/:id", h.Departments.Delete)
	admin.PUT("/doctors/:id", h.Doctors.Update)
	admin.PATCH("/doctors/:id/availability", h.Doctors.SetAvailability)

	return r
}
