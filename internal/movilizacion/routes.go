package movilizacion

import (
	"net/http"

	"github.com/ParticipaSonora/PS-Backend/internal/middleware"
	"github.com/ParticipaSonora/PS-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
)

// SetupVehicleRoutes serves /vehiculos. The whole surface belongs to admin
// and leaders.
func SetupVehicleRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Auth)
	r.Use(middleware.RequireLeader)

	r.Get("/", ListVehiclesHandler)
	r.Get("/{id}", GetVehicleHandler)
	r.Post("/", CreateVehicleHandler)
	r.Put("/{id}", UpdateVehicleHandler)
	r.Delete("/{id}", DeleteVehicleHandler)

	return r
}

// SetupAssignmentRoutes serves /movilizaciones, including the bulk endpoint
// and the live-position feed. Leader-only, reads included.
func SetupAssignmentRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Auth)
	r.Use(middleware.RequireLeader)

	r.Get("/", ListAssignmentsHandler)
	r.Get("/posiciones", ListPositionsHandler)
	r.Post("/", CreateAssignmentHandler)
	r.Post("/masivo", BulkAssignmentHandler)
	r.Post("/posicion", UpsertPositionHandler)
	r.Post("/{id}/checkin", AssignmentCheckinHandler)
	r.Delete("/{id}", DeleteAssignmentHandler)

	return r
}

// SetupAttendanceRoutes serves /asistencias. Capturistas participate (they
// run check-in tables for their own events), ciudadanos do not; the handlers
// narrow writes further against the event's organizer.
func SetupAttendanceRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Auth)
	r.Use(middleware.RequireRoles(
		utils.RoleAdmin, utils.RolePresidente,
		utils.RoleLiderEstatal, utils.RoleLiderRegional,
		utils.RoleLiderMunicipal, utils.RoleLiderZona,
		utils.RoleCapturista,
	))

	r.Get("/", ListAttendanceHandler)
	r.Post("/", CreateAttendanceHandler)
	r.Get("/elector/{elector}", AttendanceByElectorHandler)
	r.Put("/{id}", UpdateAttendanceHandler)
	r.Post("/{id}/checkin", AttendanceCheckinHandler)

	return r
}
