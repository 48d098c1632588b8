package informes

import (
	"net/http"

	"github.com/ParticipaSonora/PS-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes serves the aggregate views at /reportes. Every handler scopes
// its queries through the caller's visibility, so plain Auth suffices here.
func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Auth)

	r.Get("/personas", PersonsReportHandler)
	r.Get("/eventos", EventsReportHandler)
	r.Get("/eventos-historicos", HistoricalEventsReportHandler)
	r.Get("/asistencias-tiempo-real", LiveAttendanceHandler)
	r.Get("/movilizacion-vehiculos", VehiclesReportHandler)
	r.Get("/estructura-jerarquica", HierarchyReportHandler)

	return r
}
