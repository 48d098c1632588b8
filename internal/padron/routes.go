package padron

import (
	"net/http"

	"github.com/ParticipaSonora/PS-Backend/internal/middleware"
	"github.com/ParticipaSonora/PS-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Auth)

	// Lookups: any authenticated non-ciudadano role.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRoles(
			utils.RoleAdmin, utils.RolePresidente,
			utils.RoleLiderEstatal, utils.RoleLiderRegional,
			utils.RoleLiderMunicipal, utils.RoleLiderZona,
			utils.RoleCapturista,
		))
		r.Post("/buscar", SearchHandler)
		r.Get("/verificar-elector/{elector}", VerifyElectorHandler)
		r.Get("/estadisticas", StatsHandler)
	})

	// Ingestion and assignment are admin-only.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRoles(utils.RoleAdmin))
		r.Post("/analizar-dbf", AnalyzeDBFHandler)
		r.Post("/importar-dbf", ImportDBFHandler)
		r.Post("/importar-dbf-chunked", ImportDBFChunkedHandler)
		r.Post("/importar-excel", ImportExcelHandler)
		r.Post("/importar-datos-masivos", ImportBulkDataHandler)
		r.Post("/confirmar-importacion", ConfirmImportHandler)
		r.Post("/asignar", AssignHandler)
		r.Post("/liberar", ReleaseHandler)
		r.Delete("/limpiar", ClearHandler)
	})

	return r
}
