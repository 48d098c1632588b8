package perfiles

import (
	"net/http"

	"github.com/ParticipaSonora/PS-Backend/internal/middleware"
	"github.com/ParticipaSonora/PS-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Auth)

	r.Get("/mi-configuracion", MyConfigHandler)
	r.Get("/configuracion/{rol}", GetProfileHandler)
	r.Get("/configuracion-dashboard/{rol}", GetDashboardHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRoles(utils.RoleAdmin))
		r.Put("/configuracion/{rol}", UpdateProfileHandler)
		r.Put("/configuracion-dashboard/{rol}", UpdateDashboardHandler)
	})

	return r
}
