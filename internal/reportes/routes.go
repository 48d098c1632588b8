package reportes

import (
	"net/http"

	"github.com/ParticipaSonora/PS-Backend/internal/middleware"
	"github.com/ParticipaSonora/PS-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

// SetupRoutes serves /reportes-ciudadanos.
func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	// Anonymous intake, throttled.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(rate.Limit(2), 5))
		r.Post("/publico", CreatePublicHandler)
	})
	r.Get("/tipos", ListTypesHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth)
		r.Post("/", CreateHandler)
		r.Post("/foto", UploadPhotoHandler)
		r.Get("/{id}", GetHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRoles(utils.RoleAdmin))
			r.Get("/", ListHandler)
			r.Put("/{id}/estado", TransitionHandler)
			r.Put("/tipos", UpdateTypesHandler)
		})
	})

	return r
}

// SetupHygieneRoutes serves /admin/database.
func SetupHygieneRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Auth)
	r.Use(middleware.RequireRoles(utils.RoleAdmin))

	r.Post("/reportes/previsualizar", PreviewDeleteHandler)
	r.Post("/reportes/eliminar", DeleteHandler)

	return r
}
