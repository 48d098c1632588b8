package eventos

import (
	"net/http"

	"github.com/ParticipaSonora/PS-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Auth)

	r.Get("/", ListHandler)
	r.Post("/", CreateHandler)
	r.Post("/buscar", SearchHandler)
	r.Get("/{id}", GetHandler)
	r.Put("/{id}", UpdateHandler)
	r.Delete("/{id}", DeleteHandler)

	return r
}
