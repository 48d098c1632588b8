package personas

import (
	"net/http"

	"github.com/ParticipaSonora/PS-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	// Person self-registration runs on an invite token, not a bearer token.
	r.Post("/registro-invitacion", RegisterWithInviteHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth)
		r.Get("/", ListHandler)
		r.Post("/", CreateHandler)
		r.Post("/buscar", SearchHandler)
		r.Get("/ubicaciones", UbicacionesHandler)
		r.Get("/con-usuario-registro", ConUsuarioRegistroHandler)
		r.Post("/invitaciones", MintInviteHandler)
		r.Get("/{id}", GetHandler)
		r.Put("/{id}", UpdateHandler)
		r.Delete("/{id}", DeleteHandler)
	})

	return r
}
