package auth

import (
	"net/http"

	"github.com/ParticipaSonora/PS-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	// Public: credential exchange and self-serve registration.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(rate.Limit(5), 10))
		r.Post("/login", LoginHandler)
		r.Post("/token", TokenHandler)
		r.Post("/registro-ciudadano", RegisterCiudadanoHandler)
		r.Post("/registro-invitacion", RegisterWithInviteHandler)
		r.Get("/invitaciones/decodificar", DecodeInviteHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth)
		r.Post("/invitaciones", MintInviteHandler)
	})

	r.Mount("/users", SetupUserRoutes())

	return r
}

// SetupUserRoutes serves the user CRUD surface. It is mounted twice, under
// /auth/users and at /users, so both path forms resolve.
func SetupUserRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Auth)

	r.Get("/me", MeHandler)
	r.Get("/", ListUsersHandler)
	r.Post("/", CreateUserHandler)
	r.Get("/{id}", GetUserHandler)
	r.Put("/{id}", UpdateUserHandler)
	r.Delete("/{id}", DeleteUserHandler)
	r.Get("/{id}/subordinados", SubordinatesHandler)
	r.Put("/{id}/password", SetPasswordHandler)

	return r
}
