package noticias

import (
	"net/http"

	"github.com/ParticipaSonora/PS-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Auth)

	r.Get("/", ListHandler)
	r.Get("/banner", BannerHandler)
	r.Post("/", CreateHandler)
	r.Get("/{id}", GetHandler)
	r.Put("/{id}", UpdateHandler)
	r.Delete("/{id}", DeleteHandler)
	r.Post("/{id}/vista", ViewHandler)
	r.Post("/{id}/click", ClickHandler)
	r.Get("/{id}/comentarios", ListCommentsHandler)
	r.Post("/{id}/comentarios", CreateCommentHandler)
	r.Delete("/{id}/comentarios/{commentID}", DeleteCommentHandler)

	return r
}
