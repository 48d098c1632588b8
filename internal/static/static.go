// Package static serves the uploaded assets: the organization logo, report
// photos and the bundled frontend files.
package static

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ParticipaSonora/PS-Backend/internal/httpx"
	"github.com/ParticipaSonora/PS-Backend/internal/media"
	"github.com/go-chi/chi/v5"
)

var store *media.Store

func Init(s *media.Store) { store = s }

func logoCandidates() []string {
	return []string{"logo.png", "logo.jpg", "logo.webp"}
}

// LogoHandler serves whichever logo file an admin last uploaded.
func LogoHandler(w http.ResponseWriter, r *http.Request) {
	for _, name := range logoCandidates() {
		path := filepath.Join(store.Root(), name)
		if _, err := os.Stat(path); err == nil {
			http.ServeFile(w, r, path)
			return
		}
	}
	httpx.Error(w, http.StatusNotFound, "Logo no configurado")
}

// UploadLogoHandler replaces the logo. Admin-gated at the router.
func UploadLogoHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(media.MaxPhotoBytes + 1024); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "formulario inválido")
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "falta el archivo \"logo\"")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
	default:
		httpx.Error(w, http.StatusUnprocessableEntity, "formato de imagen no soportado")
		return
	}
	if ext == ".jpeg" {
		ext = ".jpg"
	}

	data, err := io.ReadAll(io.LimitReader(file, media.MaxPhotoBytes+1))
	if err != nil || len(data) > media.MaxPhotoBytes {
		httpx.Error(w, http.StatusRequestEntityTooLarge, "La imagen excede el tamaño permitido")
		return
	}

	// One logo at a time: drop any previous variant first.
	for _, name := range logoCandidates() {
		os.Remove(filepath.Join(store.Root(), name))
	}
	if err := os.WriteFile(filepath.Join(store.Root(), "logo"+ext), data, 0o644); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al guardar el logo")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"url": "/logo"})
}

// UploadsHandler serves stored photos by name, path escapes rejected by the
// store.
func UploadsHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	f, err := store.Open(name)
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "Archivo no encontrado")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al leer el archivo")
		return
	}
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// FilesHandler exposes the ./static directory (frontend bundle, fonts).
func FilesHandler() http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.Dir("./static")))
}
