package eventos

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ParticipaSonora/PS-Backend/internal/auth"
	"github.com/ParticipaSonora/PS-Backend/internal/db"
	"github.com/ParticipaSonora/PS-Backend/internal/httpx"
	"github.com/ParticipaSonora/PS-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
)

type eventInput struct {
	Nombre        string    `json:"nombre" validate:"required"`
	Descripcion   string    `json:"descripcion"`
	Fecha         time.Time `json:"fecha" validate:"required"`
	Lugar         string    `json:"lugar"`
	Tipo          string    `json:"tipo"`
	IDOrganizador *uint     `json:"id_organizador"`
	Seccion       string    `json:"seccion"`
	Colonia       string    `json:"colonia"`
}

// ListHandler splits active from historical with ?activos=true|false.
func ListHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())

	q := db.DB.Scopes(auth.EventScope(p)).Where("activo = ?", true)
	cutoff := time.Now().Add(-historicalCutoff)
	switch r.URL.Query().Get("activos") {
	case "true":
		q = q.Where("fecha >= ?", cutoff)
	case "false":
		q = q.Where("fecha < ?", cutoff)
	}

	var events []Event
	if err := q.Order("fecha DESC").Limit(500).Find(&events).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	httpx.JSON(w, http.StatusOK, events)
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	var event Event
	if err := db.DB.Scopes(auth.EventScope(p)).
		First(&event, "id = ? AND activo = ?", id, true).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Evento no encontrado")
		return
	}
	httpx.JSON(w, http.StatusOK, event)
}

func CreateHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())

	var input eventInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	organizer := p.ID
	if input.IDOrganizador != nil {
		organizer = *input.IDOrganizador
	}
	if !auth.CanWriteEvent(p, organizer) {
		httpx.Error(w, http.StatusForbidden, "Fuera de tu estructura")
		return
	}

	// The organizer must exist, be active and hold a leader role.
	org, err := auth.FindActiveUser(db.DB, organizer)
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "organizador inexistente")
		return
	}
	if !utils.IsLeader(org.Rol) && org.Rol != utils.RoleAdmin {
		httpx.Error(w, http.StatusUnprocessableEntity, "el organizador debe ser un líder")
		return
	}

	event := Event{
		Nombre:        strings.TrimSpace(input.Nombre),
		Descripcion:   input.Descripcion,
		Fecha:         input.Fecha.UTC(),
		Lugar:         input.Lugar,
		Tipo:          input.Tipo,
		IDOrganizador: organizer,
		Seccion:       input.Seccion,
		Colonia:       input.Colonia,
		Activo:        true,
	}
	if err := db.DB.Create(&event).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al crear el evento")
		return
	}
	httpx.JSON(w, http.StatusCreated, event)
}

func UpdateHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	var event Event
	if err := db.DB.First(&event, "id = ? AND activo = ?", id, true).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Evento no encontrado")
		return
	}
	if !auth.CanWriteEvent(p, event.IDOrganizador) {
		httpx.Error(w, http.StatusForbidden, "Fuera de tu estructura")
		return
	}

	var input eventInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	updates := map[string]interface{}{
		"nombre":      strings.TrimSpace(input.Nombre),
		"descripcion": input.Descripcion,
		"fecha":       input.Fecha.UTC(),
		"lugar":       input.Lugar,
		"tipo":        input.Tipo,
		"seccion":     input.Seccion,
		"colonia":     input.Colonia,
	}
	if err := db.DB.Model(&event).Updates(updates).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al actualizar")
		return
	}
	httpx.JSON(w, http.StatusOK, event)
}

func DeleteHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	var event Event
	if err := db.DB.First(&event, "id = ? AND activo = ?", id, true).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Evento no encontrado")
		return
	}
	if !auth.CanWriteEvent(p, event.IDOrganizador) {
		httpx.Error(w, http.StatusForbidden, "Fuera de tu estructura")
		return
	}

	if err := db.DB.Model(&event).Update("activo", false).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al desactivar")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "Evento desactivado"})
}

func SearchHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())

	var input struct {
		Nombre  string     `json:"nombre"`
		Tipo    string     `json:"tipo"`
		Seccion string     `json:"seccion"`
		Desde   *time.Time `json:"desde"`
		Hasta   *time.Time `json:"hasta"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	q := db.DB.Scopes(auth.EventScope(p)).Where("activo = ?", true)
	if input.Nombre != "" {
		q = q.Where("LOWER(unaccent(nombre)) LIKE ?", "%"+utils.Fold(input.Nombre)+"%")
	}
	if input.Tipo != "" {
		q = q.Where("tipo = ?", input.Tipo)
	}
	if input.Seccion != "" {
		q = q.Where("seccion = ?", input.Seccion)
	}
	if input.Desde != nil {
		q = q.Where("fecha >= ?", input.Desde)
	}
	if input.Hasta != nil {
		q = q.Where("fecha <= ?", input.Hasta)
	}

	var events []Event
	if err := q.Order("fecha DESC").Limit(500).Find(&events).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	httpx.JSON(w, http.StatusOK, events)
}
