package perfiles

import (
	"net/http"

	"github.com/ParticipaSonora/PS-Backend/internal/db"
	"github.com/ParticipaSonora/PS-Backend/internal/httpx"
	"github.com/ParticipaSonora/PS-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
)

func roleParam(r *http.Request) (string, bool) {
	role := chi.URLParam(r, "rol")
	return role, utils.ValidRole(role)
}

func GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	role, ok := roleParam(r)
	if !ok {
		httpx.Error(w, http.StatusUnprocessableEntity, "rol desconocido")
		return
	}
	var cfg ProfileConfig
	if err := db.DB.First(&cfg, "rol = ?", role).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Configuración no encontrada")
		return
	}
	httpx.JSON(w, http.StatusOK, cfg)
}

func UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	role, ok := roleParam(r)
	if !ok {
		httpx.Error(w, http.StatusUnprocessableEntity, "rol desconocido")
		return
	}

	var input struct {
		Modulos       []string `json:"modulos" validate:"required,min=1,dive,required"`
		Tema          string   `json:"tema" validate:"omitempty,oneof=claro oscuro"`
		ColorPrimario string   `json:"color_primario" validate:"omitempty,hexcolor"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var cfg ProfileConfig
	if err := db.DB.First(&cfg, "rol = ?", role).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Configuración no encontrada")
		return
	}
	cfg.Modulos = input.Modulos
	if input.Tema != "" {
		cfg.Tema = input.Tema
	}
	if input.ColorPrimario != "" {
		cfg.ColorPrimario = input.ColorPrimario
	}
	if err := db.DB.Save(&cfg).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al actualizar")
		return
	}
	httpx.JSON(w, http.StatusOK, cfg)
}

func GetDashboardHandler(w http.ResponseWriter, r *http.Request) {
	role, ok := roleParam(r)
	if !ok {
		httpx.Error(w, http.StatusUnprocessableEntity, "rol desconocido")
		return
	}
	var cfg DashboardConfig
	if err := db.DB.First(&cfg, "rol = ?", role).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Configuración no encontrada")
		return
	}
	httpx.JSON(w, http.StatusOK, cfg)
}

func UpdateDashboardHandler(w http.ResponseWriter, r *http.Request) {
	role, ok := roleParam(r)
	if !ok {
		httpx.Error(w, http.StatusUnprocessableEntity, "rol desconocido")
		return
	}

	var input struct {
		Widgets  []string `json:"widgets" validate:"required,min=1,dive,required"`
		Columnas int      `json:"columnas" validate:"omitempty,gte=1,lte=4"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var cfg DashboardConfig
	if err := db.DB.First(&cfg, "rol = ?", role).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Configuración no encontrada")
		return
	}
	cfg.Widgets = input.Widgets
	if input.Columnas != 0 {
		cfg.Columnas = input.Columnas
	}
	if err := db.DB.Save(&cfg).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al actualizar")
		return
	}
	httpx.JSON(w, http.StatusOK, cfg)
}

// MyConfigHandler bundles both bags for the caller's own role.
func MyConfigHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())

	var profile ProfileConfig
	if err := db.DB.First(&profile, "rol = ?", p.Role).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Configuración no encontrada")
		return
	}
	var dashboard DashboardConfig
	if err := db.DB.First(&dashboard, "rol = ?", p.Role).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Configuración no encontrada")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"perfil":    profile,
		"dashboard": dashboard,
	})
}
