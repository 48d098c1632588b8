package reportes

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ParticipaSonora/PS-Backend/internal/auth"
	"github.com/ParticipaSonora/PS-Backend/internal/db"
	"github.com/ParticipaSonora/PS-Backend/internal/httpx"
	"github.com/ParticipaSonora/PS-Backend/internal/logging"
	"github.com/ParticipaSonora/PS-Backend/internal/media"
	"github.com/ParticipaSonora/PS-Backend/internal/metrics"
	"github.com/ParticipaSonora/PS-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

const publicListLimit = 100

// reportInput takes coordinates as pointers so a reading of exactly zero is
// not mistaken for an omitted field.
type reportInput struct {
	Titulo        string   `json:"titulo" validate:"required,max=150"`
	Descripcion   string   `json:"descripcion" validate:"required,max=2000"`
	Tipo          string   `json:"tipo" validate:"required"`
	Latitud       *float64 `json:"latitud" validate:"required,gte=-90,lte=90"`
	Longitud      *float64 `json:"longitud" validate:"required,gte=-180,lte=180"`
	Direccion     string   `json:"direccion" validate:"max=250"`
	Prioridad     string   `json:"prioridad"`
	Foto          string   `json:"foto"`
	EmailContacto string   `json:"email_contacto" validate:"omitempty,email"`
}

// attachPhoto resolves the inline payload to a stored URL when possible. A
// photo that cannot be stored never fails the submission; the report goes in
// without it.
func attachPhoto(report *CitizenReport, payload string) {
	if payload == "" {
		return
	}
	if Photos != nil {
		url, err := Photos.SaveBase64(payload)
		if err == nil {
			report.FotoURL = url
			return
		}
		logging.L().Warnw("citizen report photo discarded", "err", err)
	}
	// Inline shim: keep the raw payload when it fits the column.
	if len(payload) <= media.MaxInlineChars {
		report.FotoURL = payload
	}
}

func createReport(input reportInput, reporter *uint) (*CitizenReport, error) {
	types, err := ActiveTypes(db.DB)
	if err != nil {
		return nil, err
	}
	if !types[input.Tipo] {
		return nil, errTipoDesconocido
	}

	priority := input.Prioridad
	if priority == "" {
		priority = PrioridadNormal
	}
	if !ValidPriority(priority) {
		return nil, errPrioridadInvalida
	}

	report := &CitizenReport{
		Titulo:        input.Titulo,
		Descripcion:   input.Descripcion,
		Tipo:          input.Tipo,
		Estado:        EstadoPendiente,
		Prioridad:     priority,
		Latitud:       *input.Latitud,
		Longitud:      *input.Longitud,
		Direccion:     input.Direccion,
		EmailContacto: input.EmailContacto,
		Publico:       true,
		Activo:        true,
		IDReportante:  reporter,
	}
	attachPhoto(report, input.Foto)

	if err := db.DB.Create(report).Error; err != nil {
		return nil, err
	}
	metrics.CitizenReports.Inc()
	return report, nil
}

var (
	errTipoDesconocido   = errors.New("reportes: tipo de reporte desconocido")
	errPrioridadInvalida = errors.New("reportes: prioridad inválida")
)

func writeCreateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errTipoDesconocido):
		httpx.Error(w, http.StatusUnprocessableEntity, "Tipo de reporte desconocido")
	case errors.Is(err, errPrioridadInvalida):
		httpx.Error(w, http.StatusUnprocessableEntity, "Prioridad inválida")
	default:
		logging.L().Errorw("creating citizen report", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "Error al crear el reporte")
	}
}

// CreateHandler files a report bound to the current principal.
func CreateHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())

	var input reportInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	report, err := createReport(input, &p.ID)
	if err != nil {
		writeCreateError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, report)
}

// CreatePublicHandler files an anonymous report. Rate-limited at the router.
func CreatePublicHandler(w http.ResponseWriter, r *http.Request) {
	var input reportInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	report, err := createReport(input, nil)
	if err != nil {
		writeCreateError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, report)
}

// UploadPhotoHandler stores a photo ahead of the report and returns its URL.
func UploadPhotoHandler(w http.ResponseWriter, r *http.Request) {
	if Photos == nil {
		httpx.Error(w, http.StatusServiceUnavailable, "Almacenamiento de fotos no disponible")
		return
	}
	if err := r.ParseMultipartForm(media.MaxPhotoBytes + 1024); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "formulario inválido")
		return
	}
	file, header, err := r.FormFile("foto")
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "falta el archivo \"foto\"")
		return
	}
	defer file.Close()

	url, err := Photos.Save(file, strings.ToLower(filepath.Ext(header.Filename)))
	if err != nil {
		if errors.Is(err, media.ErrTooLarge) {
			httpx.Error(w, http.StatusRequestEntityTooLarge, "La foto excede el tamaño permitido")
			return
		}
		httpx.Error(w, http.StatusInternalServerError, "Error al guardar la foto")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"url": url})
}

// ListHandler gives the triage view with optional estado/tipo filters.
func ListHandler(w http.ResponseWriter, r *http.Request) {
	q := db.DB.Where("activo = ?", true).Order("fecha_creacion DESC")
	if v := r.URL.Query().Get("estado"); v != "" {
		q = q.Where("estado = ?", v)
	}
	if v := r.URL.Query().Get("tipo"); v != "" {
		q = q.Where("tipo = ?", v)
	}

	var reports []CitizenReport
	if err := q.Limit(1000).Find(&reports).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	httpx.JSON(w, http.StatusOK, reports)
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}
	var report CitizenReport
	if err := db.DB.First(&report, "id = ? AND activo = ?", id, true).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Reporte no encontrado")
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// TransitionHandler moves a report through the state machine. Admin-only;
// terminal states never move again.
func TransitionHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	if !auth.CanTriageReports(p) {
		httpx.Error(w, http.StatusForbidden, "Solo administradores")
		return
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	var input struct {
		Estado string `json:"estado" validate:"required"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if !ValidState(input.Estado) {
		httpx.Error(w, http.StatusUnprocessableEntity, "Estado desconocido")
		return
	}

	var report CitizenReport
	if err := db.DB.First(&report, "id = ? AND activo = ?", id, true).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Reporte no encontrado")
		return
	}
	if IsTerminal(report.Estado) {
		httpx.Error(w, http.StatusConflict, "El reporte está en un estado terminal")
		return
	}
	if !CanTransition(report.Estado, input.Estado) {
		httpx.Error(w, http.StatusConflict,
			"Transición no permitida de "+report.Estado+" a "+input.Estado)
		return
	}

	updates := map[string]interface{}{
		"estado":                 input.Estado,
		"id_admin_actualizacion": p.ID,
	}
	if input.Estado == EstadoResuelto {
		updates["fecha_resolucion"] = time.Now().UTC()
	}
	if err := db.DB.Model(&report).Updates(updates).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al actualizar")
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// PublicListHandler is the anonymous map feed: active and public reports,
// newest first, bounded.
func PublicListHandler(w http.ResponseWriter, r *http.Request) {
	var reports []CitizenReport
	err := db.DB.Where("activo = ? AND publico = ?", true, true).
		Order("fecha_creacion DESC").
		Limit(publicListLimit).
		Find(&reports).Error
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	httpx.JSON(w, http.StatusOK, reports)
}

// ListTypesHandler returns the active report types for form dropdowns.
func ListTypesHandler(w http.ResponseWriter, r *http.Request) {
	var registry TypeRegistry
	if err := db.DB.First(&registry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSON(w, http.StatusOK, map[string]interface{}{"tipos_activos": defaultTypes})
			return
		}
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	httpx.JSON(w, http.StatusOK, registry)
}

// UpdateTypesHandler toggles the closed type set. Admin-only at the router.
func UpdateTypesHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TiposActivos []string `json:"tipos_activos" validate:"required,min=1,dive,required"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var registry TypeRegistry
	if err := db.DB.First(&registry).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	registry.TiposActivos = input.TiposActivos
	if err := db.DB.Save(&registry).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al actualizar")
		return
	}
	httpx.JSON(w, http.StatusOK, registry)
}

// ActiveTypes loads the registry as a set.
func ActiveTypes(conn *gorm.DB) (map[string]bool, error) {
	var registry TypeRegistry
	err := conn.First(&registry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		registry.TiposActivos = defaultTypes
	} else if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(registry.TiposActivos))
	for _, t := range registry.TiposActivos {
		set[t] = true
	}
	return set, nil
}
