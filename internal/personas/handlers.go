package personas

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ParticipaSonora/PS-Backend/internal/auth"
	"github.com/ParticipaSonora/PS-Backend/internal/db"
	"github.com/ParticipaSonora/PS-Backend/internal/geocoding"
	"github.com/ParticipaSonora/PS-Backend/internal/httpx"
	"github.com/ParticipaSonora/PS-Backend/internal/logging"
	"github.com/ParticipaSonora/PS-Backend/internal/token"
	"github.com/ParticipaSonora/PS-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
)

type personInput struct {
	Nombre             string   `json:"nombre" validate:"required"`
	Telefono           string   `json:"telefono"`
	Direccion          string   `json:"direccion"`
	Edad               *int     `json:"edad" validate:"omitempty,gte=18,lte=120"`
	Sexo               string   `json:"sexo" validate:"omitempty,oneof=M F"`
	ClaveElector       string   `json:"clave_elector"`
	CURP               string   `json:"curp"`
	NumeroEmision      string   `json:"numero_emision"`
	Seccion            string   `json:"seccion"`
	Distrito           string   `json:"distrito"`
	Municipio          string   `json:"municipio"`
	Estado             string   `json:"estado"`
	Colonia            string   `json:"colonia"`
	CP                 string   `json:"cp"`
	Latitud            *float64 `json:"latitud"`
	Longitud           *float64 `json:"longitud"`
	AceptaPoliticas    bool     `json:"acepta_politicas"`
	IDLiderResponsable *uint    `json:"id_lider_responsable"`
}

func ListHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())

	var persons []Person
	if err := db.DB.Scopes(auth.PersonScope(p)).
		Where("activo = ?", true).Order("id").Limit(1000).Find(&persons).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	httpx.JSON(w, http.StatusOK, persons)
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	var person Person
	if err := db.DB.Scopes(auth.PersonScope(p)).
		First(&person, "id = ? AND activo = ?", id, true).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Persona no encontrada")
		return
	}
	httpx.JSON(w, http.StatusOK, person)
}

func CreateHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	if !auth.CanCreatePersons(p) {
		httpx.Error(w, http.StatusForbidden, "Sin permiso para registrar personas")
		return
	}

	var input personInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	leader := p.ID
	if input.IDLiderResponsable != nil {
		leader = *input.IDLiderResponsable
	}
	if !auth.CanAssignLeader(p, leader) {
		httpx.Error(w, http.StatusForbidden, "El líder responsable está fuera de tu estructura")
		return
	}
	person, status, msg := createPerson(r.Context(), input, leader, p.ID)
	if person == nil {
		httpx.Error(w, status, msg)
		return
	}
	httpx.JSON(w, http.StatusCreated, person)
}

func createPerson(ctx context.Context, input personInput, leaderID, registrarID uint) (*Person, int, string) {
	if !validCoordinates(input.Latitud, input.Longitud) {
		return nil, http.StatusUnprocessableEntity, "coordenadas fuera de rango"
	}
	if _, err := auth.FindActiveUser(db.DB, leaderID); err != nil {
		return nil, http.StatusUnprocessableEntity, "líder responsable inexistente"
	}

	clave := strings.ToUpper(strings.TrimSpace(input.ClaveElector))
	if clave != "" {
		var existing Person
		if err := db.DB.First(&existing, "clave_elector = ? AND activo = ?", clave, true).Error; err == nil {
			return nil, http.StatusConflict, "La clave de elector ya está registrada"
		}
	}

	person := Person{
		Nombre:             strings.TrimSpace(input.Nombre),
		Telefono:           input.Telefono,
		Direccion:          input.Direccion,
		Edad:               input.Edad,
		Sexo:               input.Sexo,
		ClaveElector:       clave,
		CURP:               strings.ToUpper(strings.TrimSpace(input.CURP)),
		NumeroEmision:      input.NumeroEmision,
		Seccion:            input.Seccion,
		Distrito:           input.Distrito,
		Municipio:          input.Municipio,
		Estado:             input.Estado,
		Colonia:            input.Colonia,
		CP:                 input.CP,
		Latitud:            input.Latitud,
		Longitud:           input.Longitud,
		AceptaPoliticas:    input.AceptaPoliticas,
		IDLiderResponsable: leaderID,
		IDUsuarioRegistro:  registrarID,
		Activo:             true,
	}

	// Missing coordinates are filled best-effort; geocoding never blocks a
	// registration.
	if person.Latitud == nil || person.Longitud == nil {
		res := geocoding.Resolve(ctx, Geocoder, geocoding.Query{
			Calle: person.Direccion, Colonia: person.Colonia,
			Municipio: person.Municipio, Estado: person.Estado, CP: person.CP,
		})
		person.Latitud = &res.Lat
		person.Longitud = &res.Lng
	}

	if err := db.DB.Create(&person).Error; err != nil {
		logging.L().Errorw("creating person", "err", err)
		return nil, http.StatusInternalServerError, "Error al registrar la persona"
	}
	return &person, 0, ""
}

func UpdateHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	var person Person
	if err := db.DB.First(&person, "id = ? AND activo = ?", id, true).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Persona no encontrada")
		return
	}
	if !auth.CanEditPerson(p, person.IDLiderResponsable, person.IDUsuarioRegistro) {
		httpx.Error(w, http.StatusForbidden, "Fuera de tu estructura")
		return
	}

	var input personInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if !validCoordinates(input.Latitud, input.Longitud) {
		httpx.Error(w, http.StatusUnprocessableEntity, "coordenadas fuera de rango")
		return
	}

	updates := map[string]interface{}{
		"nombre":           strings.TrimSpace(input.Nombre),
		"telefono":         input.Telefono,
		"direccion":        input.Direccion,
		"edad":             input.Edad,
		"sexo":             input.Sexo,
		"seccion":          input.Seccion,
		"distrito":         input.Distrito,
		"municipio":        input.Municipio,
		"estado":           input.Estado,
		"colonia":          input.Colonia,
		"cp":               input.CP,
		"acepta_politicas": input.AceptaPoliticas,
	}
	if input.Latitud != nil && input.Longitud != nil {
		updates["latitud"] = input.Latitud
		updates["longitud"] = input.Longitud
	}
	if input.IDLiderResponsable != nil {
		if !auth.CanAssignLeader(p, *input.IDLiderResponsable) {
			httpx.Error(w, http.StatusForbidden, "El líder responsable está fuera de tu estructura")
			return
		}
		updates["id_lider_responsable"] = *input.IDLiderResponsable
	}

	if err := db.DB.Model(&person).Updates(updates).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al actualizar")
		return
	}
	httpx.JSON(w, http.StatusOK, person)
}

func DeleteHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	var person Person
	if err := db.DB.First(&person, "id = ? AND activo = ?", id, true).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Persona no encontrada")
		return
	}
	if !auth.CanEditPerson(p, person.IDLiderResponsable, person.IDUsuarioRegistro) {
		httpx.Error(w, http.StatusForbidden, "Fuera de tu estructura")
		return
	}

	if err := db.DB.Model(&person).Update("activo", false).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al desactivar")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "Persona desactivada"})
}

// SearchHandler matches by name (accent-folded), voter key, section or
// colony. The visibility scope composes into the query.
func SearchHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())

	var input struct {
		Nombre       string `json:"nombre"`
		ClaveElector string `json:"clave_elector"`
		Seccion      string `json:"seccion"`
		Colonia      string `json:"colonia"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	q := db.DB.Scopes(auth.PersonScope(p)).Where("activo = ?", true)
	if input.Nombre != "" {
		q = q.Where("LOWER(unaccent(nombre)) LIKE ?", "%"+utils.Fold(input.Nombre)+"%")
	}
	if input.ClaveElector != "" {
		q = q.Where("clave_elector = ?", strings.ToUpper(strings.TrimSpace(input.ClaveElector)))
	}
	if input.Seccion != "" {
		q = q.Where("seccion = ?", input.Seccion)
	}
	if input.Colonia != "" {
		q = q.Where("LOWER(unaccent(colonia)) LIKE ?", "%"+utils.Fold(input.Colonia)+"%")
	}

	var persons []Person
	if err := q.Order("nombre").Limit(500).Find(&persons).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	httpx.JSON(w, http.StatusOK, persons)
}

// UbicacionesHandler returns the light projection map views consume.
func UbicacionesHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())

	var out []struct {
		ID       uint     `json:"id"`
		Nombre   string   `json:"nombre"`
		Latitud  *float64 `json:"latitud"`
		Longitud *float64 `json:"longitud"`
		Colonia  string   `json:"colonia"`
	}
	if err := db.DB.Model(&Person{}).Scopes(auth.PersonScope(p)).
		Where("activo = ? AND latitud IS NOT NULL AND longitud IS NOT NULL", true).
		Limit(5000).Find(&out).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

// ConUsuarioRegistroHandler joins each person with who captured them.
func ConUsuarioRegistroHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())

	var out []struct {
		Person
		NombreUsuarioRegistro string `json:"nombre_usuario_registro"`
	}
	err := db.DB.Model(&Person{}).Scopes(auth.PersonScope(p)).
		Select("registro.personas.*, u.nombre AS nombre_usuario_registro").
		Joins("LEFT JOIN app_auth.usuarios u ON u.id = registro.personas.id_usuario_registro").
		Where("registro.personas.activo = ?", true).
		Limit(1000).Find(&out).Error
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

// RegisterWithInviteHandler lets a person self-register under a leader's
// signed invitation; the token pins the responsible leader.
func RegisterWithInviteHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token string `json:"token" validate:"required"`
		personInput
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	claims, err := token.Default.Parse(input.Token, token.TypPersonInvite)
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "Invitación inválida o expirada")
		return
	}

	person, status, msg := createPerson(r.Context(), input.personInput, claims.LeaderID, claims.LeaderID)
	if person == nil {
		httpx.Error(w, status, msg)
		return
	}
	httpx.JSON(w, http.StatusCreated, person)
}

// MintInviteHandler mints a person-registration invitation bound to the
// calling leader.
func MintInviteHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	if p.Role != utils.RoleAdmin && !utils.IsLeader(p.Role) {
		httpx.Error(w, http.StatusForbidden, "Requiere rol admin o líder")
		return
	}

	signed, err := token.Default.PersonInvite(p.ID, 48*time.Hour)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al generar la invitación")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"token": signed, "id_lider": p.ID})
}
