package movilizacion

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ParticipaSonora/PS-Backend/internal/auth"
	"github.com/ParticipaSonora/PS-Backend/internal/db"
	"github.com/ParticipaSonora/PS-Backend/internal/eventos"
	"github.com/ParticipaSonora/PS-Backend/internal/httpx"
	"github.com/ParticipaSonora/PS-Backend/internal/logging"
	"github.com/ParticipaSonora/PS-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

func parseID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	return uint(id), err == nil
}

func organizerOf(eventID uint) (uint, error) {
	var event eventos.Event
	if err := db.DB.First(&event, "id = ? AND activo = ?", eventID, true).Error; err != nil {
		return 0, err
	}
	return event.IDOrganizador, nil
}

// --- Vehicles ---

type vehicleInput struct {
	Tipo          string `json:"tipo" validate:"required"`
	Capacidad     int    `json:"capacidad" validate:"required,gte=1"`
	Placas        string `json:"placas"`
	Descripcion   string `json:"descripcion"`
	IDMovilizador *uint  `json:"id_movilizador"`
}

func ListVehiclesHandler(w http.ResponseWriter, r *http.Request) {
	var vehicles []Vehicle
	if err := db.DB.Where("activo = ?", true).Order("id").Find(&vehicles).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	httpx.JSON(w, http.StatusOK, vehicles)
}

func CreateVehicleHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())

	var input vehicleInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	mobilizer := p.ID
	if input.IDMovilizador != nil {
		mobilizer = *input.IDMovilizador
	}
	mob, err := auth.FindActiveUser(db.DB, mobilizer)
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "movilizador inexistente")
		return
	}
	if !utils.IsLeader(mob.Rol) && mob.Rol != utils.RoleAdmin {
		httpx.Error(w, http.StatusUnprocessableEntity, "el movilizador debe ser un líder")
		return
	}

	vehicle := Vehicle{
		Tipo:          input.Tipo,
		Capacidad:     input.Capacidad,
		Placas:        input.Placas,
		Descripcion:   input.Descripcion,
		IDMovilizador: mobilizer,
		Activo:        true,
	}
	if err := db.DB.Create(&vehicle).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al crear el vehículo")
		return
	}
	httpx.JSON(w, http.StatusCreated, vehicle)
}

func GetVehicleHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}
	var vehicle Vehicle
	if err := db.DB.First(&vehicle, "id = ? AND activo = ?", id, true).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Vehículo no encontrado")
		return
	}
	httpx.JSON(w, http.StatusOK, vehicle)
}

func UpdateVehicleHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}
	var vehicle Vehicle
	if err := db.DB.First(&vehicle, "id = ? AND activo = ?", id, true).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Vehículo no encontrado")
		return
	}

	var input vehicleInput
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	updates := map[string]interface{}{
		"tipo":        input.Tipo,
		"capacidad":   input.Capacidad,
		"placas":      input.Placas,
		"descripcion": input.Descripcion,
	}
	if input.IDMovilizador != nil {
		updates["id_movilizador"] = *input.IDMovilizador
	}
	if err := db.DB.Model(&vehicle).Updates(updates).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al actualizar")
		return
	}
	httpx.JSON(w, http.StatusOK, vehicle)
}

func DeleteVehicleHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}
	res := db.DB.Model(&Vehicle{}).Where("id = ?", id).Update("activo", false)
	if res.Error != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al desactivar")
		return
	}
	if res.RowsAffected == 0 {
		httpx.Error(w, http.StatusNotFound, "Vehículo no encontrado")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "Vehículo desactivado"})
}

// --- Assignments ---

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCapacityExceeded):
		httpx.Error(w, http.StatusBadRequest, "Capacidad del vehículo excedida")
	case errors.Is(err, ErrAlreadyAssigned):
		httpx.Error(w, http.StatusConflict, "La persona ya está asignada a este vehículo")
	case errors.Is(err, ErrVehicleNotFound):
		httpx.Error(w, http.StatusNotFound, "Vehículo inexistente o inactivo")
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "Registro no encontrado")
	default:
		logging.L().Errorw("mobilization engine", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "Error interno")
	}
}

func ListAssignmentsHandler(w http.ResponseWriter, r *http.Request) {
	q := db.DB.Order("id")
	if v := r.URL.Query().Get("id_evento"); v != "" {
		q = q.Where("id_evento = ?", v)
	}
	if v := r.URL.Query().Get("id_vehiculo"); v != "" {
		q = q.Where("id_vehiculo = ?", v)
	}

	var assignments []Assignment
	if err := q.Limit(1000).Find(&assignments).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	httpx.JSON(w, http.StatusOK, assignments)
}

func CreateAssignmentHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		IDEvento   uint `json:"id_evento" validate:"required"`
		IDVehiculo uint `json:"id_vehiculo" validate:"required"`
		IDPersona  uint `json:"id_persona" validate:"required"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	assignment, err := Assign(db.DB, input.IDEvento, input.IDVehiculo, input.IDPersona)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, assignment)
}

func BulkAssignmentHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		IDEvento   uint   `json:"id_evento" validate:"required"`
		IDVehiculo uint   `json:"id_vehiculo" validate:"required"`
		IDsPersona []uint `json:"ids_persona" validate:"required,min=1"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	assignments, err := AssignBulk(db.DB, input.IDEvento, input.IDVehiculo, input.IDsPersona)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, assignments)
}

func DeleteAssignmentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	var assignment Assignment
	if err := db.DB.First(&assignment, "id = ?", id).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Asignación no encontrada")
		return
	}
	if err := db.DB.Delete(&assignment).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al eliminar")
		return
	}
	refreshPositionCount(db.DB, assignment.IDEvento, assignment.IDVehiculo)
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "Asignación eliminada"})
}

// AssignmentCheckinHandler is the assignment-side synonym of the attendance
// check-in: it resolves (event, person) and runs the same engine path.
func AssignmentCheckinHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	id, ok := parseID(r)
	if !ok {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	var assignment Assignment
	if err := db.DB.First(&assignment, "id = ?", id).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Asignación no encontrada")
		return
	}

	organizer, err := organizerOf(assignment.IDEvento)
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "Evento no encontrado")
		return
	}
	if !auth.CanCheckIn(p, organizer) {
		httpx.Error(w, http.StatusForbidden, "Fuera de tu estructura")
		return
	}

	att, err := CheckIn(db.DB, assignment.IDEvento, assignment.IDPersona, p.ID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, att)
}

// --- Attendance ---

func ListAttendanceHandler(w http.ResponseWriter, r *http.Request) {
	q := db.DB.Order("id")
	if v := r.URL.Query().Get("id_evento"); v != "" {
		q = q.Where("id_evento = ?", v)
	}

	var attendance []Attendance
	if err := q.Limit(1000).Find(&attendance).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	httpx.JSON(w, http.StatusOK, attendance)
}

func CreateAttendanceHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())

	var input struct {
		IDEvento           uint   `json:"id_evento" validate:"required"`
		IDPersona          uint   `json:"id_persona" validate:"required"`
		RequiereTransporte bool   `json:"requiere_transporte"`
		Observaciones      string `json:"observaciones"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	organizer, err := organizerOf(input.IDEvento)
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "Evento no encontrado")
		return
	}
	if !auth.CanCheckIn(p, organizer) {
		httpx.Error(w, http.StatusForbidden, "Fuera de tu estructura")
		return
	}

	var existing Attendance
	err = db.DB.First(&existing, "id_evento = ? AND id_persona = ?", input.IDEvento, input.IDPersona).Error
	if err == nil {
		httpx.Error(w, http.StatusConflict, "La persona ya está registrada en el evento")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}

	attendance := Attendance{
		IDEvento:           input.IDEvento,
		IDPersona:          input.IDPersona,
		RequiereTransporte: input.RequiereTransporte,
		Observaciones:      input.Observaciones,
	}
	if err := db.DB.Create(&attendance).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al registrar asistencia")
		return
	}
	httpx.JSON(w, http.StatusCreated, attendance)
}

// UpdateAttendanceHandler routes asistio flips through the engine so the
// assignment mirror holds.
func UpdateAttendanceHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	id, ok := parseID(r)
	if !ok {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	var input struct {
		Asistio            *bool   `json:"asistio"`
		RequiereTransporte *bool   `json:"requiere_transporte"`
		Observaciones      *string `json:"observaciones"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var attendance Attendance
	if err := db.DB.First(&attendance, "id = ?", id).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Asistencia no encontrada")
		return
	}

	organizer, err := organizerOf(attendance.IDEvento)
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "Evento no encontrado")
		return
	}
	if !auth.CanCheckIn(p, organizer) {
		httpx.Error(w, http.StatusForbidden, "Fuera de tu estructura")
		return
	}

	updates := map[string]interface{}{}
	if input.RequiereTransporte != nil {
		updates["requiere_transporte"] = *input.RequiereTransporte
	}
	if input.Observaciones != nil {
		updates["observaciones"] = *input.Observaciones
	}
	if len(updates) > 0 {
		if err := db.DB.Model(&attendance).Updates(updates).Error; err != nil {
			httpx.Error(w, http.StatusInternalServerError, "Error al actualizar")
			return
		}
	}

	if input.Asistio != nil && *input.Asistio != attendance.Asistio {
		updated, err := SetAttended(db.DB, attendance.ID, *input.Asistio, p.ID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		attendance = *updated
	}
	httpx.JSON(w, http.StatusOK, attendance)
}

// AttendanceCheckinHandler marks the attendance present and mirrors into any
// vehicle assignment, one transaction.
func AttendanceCheckinHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	id, ok := parseID(r)
	if !ok {
		httpx.Error(w, http.StatusUnprocessableEntity, "id inválido")
		return
	}

	var attendance Attendance
	if err := db.DB.First(&attendance, "id = ?", id).Error; err != nil {
		httpx.Error(w, http.StatusNotFound, "Asistencia no encontrada")
		return
	}

	organizer, err := organizerOf(attendance.IDEvento)
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "Evento no encontrado")
		return
	}
	if !auth.CanCheckIn(p, organizer) {
		httpx.Error(w, http.StatusForbidden, "Fuera de tu estructura")
		return
	}

	att, err := CheckIn(db.DB, attendance.IDEvento, attendance.IDPersona, p.ID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, att)
}

// AttendanceByElectorHandler looks up an attendance through the person's
// voter key, the flow used at the check-in table.
func AttendanceByElectorHandler(w http.ResponseWriter, r *http.Request) {
	elector := chi.URLParam(r, "elector")
	eventID := r.URL.Query().Get("id_evento")
	if elector == "" || eventID == "" {
		httpx.Error(w, http.StatusUnprocessableEntity, "clave de elector e id_evento son requeridos")
		return
	}

	var attendance Attendance
	err := db.DB.
		Joins("JOIN registro.personas p ON p.id = movilizacion.asistencias.id_persona").
		Where("p.clave_elector = ? AND movilizacion.asistencias.id_evento = ?", elector, eventID).
		First(&attendance).Error
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "Asistencia no encontrada")
		return
	}
	httpx.JSON(w, http.StatusOK, attendance)
}

// --- Live tracking ---

func UpsertPositionHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())

	// Coordinates are pointers so the zero value stays distinguishable from
	// an omitted field; (0, 0) is a legitimate reading.
	var input struct {
		Latitud    *float64 `json:"latitud" validate:"required,gte=-90,lte=90"`
		Longitud   *float64 `json:"longitud" validate:"required,gte=-180,lte=180"`
		Velocidad  float64  `json:"velocidad"`
		Direccion  string   `json:"direccion"`
		Precision_ float64  `json:"precision"`
		Bateria    int      `json:"bateria" validate:"omitempty,gte=0,lte=100"`
		IDEvento   *uint    `json:"id_evento"`
		IDVehiculo *uint    `json:"id_vehiculo"`
	}
	if err := httpx.Decode(r, &input); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	pos := RealTimePosition{
		IDUsuario:  p.ID,
		Latitud:    *input.Latitud,
		Longitud:   *input.Longitud,
		Velocidad:  input.Velocidad,
		Direccion:  input.Direccion,
		Precision_: input.Precision_,
		Bateria:    input.Bateria,
		IDEvento:   input.IDEvento,
		IDVehiculo: input.IDVehiculo,
	}
	if err := UpsertPosition(db.DB, &pos); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error al registrar posición")
		return
	}
	httpx.JSON(w, http.StatusCreated, pos)
}

func ListPositionsHandler(w http.ResponseWriter, r *http.Request) {
	var positions []RealTimePosition
	if err := db.DB.Where("activo = ?", true).Order("fecha DESC").
		Limit(500).Find(&positions).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	httpx.JSON(w, http.StatusOK, positions)
}
