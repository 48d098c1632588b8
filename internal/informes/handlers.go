package informes

import (
	"net/http"
	"time"

	"github.com/ParticipaSonora/PS-Backend/internal/auth"
	"github.com/ParticipaSonora/PS-Backend/internal/db"
	"github.com/ParticipaSonora/PS-Backend/internal/eventos"
	"github.com/ParticipaSonora/PS-Backend/internal/httpx"
	"github.com/ParticipaSonora/PS-Backend/internal/movilizacion"
	"github.com/ParticipaSonora/PS-Backend/internal/personas"
	"github.com/ParticipaSonora/PS-Backend/internal/utils"
)

type countRow struct {
	Clave string `json:"clave"`
	Total int64  `json:"total"`
}

// PersonsReportHandler aggregates the caller's visible persons by section,
// colony and responsible leader.
func PersonsReportHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())
	scope := auth.PersonScope(p)

	var total int64
	if err := db.DB.Model(&personas.Person{}).Scopes(scope).
		Where("activo = ?", true).Count(&total).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}

	grouped := func(column string) ([]countRow, error) {
		var rows []countRow
		err := db.DB.Model(&personas.Person{}).Scopes(scope).
			Select(column + " AS clave, COUNT(*) AS total").
			Where("activo = ? AND "+column+" <> ''", true).
			Group(column).Order("total DESC").Limit(100).
			Scan(&rows).Error
		return rows, err
	}

	bySection, err := grouped("seccion")
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	byColony, err := grouped("colonia")
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}

	var byLeader []countRow
	err = db.DB.Model(&personas.Person{}).Scopes(scope).
		Select("u.nombre AS clave, COUNT(*) AS total").
		Joins("JOIN app_auth.usuarios u ON u.id = registro.personas.id_lider_responsable").
		Where("registro.personas.activo = ?", true).
		Group("u.nombre").Order("total DESC").Limit(100).
		Scan(&byLeader).Error
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"total":       total,
		"por_seccion": bySection,
		"por_colonia": byColony,
		"por_lider":   byLeader,
	})
}

type eventSummary struct {
	eventos.Event
	Registrados int64 `json:"registrados"`
	Asistieron  int64 `json:"asistieron"`
	Movilizados int64 `json:"movilizados"`
}

func eventReport(w http.ResponseWriter, r *http.Request, historical bool) {
	p, _ := utils.GetPrincipal(r.Context())
	cutoff := time.Now().UTC().Add(-24 * time.Hour)

	q := db.DB.Scopes(auth.EventScope(p)).Where("activo = ?", true)
	if historical {
		q = q.Where("fecha < ?", cutoff).Order("fecha DESC")
	} else {
		q = q.Where("fecha >= ?", cutoff).Order("fecha")
	}

	var events []eventos.Event
	if err := q.Limit(200).Find(&events).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}

	out := make([]eventSummary, 0, len(events))
	for _, ev := range events {
		s := eventSummary{Event: ev}
		db.DB.Model(&movilizacion.Attendance{}).Where("id_evento = ?", ev.ID).Count(&s.Registrados)
		db.DB.Model(&movilizacion.Attendance{}).
			Where("id_evento = ? AND asistio = ?", ev.ID, true).Count(&s.Asistieron)
		db.DB.Model(&movilizacion.Attendance{}).
			Where("id_evento = ? AND movilizado = ?", ev.ID, true).Count(&s.Movilizados)
		out = append(out, s)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func EventsReportHandler(w http.ResponseWriter, r *http.Request) {
	eventReport(w, r, false)
}

func HistoricalEventsReportHandler(w http.ResponseWriter, r *http.Request) {
	eventReport(w, r, true)
}

// LiveAttendanceHandler is the check-in dashboard feed: per visible event,
// the registered/attended/mobilized counters right now.
func LiveAttendanceHandler(w http.ResponseWriter, r *http.Request) {
	eventReport(w, r, false)
}

type vehicleSummary struct {
	movilizacion.Vehicle
	Asignados  int64 `json:"asignados"`
	Asistieron int64 `json:"asistieron"`
}

// VehiclesReportHandler shows fill and attendance per vehicle, optionally
// filtered to one event.
func VehiclesReportHandler(w http.ResponseWriter, r *http.Request) {
	var vehicles []movilizacion.Vehicle
	if err := db.DB.Where("activo = ?", true).Order("id").
		Limit(500).Find(&vehicles).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}

	eventID := r.URL.Query().Get("id_evento")
	out := make([]vehicleSummary, 0, len(vehicles))
	for _, v := range vehicles {
		s := vehicleSummary{Vehicle: v}
		q := db.DB.Model(&movilizacion.Assignment{}).Where("id_vehiculo = ?", v.ID)
		if eventID != "" {
			q = q.Where("id_evento = ?", eventID)
		}
		q.Count(&s.Asignados)

		qa := db.DB.Model(&movilizacion.Assignment{}).
			Where("id_vehiculo = ? AND asistio = ?", v.ID, true)
		if eventID != "" {
			qa = qa.Where("id_evento = ?", eventID)
		}
		qa.Count(&s.Asistieron)
		out = append(out, s)
	}
	httpx.JSON(w, http.StatusOK, out)
}

type hierarchyNode struct {
	ID       uint             `json:"id"`
	Nombre   string           `json:"nombre"`
	Rol      string           `json:"rol"`
	Personas int64            `json:"personas"`
	Hijos    []*hierarchyNode `json:"hijos"`
}

// HierarchyReportHandler renders the caller's subtree with per-leader person
// counts. One query for the users, one for the counts, assembled in memory.
func HierarchyReportHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.GetPrincipal(r.Context())

	ids := auth.DescendantsDefault(p.ID)
	var users []auth.User
	if err := db.DB.Where("id IN ? AND activo = ?", ids, true).Find(&users).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}

	var counts []struct {
		IDLiderResponsable uint
		Total              int64
	}
	err := db.DB.Model(&personas.Person{}).
		Select("id_lider_responsable, COUNT(*) AS total").
		Where("id_lider_responsable IN ? AND activo = ?", ids, true).
		Group("id_lider_responsable").
		Scan(&counts).Error
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	personCount := make(map[uint]int64, len(counts))
	for _, c := range counts {
		personCount[c.IDLiderResponsable] = c.Total
	}

	nodes := make(map[uint]*hierarchyNode, len(users))
	for _, u := range users {
		nodes[u.ID] = &hierarchyNode{
			ID:       u.ID,
			Nombre:   u.Nombre,
			Rol:      u.Rol,
			Personas: personCount[u.ID],
		}
	}

	root := nodes[p.ID]
	if root == nil {
		root = &hierarchyNode{ID: p.ID, Rol: p.Role}
	}
	for _, u := range users {
		if u.ID == p.ID {
			continue
		}
		node := nodes[u.ID]
		if u.IDSuperior != nil {
			if parent, ok := nodes[*u.IDSuperior]; ok {
				parent.Hijos = append(parent.Hijos, node)
				continue
			}
		}
		// Visible but with a parent outside the set: hang off the root.
		root.Hijos = append(root.Hijos, node)
	}

	httpx.JSON(w, http.StatusOK, root)
}
