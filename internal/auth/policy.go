package auth

import (
	"github.com/ParticipaSonora/PS-Backend/internal/utils"
	"gorm.io/gorm"
)

// Visibility is what a role may see of a resource's rows. List endpoints
// compose the resulting predicate into the query; the working sets are too
// large to filter after the fetch.
type Visibility int

const (
	VisNone Visibility = iota
	VisSelf            // only rows keyed to the principal itself
	VisOwn             // rows the principal registered or organizes
	VisSubtree         // rows whose leader field falls in the principal's subtree
	VisAll
)

// role classes collapse the five lider_* levels into one policy column.
const (
	classAdmin      = "admin"
	classPresidente = "presidente"
	classLider      = "lider"
	classCapturista = "capturista"
	classCiudadano  = "ciudadano"
)

func roleClass(role string) string {
	switch {
	case role == utils.RoleAdmin:
		return classAdmin
	case role == utils.RolePresidente:
		return classPresidente
	case utils.IsLeader(role):
		return classLider
	case role == utils.RoleCapturista:
		return classCapturista
	default:
		return classCiudadano
	}
}

// readPolicy is the authorization table as data. Rows not listed default to
// VisNone.
var readPolicy = map[string]map[string]Visibility{
	"usuarios": {
		classAdmin:      VisAll,
		classPresidente: VisSubtree,
		classLider:      VisSubtree,
		classCapturista: VisSelf,
		classCiudadano:  VisSelf,
	},
	"personas": {
		classAdmin:      VisAll,
		classPresidente: VisAll,
		classLider:      VisSubtree,
		classCapturista: VisOwn,
	},
	"eventos": {
		classAdmin:      VisAll,
		classPresidente: VisAll,
		classLider:      VisAll,
		classCapturista: VisOwn,
	},
	"padron": {
		classAdmin:      VisAll,
		classPresidente: VisAll,
		classLider:      VisAll,
		classCapturista: VisAll,
	},
}

func visibility(resource, role string) Visibility {
	m, ok := readPolicy[resource]
	if !ok {
		return VisNone
	}
	return m[roleClass(role)]
}

func noRows(conn *gorm.DB) *gorm.DB { return conn.Where("1 = 0") }
func allRows(conn *gorm.DB) *gorm.DB { return conn }

// UserScope restricts user listings to the principal's visible set.
func UserScope(p utils.Principal) func(*gorm.DB) *gorm.DB {
	switch visibility("usuarios", p.Role) {
	case VisAll:
		return allRows
	case VisSubtree:
		ids := DescendantsDefault(p.ID)
		return func(conn *gorm.DB) *gorm.DB { return conn.Where("id IN ?", ids) }
	case VisSelf:
		return func(conn *gorm.DB) *gorm.DB { return conn.Where("id = ?", p.ID) }
	default:
		return noRows
	}
}

// PersonScope restricts person listings. A leader sees rows whose
// responsible leader or registering user falls inside the subtree; a
// capturista sees only rows they registered.
func PersonScope(p utils.Principal) func(*gorm.DB) *gorm.DB {
	switch visibility("personas", p.Role) {
	case VisAll:
		return allRows
	case VisSubtree:
		ids := DescendantsDefault(p.ID)
		return func(conn *gorm.DB) *gorm.DB {
			return conn.Where("id_lider_responsable IN ? OR id_usuario_registro IN ?", ids, ids)
		}
	case VisOwn:
		return func(conn *gorm.DB) *gorm.DB { return conn.Where("id_usuario_registro = ?", p.ID) }
	default:
		return noRows
	}
}

// EventScope restricts event listings. Leaders see every event so they can
// mobilize toward any of them; capturistas only their own.
func EventScope(p utils.Principal) func(*gorm.DB) *gorm.DB {
	switch visibility("eventos", p.Role) {
	case VisAll:
		return allRows
	case VisOwn:
		return func(conn *gorm.DB) *gorm.DB { return conn.Where("id_organizador = ?", p.ID) }
	default:
		return noRows
	}
}

// PadronScope gates the electoral roll: readable by any authenticated
// non-ciudadano principal.
func PadronScope(p utils.Principal) func(*gorm.DB) *gorm.DB {
	if visibility("padron", p.Role) == VisAll {
		return allRows
	}
	return noRows
}

func inSubtree(p utils.Principal, id uint) bool {
	for _, d := range DescendantsDefault(p.ID) {
		if d == id {
			return true
		}
	}
	return false
}

// CanWriteUsers: user CRUD and password resets are admin-only.
func CanWriteUsers(p utils.Principal) bool { return p.Role == utils.RoleAdmin }

// CanCreatePersons: admin, presidente, lider_* and capturista may register.
func CanCreatePersons(p utils.Principal) bool {
	c := roleClass(p.Role)
	return c == classAdmin || c == classPresidente || c == classLider || c == classCapturista
}

// CanAssignLeader: a person's responsible leader must fall inside the
// caller's own subtree. Admin may point anywhere; a capturista's subtree is
// just themselves.
func CanAssignLeader(p utils.Principal, leaderID uint) bool {
	switch roleClass(p.Role) {
	case classAdmin:
		return true
	case classPresidente, classLider, classCapturista:
		return inSubtree(p, leaderID)
	default:
		return false
	}
}

// CanEditPerson: capturistas create but never edit; leaders edit inside
// their subtree, evaluated against either ownership field.
func CanEditPerson(p utils.Principal, leaderID, registrarID uint) bool {
	switch roleClass(p.Role) {
	case classAdmin:
		return true
	case classPresidente, classLider:
		return inSubtree(p, leaderID) || inSubtree(p, registrarID)
	default:
		return false
	}
}

// CanWriteEvent: admin anywhere, leaders inside their subtree.
func CanWriteEvent(p utils.Principal, organizerID uint) bool {
	switch roleClass(p.Role) {
	case classAdmin:
		return true
	case classPresidente, classLider:
		return inSubtree(p, organizerID)
	default:
		return false
	}
}

// CanCheckIn: leaders check in events organized inside their subtree;
// capturistas only events they organize themselves.
func CanCheckIn(p utils.Principal, organizerID uint) bool {
	switch roleClass(p.Role) {
	case classAdmin:
		return true
	case classPresidente, classLider:
		return inSubtree(p, organizerID)
	case classCapturista:
		return organizerID == p.ID
	default:
		return false
	}
}

// CanMobilize: vehicles and assignments belong to admin and leaders.
func CanMobilize(p utils.Principal) bool {
	c := roleClass(p.Role)
	return c == classAdmin || c == classPresidente || c == classLider
}

// CanAdministerPadron: import, assignment and clearing are admin-only.
func CanAdministerPadron(p utils.Principal) bool { return p.Role == utils.RoleAdmin }

// CanTriageReports: citizen-report state transitions are admin-only.
func CanTriageReports(p utils.Principal) bool { return p.Role == utils.RoleAdmin }

// CanPublishNews: news writing belongs to admin and presidente.
func CanPublishNews(p utils.Principal) bool {
	return p.Role == utils.RoleAdmin || p.Role == utils.RolePresidente
}
