package padron

import (
	"errors"
	"time"

	"github.com/ParticipaSonora/PS-Backend/internal/auth"
	"github.com/ParticipaSonora/PS-Backend/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEntryNotFound   = errors.New("padron: registro no encontrado")
	ErrAlreadyAssigned = errors.New("padron: registro ya asignado")
	ErrLeaderNotFound  = errors.New("padron: líder inexistente o inactivo")
	ErrNotAssigned     = errors.New("padron: registro sin asignación")
)

// AssignEntry stamps a leader on a roll entry. The row lock makes assignment
// single-writer: the second concurrent caller observes the stamp and fails
// without mutating.
func AssignEntry(conn *gorm.DB, entryID, leaderID, byUser uint) (*PadronEntry, error) {
	leader, err := auth.FindActiveUser(conn, leaderID)
	if err != nil {
		return nil, ErrLeaderNotFound
	}
	if !utils.IsLeader(leader.Rol) && leader.Rol != utils.RoleAdmin {
		return nil, ErrLeaderNotFound
	}

	var entry PadronEntry
	err = conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&entry, "id = ? AND activo = ?", entryID, true).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEntryNotFound
			}
			return err
		}
		if entry.Asignado() {
			return ErrAlreadyAssigned
		}

		now := time.Now().UTC()
		entry.IDLiderAsignado = &leaderID
		entry.FechaAsignacion = &now
		entry.IDUsuarioAsignacion = &byUser
		return tx.Model(&entry).Updates(map[string]interface{}{
			"id_lider_asignado":     leaderID,
			"fecha_asignacion":      now,
			"id_usuario_asignacion": byUser,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ReleaseEntry clears an assignment. Re-assignment always goes through an
// explicit release first.
func ReleaseEntry(conn *gorm.DB, entryID uint) (*PadronEntry, error) {
	var entry PadronEntry
	err := conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&entry, "id = ? AND activo = ?", entryID, true).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEntryNotFound
			}
			return err
		}
		if !entry.Asignado() {
			return ErrNotAssigned
		}

		entry.IDLiderAsignado = nil
		entry.FechaAsignacion = nil
		entry.IDUsuarioAsignacion = nil
		return tx.Model(&entry).Updates(map[string]interface{}{
			"id_lider_asignado":     nil,
			"fecha_asignacion":      nil,
			"id_usuario_asignacion": nil,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// VerifyResult is the check-before-assign answer for one voter key.
type VerifyResult struct {
	Estado          string     `json:"estado"`
	IDRegistro      *uint      `json:"id_registro,omitempty"`
	NombreCompleto  string     `json:"nombre_completo,omitempty"`
	LiderAsignado   string     `json:"lider_asignado,omitempty"`
	FechaAsignacion *time.Time `json:"fecha_asignacion,omitempty"`
}

const (
	EstadoNoEncontrado = "no_encontrado"
	EstadoDisponible   = "disponible"
	EstadoYaAsignado   = "ya_asignado"
)

// VerifyElector reports whether a voter key exists and who, if anyone,
// holds it.
func VerifyElector(conn *gorm.DB, elector string) (*VerifyResult, error) {
	var entry PadronEntry
	err := conn.First(&entry, "elector = ? AND activo = ?", elector, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &VerifyResult{Estado: EstadoNoEncontrado}, nil
	}
	if err != nil {
		return nil, err
	}

	out := &VerifyResult{
		IDRegistro:     &entry.ID,
		NombreCompleto: entry.Nombre + " " + entry.ApellidoPaterno + " " + entry.ApellidoMaterno,
	}
	if !entry.Asignado() {
		out.Estado = EstadoDisponible
		return out, nil
	}

	out.Estado = EstadoYaAsignado
	out.FechaAsignacion = entry.FechaAsignacion
	if leader, err := auth.FindActiveUser(conn, *entry.IDLiderAsignado); err == nil {
		out.LiderAsignado = leader.Nombre
	}
	return out, nil
}

// Stats is the roll's aggregate view.
type Stats struct {
	TotalRegistros       int64        `json:"total_registros"`
	RegistrosAsignados   int64        `json:"registros_asignados"`
	RegistrosDisponibles int64        `json:"registros_disponibles"`
	PorLider             []LeaderStat `json:"por_lider"`
}

type LeaderStat struct {
	IDLider     uint   `json:"id_lider"`
	NombreLider string `json:"nombre_lider"`
	Asignados   int64  `json:"asignados"`
}

func ComputeStats(conn *gorm.DB) (*Stats, error) {
	s := &Stats{}
	if err := conn.Model(&PadronEntry{}).Where("activo = ?", true).
		Count(&s.TotalRegistros).Error; err != nil {
		return nil, err
	}
	if err := conn.Model(&PadronEntry{}).
		Where("activo = ? AND id_lider_asignado IS NOT NULL", true).
		Count(&s.RegistrosAsignados).Error; err != nil {
		return nil, err
	}
	s.RegistrosDisponibles = s.TotalRegistros - s.RegistrosAsignados

	err := conn.Model(&PadronEntry{}).
		Select("id_lider_asignado AS id_lider, u.nombre AS nombre_lider, COUNT(*) AS asignados").
		Joins("JOIN app_auth.usuarios u ON u.id = padron.registros.id_lider_asignado").
		Where("padron.registros.activo = ? AND id_lider_asignado IS NOT NULL", true).
		Group("id_lider_asignado, u.nombre").
		Order("asignados DESC").
		Scan(&s.PorLider).Error
	if err != nil {
		return nil, err
	}
	return s, nil
}
