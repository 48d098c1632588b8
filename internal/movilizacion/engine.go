package movilizacion

import (
	"errors"
	"time"

	"github.com/ParticipaSonora/PS-Backend/internal/metrics"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Typed results for the expected failure modes; handlers translate these to
// HTTP statuses. Anything else is a store failure and propagates as-is.
var (
	ErrVehicleNotFound  = errors.New("movilizacion: vehículo inexistente o inactivo")
	ErrCapacityExceeded = errors.New("movilizacion: capacidad del vehículo excedida")
	ErrAlreadyAssigned  = errors.New("movilizacion: la persona ya está asignada a este vehículo")
	ErrNotFound         = errors.New("movilizacion: registro no encontrado")
)

// Assign allocates one person to a vehicle for an event. The count-then-insert
// runs under a row lock on the vehicle so capacity holds under contention.
func Assign(conn *gorm.DB, eventID, vehicleID, personID uint) (*Assignment, error) {
	var created *Assignment
	err := conn.Transaction(func(tx *gorm.DB) error {
		a, err := assignLocked(tx, eventID, vehicleID, []uint{personID})
		if err != nil {
			return err
		}
		created = &a[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	refreshPositionCount(conn, eventID, vehicleID)
	return created, nil
}

// AssignBulk allocates several persons at once, all-or-nothing: the capacity
// check applies to the final count and any duplicate fails the whole batch.
func AssignBulk(conn *gorm.DB, eventID, vehicleID uint, personIDs []uint) ([]Assignment, error) {
	var created []Assignment
	err := conn.Transaction(func(tx *gorm.DB) error {
		a, err := assignLocked(tx, eventID, vehicleID, personIDs)
		if err != nil {
			return err
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	refreshPositionCount(conn, eventID, vehicleID)
	return created, nil
}

func assignLocked(tx *gorm.DB, eventID, vehicleID uint, personIDs []uint) ([]Assignment, error) {
	// A person repeated within one request counts once; otherwise the repeat
	// slips past the duplicate query and hits the unique index instead.
	seen := make(map[uint]struct{}, len(personIDs))
	unique := make([]uint, 0, len(personIDs))
	for _, pid := range personIDs {
		if _, ok := seen[pid]; ok {
			continue
		}
		seen[pid] = struct{}{}
		unique = append(unique, pid)
	}
	personIDs = unique

	// Lock the vehicle row: concurrent assigns to the same vehicle serialize
	// here, making count-then-insert atomic per (event, vehicle).
	var vehicle Vehicle
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&vehicle, "id = ? AND activo = ?", vehicleID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	var current int64
	if err := tx.Model(&Assignment{}).
		Where("id_evento = ? AND id_vehiculo = ?", eventID, vehicleID).
		Count(&current).Error; err != nil {
		return nil, err
	}
	if current+int64(len(personIDs)) > int64(vehicle.Capacidad) {
		return nil, ErrCapacityExceeded
	}

	var dups int64
	if err := tx.Model(&Assignment{}).
		Where("id_evento = ? AND id_vehiculo = ? AND id_persona IN ?", eventID, vehicleID, personIDs).
		Count(&dups).Error; err != nil {
		return nil, err
	}
	if dups > 0 {
		return nil, ErrAlreadyAssigned
	}

	rows := make([]Assignment, 0, len(personIDs))
	for _, pid := range personIDs {
		rows = append(rows, Assignment{
			IDEvento:   eventID,
			IDVehiculo: vehicleID,
			IDPersona:  pid,
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CheckIn marks a person present at an event. The attendance is created if
// missing; re-check-in refreshes the instant. Any assignment for the person
// across vehicles mirrors asistio=true inside the same transaction.
func CheckIn(conn *gorm.DB, eventID, personID, byUser uint) (*Attendance, error) {
	var att Attendance
	err := conn.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&att, "id_evento = ? AND id_persona = ?", eventID, personID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			att = Attendance{IDEvento: eventID, IDPersona: personID}
			if err := tx.Create(&att).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"asistio":            true,
			"movilizado":         true,
			"fecha_checkin":      now,
			"id_usuario_checkin": byUser,
		}
		if err := tx.Model(&att).Updates(updates).Error; err != nil {
			return err
		}

		return mirrorToAssignment(tx, eventID, personID, true)
	})
	if err != nil {
		return nil, err
	}
	metrics.CheckIns.Inc()
	return &att, nil
}

// SetAttended flips the attendance flag directly (corrections from the list
// view) and keeps the assignment mirror in step, both directions.
func SetAttended(conn *gorm.DB, attendanceID uint, attended bool, byUser uint) (*Attendance, error) {
	var att Attendance
	err := conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&att, "id = ?", attendanceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		updates := map[string]interface{}{"asistio": attended}
		if attended {
			now := time.Now().UTC()
			updates["fecha_checkin"] = now
			updates["id_usuario_checkin"] = byUser
		}
		if err := tx.Model(&att).Updates(updates).Error; err != nil {
			return err
		}
		return mirrorToAssignment(tx, att.IDEvento, att.IDPersona, attended)
	})
	if err != nil {
		return nil, err
	}
	return &att, nil
}

// mirrorToAssignment is the single place the Attendance→Assignment mirror
// lives. The reverse direction (assignment-side check-in) goes through
// CheckIn, so both paths share one rule.
func mirrorToAssignment(tx *gorm.DB, eventID, personID uint, attended bool) error {
	return tx.Model(&Assignment{}).
		Where("id_evento = ? AND id_persona = ?", eventID, personID).
		Update("asistio", attended).Error
}

// UpsertPosition records the mobilizer's live position. Prior active rows go
// inactive; event and vehicle context is denormalized into the new row.
func UpsertPosition(conn *gorm.DB, pos *RealTimePosition) error {
	return conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&RealTimePosition{}).
			Where("id_usuario = ? AND activo = ?", pos.IDUsuario, true).
			Update("activo", false).Error; err != nil {
			return err
		}

		if pos.IDEvento != nil && pos.IDVehiculo != nil {
			var vehicle Vehicle
			if err := tx.First(&vehicle, "id = ?", *pos.IDVehiculo).Error; err == nil {
				pos.TipoVehiculo = vehicle.Tipo
				pos.PlacasVehiculo = vehicle.Placas
				pos.CapacidadVehiculo = vehicle.Capacidad
			}

			var nombre string
			tx.Table("eventos.eventos").Where("id = ?", *pos.IDEvento).
				Select("nombre").Scan(&nombre)
			pos.NombreEvento = nombre

			var total int64
			if err := tx.Model(&Assignment{}).
				Where("id_evento = ? AND id_vehiculo = ?", *pos.IDEvento, *pos.IDVehiculo).
				Count(&total).Error; err != nil {
				return err
			}
			pos.TotalPersonas = int(total)
		}

		pos.Activo = true
		return tx.Create(pos).Error
	})
}

// refreshPositionCount keeps the denormalized total_personas of any active
// position for this (event, vehicle) in step after assignment changes.
func refreshPositionCount(conn *gorm.DB, eventID, vehicleID uint) {
	var total int64
	if err := conn.Model(&Assignment{}).
		Where("id_evento = ? AND id_vehiculo = ?", eventID, vehicleID).
		Count(&total).Error; err != nil {
		return
	}
	conn.Model(&RealTimePosition{}).
		Where("id_evento = ? AND id_vehiculo = ? AND activo = ?", eventID, vehicleID, true).
		Update("total_personas", total)
}
