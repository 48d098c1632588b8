package reportes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ParticipaSonora/PS-Backend/internal/db"
	"github.com/ParticipaSonora/PS-Backend/internal/httpx"
	"github.com/ParticipaSonora/PS-Backend/internal/logging"
	"gorm.io/gorm"
)

// hygieneFilter selects reports for bulk deletion. Empty fields match all.
type hygieneFilter struct {
	FechaDesde string `json:"fecha_desde"`
	FechaHasta string `json:"fecha_hasta"`
	Tipo       string `json:"tipo"`
	Estado     string `json:"estado"`
}

func (f hygieneFilter) apply(q *gorm.DB) (*gorm.DB, error) {
	if f.FechaDesde != "" {
		from, err := time.Parse("2006-01-02", f.FechaDesde)
		if err != nil {
			return nil, fmt.Errorf("fecha_desde inválida: %q", f.FechaDesde)
		}
		q = q.Where("fecha_creacion >= ?", from)
	}
	if f.FechaHasta != "" {
		to, err := time.Parse("2006-01-02", f.FechaHasta)
		if err != nil {
			return nil, fmt.Errorf("fecha_hasta inválida: %q", f.FechaHasta)
		}
		q = q.Where("fecha_creacion < ?", to.AddDate(0, 0, 1))
	}
	if f.Tipo != "" {
		q = q.Where("tipo = ?", f.Tipo)
	}
	if f.Estado != "" {
		if !ValidState(f.Estado) {
			return nil, fmt.Errorf("estado desconocido: %q", f.Estado)
		}
		q = q.Where("estado = ?", f.Estado)
	}
	return q, nil
}

// PreviewDeleteHandler reports how many rows the filter would remove, nothing
// else.
func PreviewDeleteHandler(w http.ResponseWriter, r *http.Request) {
	var filter hygieneFilter
	if err := httpx.Decode(r, &filter); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	q, err := filter.apply(db.DB.Model(&CitizenReport{}))
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Error de base de datos")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"registros_a_eliminar": count})
}

// DeleteHandler removes the filtered rows in one transaction, but only after
// a JSON snapshot of them lands on disk.
func DeleteHandler(w http.ResponseWriter, r *http.Request) {
	var filter hygieneFilter
	if err := httpx.Decode(r, &filter); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var deleted int64
	var backup string
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		q, err := filter.apply(tx.Model(&CitizenReport{}))
		if err != nil {
			return err
		}
		var rows []CitizenReport
		if err := q.Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		backup, err = writeBackup(rows)
		if err != nil {
			return fmt.Errorf("respaldo fallido, no se eliminó nada: %w", err)
		}

		ids := make([]uint, len(rows))
		for i, row := range rows {
			ids[i] = row.ID
		}
		res := tx.Where("id IN ?", ids).Delete(&CitizenReport{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	logging.L().Infow("citizen reports purged", "rows", deleted, "backup", backup)
	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"registros_eliminados": deleted,
		"respaldo":             backup,
	})
}

// writeBackup drops the snapshot next to the uploads so operators can pull it
// back with a one-off script.
func writeBackup(rows []CitizenReport) (string, error) {
	if Photos == nil {
		return "", fmt.Errorf("sin directorio de respaldos")
	}
	name := fmt.Sprintf("respaldo_reportes_%s.json", time.Now().UTC().Format("20060102T150405"))
	path := filepath.Join(Photos.Root(), name)

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}
