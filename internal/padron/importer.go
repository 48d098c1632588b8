package padron

import (
	"fmt"

	"github.com/ParticipaSonora/PS-Backend/internal/metrics"
	"gorm.io/gorm"
)

const defaultBatchSize = 1000

// RowError ties an import failure to its source line. Line numbers count the
// header as line 1.
type RowError struct {
	Linea int    `json:"linea"`
	Error string `json:"error"`
}

type Summary struct {
	Importados   int        `json:"importados"`
	Duplicados   int        `json:"duplicados"`
	Errores      []RowError `json:"errores"`
	Bytes        int        `json:"bytes"`
	Advertencias []string   `json:"advertencias,omitempty"`
}

// Import writes a parsed table into the roll in batches, committing per batch
// so a partial import stays durable. Rows whose ELECTOR already exists active
// count as duplicates and are skipped.
func Import(conn *gorm.DB, t *Table, batchSize int) (*Summary, error) {
	if err := CheckColumns(t.Columns); err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	summary := &Summary{Bytes: t.Bytes, Advertencias: t.Warnings}

	for start := 0; start < len(t.Rows); start += batchSize {
		end := start + batchSize
		if end > len(t.Rows) {
			end = len(t.Rows)
		}

		entries := make([]*PadronEntry, 0, end-start)
		lines := make([]int, 0, end-start)
		keys := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			entry, err := entryFromRow(t.Columns, t.Rows[i])
			if err != nil {
				summary.Errores = append(summary.Errores, RowError{Linea: i + 2, Error: err.Error()})
				continue
			}
			entries = append(entries, entry)
			lines = append(lines, i+2)
			keys = append(keys, entry.Elector)
		}
		if len(entries) == 0 {
			continue
		}

		err := conn.Transaction(func(tx *gorm.DB) error {
			var existing []string
			if err := tx.Model(&PadronEntry{}).
				Where("elector IN ? AND activo = ?", keys, true).
				Pluck("elector", &existing).Error; err != nil {
				return err
			}
			taken := make(map[string]bool, len(existing))
			for _, e := range existing {
				taken[e] = true
			}

			for j, entry := range entries {
				if taken[entry.Elector] {
					summary.Duplicados++
					continue
				}
				// Nested transaction = savepoint, so one bad row does not
				// poison the rest of the batch.
				err := tx.Transaction(func(tx2 *gorm.DB) error {
					return tx2.Create(entry).Error
				})
				if err != nil {
					summary.Errores = append(summary.Errores,
						RowError{Linea: lines[j], Error: fmt.Sprintf("inserción fallida: %v", err)})
					continue
				}
				// Repeats inside the same file also count as duplicates.
				taken[entry.Elector] = true
				summary.Importados++
			}
			return nil
		})
		if err != nil {
			return summary, fmt.Errorf("lote %d-%d: %w", start+2, end+1, err)
		}
	}

	metrics.PadronRowsImported.Add(float64(summary.Importados))
	metrics.PadronRowsSkipped.Add(float64(summary.Duplicados))
	return summary, nil
}
