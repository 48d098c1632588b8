package padron

import (
	"log"
	"os"
	"path/filepath"

	"github.com/ParticipaSonora/PS-Backend/internal/db"
)

// stageDir holds uploaded roll files between analyze and confirm, and chunked
// upload fragments.
var stageDir string

func stagePath(name, ext string) string {
	return filepath.Join(stageDir, name+ext)
}

func Init(stagingDir string) {
	stageDir = filepath.Join(stagingDir, "padron")
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		log.Fatal("Failed to create padron staging dir: ", err)
	}

	if err := db.EnsureSchema(db.DB, "padron"); err != nil {
		log.Fatal("Failed to ensure schema padron: ", err)
	}
	if err := db.DB.AutoMigrate(&PadronEntry{}); err != nil {
		log.Fatal("Failed to auto-migrate padron tables: ", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_padron_elector ON padron.registros (elector)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_padron_curp
		   ON padron.registros (curp) WHERE activo AND curp <> ''`,
		`CREATE INDEX IF NOT EXISTS idx_padron_municipio_seccion
		   ON padron.registros (municipio, seccion)`,
		`CREATE INDEX IF NOT EXISTS idx_padron_lider_activo
		   ON padron.registros (id_lider_asignado, activo)`,
	}
	for _, stmt := range indexes {
		if err := db.EnsureIndex(db.DB, stmt); err != nil {
			log.Fatal("Failed to create padron index: ", err)
		}
	}
}
