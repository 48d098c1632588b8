package personas

import (
	"log"

	"github.com/ParticipaSonora/PS-Backend/internal/db"
	"github.com/ParticipaSonora/PS-Backend/internal/geocoding"
)

// Geocoder is the shared external client; nil means fallback-table only.
var Geocoder *geocoding.Client

func Init(geocoder *geocoding.Client) {
	Geocoder = geocoder

	if err := db.EnsureSchema(db.DB, "registro"); err != nil {
		log.Fatal("Failed to ensure schema registro: ", err)
	}
	if err := db.DB.AutoMigrate(&Person{}); err != nil {
		log.Fatal("Failed to auto-migrate personas tables: ", err)
	}

	// Accent-insensitive search relies on unaccent().
	if err := db.DB.Exec(`CREATE EXTENSION IF NOT EXISTS unaccent`).Error; err != nil {
		log.Fatal("Failed to enable unaccent extension: ", err)
	}

	// Voter key unique among active rows only; reactivating an old record
	// must not collide with its soft-deleted predecessor.
	if err := db.EnsureIndex(db.DB, `
        CREATE UNIQUE INDEX IF NOT EXISTS personas_clave_elector_activa
        ON registro.personas (clave_elector)
        WHERE activo AND clave_elector <> ''`); err != nil {
		log.Fatal("Failed to create personas_clave_elector_activa: ", err)
	}
	if err := db.EnsureIndex(db.DB, `
        CREATE INDEX IF NOT EXISTS personas_colonia_cp
        ON registro.personas (colonia, cp)`); err != nil {
		log.Fatal("Failed to create personas_colonia_cp: ", err)
	}
}
