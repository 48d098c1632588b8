package reportes

import (
	"errors"
	"log"

	"github.com/ParticipaSonora/PS-Backend/internal/db"
	"github.com/ParticipaSonora/PS-Backend/internal/media"
	"gorm.io/gorm"
)

// Photos backs report photo uploads and hygiene backups.
var Photos *media.Store

func Init(photos *media.Store) {
	Photos = photos

	if err := db.EnsureSchema(db.DB, "reportes"); err != nil {
		log.Fatal("Failed to ensure schema reportes: ", err)
	}
	if err := db.DB.AutoMigrate(&CitizenReport{}, &TypeRegistry{}); err != nil {
		log.Fatal("Failed to auto-migrate reportes tables: ", err)
	}

	// Seed the type registry once.
	var registry TypeRegistry
	err := db.DB.First(&registry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		registry.TiposActivos = defaultTypes
		if err := db.DB.Create(&registry).Error; err != nil {
			log.Fatal("Failed to seed report type registry: ", err)
		}
	} else if err != nil {
		log.Fatal("Failed to read report type registry: ", err)
	}
}
