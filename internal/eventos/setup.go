package eventos

import (
	"log"

	"github.com/ParticipaSonora/PS-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "eventos"); err != nil {
		log.Fatal("Failed to ensure schema eventos: ", err)
	}
	if err := db.DB.AutoMigrate(&Event{}); err != nil {
		log.Fatal("Failed to auto-migrate eventos tables: ", err)
	}
}
