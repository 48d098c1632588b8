package movilizacion

import (
	"log"

	"github.com/ParticipaSonora/PS-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "movilizacion"); err != nil {
		log.Fatal("Failed to ensure schema movilizacion: ", err)
	}
	if err := db.DB.AutoMigrate(&Vehicle{}, &Assignment{}, &Attendance{}, &RealTimePosition{}); err != nil {
		log.Fatal("Failed to auto-migrate movilizacion tables: ", err)
	}
}
