package noticias

import (
	"log"

	"github.com/ParticipaSonora/PS-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "noticias"); err != nil {
		log.Fatal("Failed to ensure schema noticias: ", err)
	}
	if err := db.DB.AutoMigrate(&News{}, &Comment{}); err != nil {
		log.Fatal("Failed to auto-migrate noticias tables: ", err)
	}
}
