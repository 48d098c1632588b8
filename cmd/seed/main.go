// Command seed bootstraps a fresh database: schemas, default role profiles
// and the first admin account. Run once after provisioning.
package main

import (
	"fmt"
	"os"

	"github.com/ParticipaSonora/PS-Backend/internal/auth"
	"github.com/ParticipaSonora/PS-Backend/internal/config"
	"github.com/ParticipaSonora/PS-Backend/internal/db"
	"github.com/ParticipaSonora/PS-Backend/internal/perfiles"
	"github.com/ParticipaSonora/PS-Backend/internal/reportes"
	"github.com/ParticipaSonora/PS-Backend/internal/utils"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load(".env.local")

	cfg := config.LoadFromEnv()
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_EMAIL and ADMIN_PASSWORD are required")
		os.Exit(1)
	}
	nombre := os.Getenv("ADMIN_NOMBRE")
	if nombre == "" {
		nombre = "Administrador"
	}

	db.Connect(cfg.DatabaseURL)
	auth.Init()
	perfiles.Init()
	reportes.Init(nil)

	var existing auth.User
	if err := db.DB.First(&existing, "email = ?", email).Error; err == nil {
		fmt.Printf("admin %s already exists (id %d), nothing to do\n", email, existing.ID)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hashing password:", err)
		os.Exit(1)
	}

	admin := auth.User{
		Nombre:         nombre,
		Email:          email,
		HashedPassword: string(hashed),
		Rol:            utils.RoleAdmin,
		Activo:         true,
	}
	if err := db.DB.Create(&admin).Error; err != nil {
		fmt.Fprintln(os.Stderr, "creating admin:", err)
		os.Exit(1)
	}
	fmt.Printf("created admin %s (id %d)\n", email, admin.ID)
}
