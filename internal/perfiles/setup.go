package perfiles

import (
	_ "embed"
	"errors"
	"log"

	"github.com/ParticipaSonora/PS-Backend/internal/db"
	"github.com/goccy/go-yaml"
	"gorm.io/gorm"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type defaultsFile struct {
	Perfiles map[string]struct {
		Modulos       []string `yaml:"modulos"`
		Tema          string   `yaml:"tema"`
		ColorPrimario string   `yaml:"color_primario"`
	} `yaml:"perfiles"`
	Dashboards map[string]struct {
		Widgets  []string `yaml:"widgets"`
		Columnas int      `yaml:"columnas"`
	} `yaml:"dashboards"`
}

func Init() {
	if err := db.EnsureSchema(db.DB, "perfiles"); err != nil {
		log.Fatal("Failed to ensure schema perfiles: ", err)
	}
	if err := db.DB.AutoMigrate(&ProfileConfig{}, &DashboardConfig{}); err != nil {
		log.Fatal("Failed to auto-migrate perfiles tables: ", err)
	}

	var defaults defaultsFile
	if err := yaml.Unmarshal(defaultsYAML, &defaults); err != nil {
		log.Fatal("Failed to parse profile defaults: ", err)
	}

	// Seed only roles without a stored row; operator edits survive restarts.
	for role, cfg := range defaults.Perfiles {
		var existing ProfileConfig
		err := db.DB.First(&existing, "rol = ?", role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row := ProfileConfig{
				Rol:           role,
				Modulos:       cfg.Modulos,
				Tema:          cfg.Tema,
				ColorPrimario: cfg.ColorPrimario,
			}
			if err := db.DB.Create(&row).Error; err != nil {
				log.Fatal("Failed to seed profile for ", role, ": ", err)
			}
		} else if err != nil {
			log.Fatal("Failed to read profile for ", role, ": ", err)
		}
	}
	for role, cfg := range defaults.Dashboards {
		var existing DashboardConfig
		err := db.DB.First(&existing, "rol = ?", role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row := DashboardConfig{Rol: role, Widgets: cfg.Widgets, Columnas: cfg.Columnas}
			if err := db.DB.Create(&row).Error; err != nil {
				log.Fatal("Failed to seed dashboard for ", role, ": ", err)
			}
		} else if err != nil {
			log.Fatal("Failed to read dashboard for ", role, ": ", err)
		}
	}
}
