package perfiles

import (
	"time"

	"github.com/lib/pq"
)

// ProfileConfig is the per-role application profile: which modules a role
// sees and how the client skins itself.
type ProfileConfig struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Rol            string         `gorm:"size:30;uniqueIndex;not null" json:"rol"`
	Modulos        pq.StringArray `gorm:"type:text[]" json:"modulos"`
	Tema           string         `gorm:"size:20;default:claro" json:"tema"`
	ColorPrimario  string         `gorm:"size:7" json:"color_primario"`
	FechaActualiza time.Time      `gorm:"autoUpdateTime" json:"fecha_actualizacion"`
}

func (ProfileConfig) TableName() string { return "perfiles.configuraciones" }

// DashboardConfig picks the widgets a role's home screen shows.
type DashboardConfig struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Rol            string         `gorm:"size:30;uniqueIndex;not null" json:"rol"`
	Widgets        pq.StringArray `gorm:"type:text[]" json:"widgets"`
	Columnas       int            `gorm:"default:2" json:"columnas"`
	FechaActualiza time.Time      `gorm:"autoUpdateTime" json:"fecha_actualizacion"`
}

func (DashboardConfig) TableName() string { return "perfiles.dashboards" }
