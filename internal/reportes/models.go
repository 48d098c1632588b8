package reportes

import (
	"time"

	"github.com/lib/pq"
)

// CitizenReport is a geolocated issue sent in by a citizen, anonymous or
// authenticated. The photo column accepts either a stored /uploads/ URL or an
// inline base64 payload, the compatibility shim older clients still use.
type CitizenReport struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	Titulo        string  `gorm:"size:150;not null" json:"titulo"`
	Descripcion   string  `gorm:"size:2000;not null" json:"descripcion"`
	Tipo          string  `gorm:"size:50;not null;index" json:"tipo"`
	Estado        string  `gorm:"size:20;default:pendiente;index" json:"estado"`
	Prioridad     string  `gorm:"size:10;default:normal" json:"prioridad"`
	Latitud       float64 `gorm:"not null" json:"latitud"`
	Longitud      float64 `gorm:"not null" json:"longitud"`
	Direccion     string  `gorm:"size:250" json:"direccion"`
	FotoURL       string  `gorm:"size:50000" json:"foto_url"`
	EmailContacto string  `gorm:"size:100" json:"email_contacto"`
	Publico       bool    `gorm:"default:true" json:"publico"`
	Activo        bool    `gorm:"default:true" json:"activo"`

	IDReportante         *uint      `json:"id_reportante"`
	IDAdminActualizacion *uint      `json:"id_admin_actualizacion"`
	FechaCreacion        time.Time  `gorm:"autoCreateTime;index" json:"fecha_creacion"`
	FechaActualizacion   time.Time  `gorm:"autoUpdateTime" json:"fecha_actualizacion"`
	FechaResolucion      *time.Time `json:"fecha_resolucion"`
}

func (CitizenReport) TableName() string { return "reportes.reportes_ciudadanos" }

// TypeRegistry is the closed set of report types, one row, toggled by admins.
type TypeRegistry struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	TiposActivos pq.StringArray `gorm:"type:text[]" json:"tipos_activos"`
}

func (TypeRegistry) TableName() string { return "reportes.configuracion_tipos" }

// defaultTypes seeds the registry on first start with the values the mobile
// forms submit.
var defaultTypes = []string{
	"baches_banqueta_invadida", "alumbrado_publico", "fugas_agua",
	"drenaje_tapado", "basura_acumulada", "seguridad",
	"parques_descuidados", "semaforos_descompuestos", "otro",
}
