package eventos

import "time"

// Event is a scheduled activity people get mobilized toward. An event stays
// "active" until 24 h past its instant, then becomes historical.
type Event struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Nombre        string    `gorm:"size:150" json:"nombre"`
	Descripcion   string    `gorm:"size:500" json:"descripcion"`
	Fecha         time.Time `gorm:"index" json:"fecha"`
	Lugar         string    `gorm:"size:250" json:"lugar"`
	Tipo          string    `gorm:"size:50" json:"tipo"`
	IDOrganizador uint      `gorm:"not null;index" json:"id_organizador"`
	Seccion       string    `gorm:"size:6" json:"seccion"`
	Colonia       string    `gorm:"size:120" json:"colonia"`
	Activo        bool      `gorm:"default:true" json:"activo"`
	FechaCreacion time.Time `gorm:"autoCreateTime" json:"fecha_creacion"`
}

func (Event) TableName() string { return "eventos.eventos" }

// historicalCutoff: events older than this relative to now are historical.
const historicalCutoff = 24 * time.Hour

func (e Event) EsHistorico(now time.Time) bool {
	return now.Sub(e.Fecha) > historicalCutoff
}
