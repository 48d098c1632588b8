package personas

import "time"

// Person is a registered constituent managed by a leader. Distinct from the
// padrón catalog: these rows were captured by the organization itself.
type Person struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Nombre             string    `gorm:"size:150" json:"nombre"`
	Telefono           string    `gorm:"size:20" json:"telefono"`
	Direccion          string    `gorm:"size:250" json:"direccion"`
	Edad               *int      `json:"edad"`
	Sexo               string    `gorm:"size:1" json:"sexo"`
	ClaveElector       string    `gorm:"size:20;index" json:"clave_elector"`
	CURP               string    `gorm:"size:18" json:"curp"`
	NumeroEmision      string    `gorm:"size:4" json:"numero_emision"`
	Seccion            string    `gorm:"size:6;index" json:"seccion"`
	Distrito           string    `gorm:"size:4" json:"distrito"`
	Municipio          string    `gorm:"size:80" json:"municipio"`
	Estado             string    `gorm:"size:40" json:"estado"`
	Colonia            string    `gorm:"size:120" json:"colonia"`
	CP                 string    `gorm:"size:5" json:"cp"`
	Latitud            *float64  `json:"latitud"`
	Longitud           *float64  `json:"longitud"`
	AceptaPoliticas    bool      `json:"acepta_politicas"`
	IDLiderResponsable uint      `gorm:"not null;index" json:"id_lider_responsable"`
	IDUsuarioRegistro  uint      `gorm:"not null;index" json:"id_usuario_registro"`
	Activo             bool      `gorm:"default:true" json:"activo"`
	FechaRegistro      time.Time `gorm:"autoCreateTime" json:"fecha_registro"`
}

func (Person) TableName() string { return "registro.personas" }

func validCoordinates(lat, lng *float64) bool {
	if lat == nil || lng == nil {
		return true
	}
	return *lat >= -90 && *lat <= 90 && *lng >= -180 && *lng <= 180
}
