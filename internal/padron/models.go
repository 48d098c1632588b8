package padron

import "time"

// PadronEntry is one electoral-roll row. The column set follows the canonical
// roll export; everything except elector may be empty in the source.
type PadronEntry struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Consecutivo      *int       `json:"consecutivo"`
	Elector          string     `gorm:"size:20;not null" json:"elector"`
	FolioNacimiento  string     `gorm:"size:20" json:"folio_nacimiento"`
	OCR              string     `gorm:"size:20" json:"ocr"`
	ApellidoPaterno  string     `gorm:"size:80" json:"apellido_paterno"`
	ApellidoMaterno  string     `gorm:"size:80" json:"apellido_materno"`
	Nombre           string     `gorm:"size:80" json:"nombre"`
	FechaNacimiento  *time.Time `json:"fecha_nacimiento"`
	Edad             *int       `json:"edad"`
	Sexo             string     `gorm:"size:1" json:"sexo"`
	CURP             string     `gorm:"size:18" json:"curp"`
	Ocupacion        string     `gorm:"size:80" json:"ocupacion"`
	Calle            string     `gorm:"size:120" json:"calle"`
	NumExterior      string     `gorm:"size:20" json:"num_exterior"`
	NumInterior      string     `gorm:"size:20" json:"num_interior"`
	Colonia          string     `gorm:"size:120" json:"colonia"`
	CP               string     `gorm:"size:5" json:"cp"`
	TiempoResidencia string     `gorm:"size:20" json:"tiempo_residencia"`
	Entidad          string     `gorm:"size:50" json:"entidad"`
	Distrito         string     `gorm:"size:10" json:"distrito"`
	Municipio        string     `gorm:"size:80" json:"municipio"`
	Seccion          string     `gorm:"size:6" json:"seccion"`
	Localidad        string     `gorm:"size:80" json:"localidad"`
	Manzana          string     `gorm:"size:10" json:"manzana"`
	EnLN             string     `gorm:"size:5" json:"en_ln"`
	Mision           string     `gorm:"size:20" json:"mision"`
	FechaImportacion time.Time  `gorm:"autoCreateTime" json:"fecha_importacion"`
	Activo           bool       `gorm:"default:true" json:"activo"`

	// Assignment: at most one leader holds an entry; releasing is explicit.
	IDLiderAsignado     *uint      `json:"id_lider_asignado"`
	FechaAsignacion     *time.Time `json:"fecha_asignacion"`
	IDUsuarioAsignacion *uint      `json:"id_usuario_asignacion"`
}

func (PadronEntry) TableName() string { return "padron.registros" }

func (e PadronEntry) Asignado() bool { return e.IDLiderAsignado != nil }
