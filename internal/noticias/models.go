package noticias

import "time"

// News is an announcement shown in the app feed. Banner items are the
// destacada subset, ordered for the carousel.
type News struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Titulo           string     `gorm:"size:150;not null" json:"titulo"`
	Resumen          string     `gorm:"size:300" json:"resumen"`
	Contenido        string     `gorm:"size:10000" json:"contenido"`
	ImagenURL        string     `gorm:"size:500" json:"imagen_url"`
	Categoria        string     `gorm:"size:50;index" json:"categoria"`
	Prioridad        int        `gorm:"default:0" json:"prioridad"`
	Destacada        bool       `gorm:"default:false" json:"destacada"`
	FechaPublicacion time.Time  `gorm:"index" json:"fecha_publicacion"`
	FechaExpiracion  *time.Time `json:"fecha_expiracion"`
	Vistas           int64      `gorm:"default:0" json:"vistas"`
	Clicks           int64      `gorm:"default:0" json:"clicks"`
	Activo           bool       `gorm:"default:true" json:"activo"`
	IDAutor          uint       `gorm:"not null" json:"id_autor"`
	FechaCreacion    time.Time  `gorm:"autoCreateTime" json:"fecha_creacion"`
}

func (News) TableName() string { return "noticias.noticias" }

type Comment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	IDNoticia     uint      `gorm:"not null;index" json:"id_noticia"`
	IDUsuario     uint      `gorm:"not null" json:"id_usuario"`
	Texto         string    `gorm:"size:1000;not null" json:"texto"`
	Activo        bool      `gorm:"default:true" json:"activo"`
	FechaCreacion time.Time `gorm:"autoCreateTime" json:"fecha_creacion"`
}

func (Comment) TableName() string { return "noticias.comentarios" }
