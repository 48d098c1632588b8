package auth

import "time"

// User is a principal of the system: staff, hierarchy leaders, capturistas
// and self-registered ciudadanos all live in one table distinguished by rol.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Nombre         string    `gorm:"size:150" json:"nombre"`
	Telefono       string    `gorm:"size:20" json:"telefono"`
	Direccion      string    `gorm:"size:250" json:"direccion"`
	Edad           *int      `json:"edad"`
	Sexo           string    `gorm:"size:1" json:"sexo"`
	Email          string    `gorm:"size:120;uniqueIndex" json:"email"`
	Password       string    `gorm:"-" json:"password,omitempty"`
	HashedPassword string    `json:"-"`
	Rol            string    `gorm:"size:30;default:'ciudadano'" json:"rol"`
	IDSuperior     *uint     `gorm:"index" json:"id_superior"`
	Activo         bool      `gorm:"default:true" json:"activo"`
	FechaRegistro  time.Time `gorm:"autoCreateTime" json:"fecha_registro"`
}

func (User) TableName() string { return "app_auth.usuarios" }
