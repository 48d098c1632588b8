package movilizacion

import "time"

// Vehicle belongs to a mobilizer (a leader) and caps how many persons can be
// assigned to it per event.
type Vehicle struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Tipo          string    `gorm:"size:50" json:"tipo"`
	Capacidad     int       `gorm:"not null" json:"capacidad"`
	Placas        string    `gorm:"size:15" json:"placas"`
	Descripcion   string    `gorm:"size:250" json:"descripcion"`
	IDMovilizador uint      `gorm:"not null;index" json:"id_movilizador"`
	Activo        bool      `gorm:"default:true" json:"activo"`
	FechaRegistro time.Time `gorm:"autoCreateTime" json:"fecha_registro"`
}

func (Vehicle) TableName() string { return "movilizacion.vehiculos" }

// Assignment allocates a person to a vehicle for one event.
type Assignment struct {
	ID                 uint   `gorm:"primaryKey" json:"id"`
	IDEvento           uint   `gorm:"not null;index:idx_mov_evento_vehiculo_persona,unique" json:"id_evento"`
	IDVehiculo         uint   `gorm:"not null;index:idx_mov_evento_vehiculo_persona,unique" json:"id_vehiculo"`
	IDPersona          uint   `gorm:"not null;index:idx_mov_evento_vehiculo_persona,unique" json:"id_persona"`
	Asistio            bool   `json:"asistio"`
	RequiereTransporte bool   `json:"requiere_transporte"`
	Observaciones      string `gorm:"size:500" json:"observaciones"`
}

func (Assignment) TableName() string { return "movilizacion.movilizaciones" }

// Attendance is a person's participation record for an event, independent of
// any vehicle. Attendance and Assignment mirror their asistio flags.
type Attendance struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	IDEvento           uint       `gorm:"not null;index:idx_asis_evento_persona,unique" json:"id_evento"`
	IDPersona          uint       `gorm:"not null;index:idx_asis_evento_persona,unique" json:"id_persona"`
	Asistio            bool       `json:"asistio"`
	Movilizado         bool       `json:"movilizado"`
	RequiereTransporte bool       `json:"requiere_transporte"`
	Observaciones      string     `gorm:"size:500" json:"observaciones"`
	FechaRegistro      time.Time  `gorm:"autoCreateTime" json:"fecha_registro"`
	FechaCheckin       *time.Time `json:"fecha_checkin"`
	IDUsuarioCheckin   *uint      `json:"id_usuario_checkin"`
}

func (Attendance) TableName() string { return "movilizacion.asistencias" }

// RealTimePosition is the mobilizer's live-tracking record. Event and vehicle
// details are denormalized in so dashboards read one row without joins.
type RealTimePosition struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	IDUsuario         uint      `gorm:"not null;index" json:"id_usuario"`
	Latitud           float64   `json:"latitud"`
	Longitud          float64   `json:"longitud"`
	Velocidad         float64   `json:"velocidad"`
	Direccion         string    `gorm:"size:250" json:"direccion"`
	Precision_        float64   `gorm:"column:precision" json:"precision"`
	Bateria           int       `json:"bateria"`
	Fecha             time.Time `gorm:"autoCreateTime" json:"fecha"`
	Activo            bool      `gorm:"default:true" json:"activo"`
	IDEvento          *uint     `json:"id_evento"`
	IDVehiculo        *uint     `json:"id_vehiculo"`
	NombreEvento      string    `gorm:"size:150" json:"nombre_evento"`
	TipoVehiculo      string    `gorm:"size:50" json:"tipo_vehiculo"`
	PlacasVehiculo    string    `gorm:"size:15" json:"placas_vehiculo"`
	CapacidadVehiculo int       `json:"capacidad_vehiculo"`
	TotalPersonas     int       `json:"total_personas"`
}

func (RealTimePosition) TableName() string { return "movilizacion.posiciones_tiempo_real" }
