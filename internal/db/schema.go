package db

import "gorm.io/gorm"

func EnsureSchema(d *gorm.DB, schema string) error {
	return d.Exec(`CREATE SCHEMA IF NOT EXISTS "` + schema + `"`).Error
}

// EnsureIndex runs a raw CREATE INDEX IF NOT EXISTS statement. AutoMigrate
// covers single-column tags; composite and partial indexes go through here.
func EnsureIndex(d *gorm.DB, stmt string) error {
	return d.Exec(stmt).Error
}
