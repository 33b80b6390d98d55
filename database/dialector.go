package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DriverFunc builds a dialector from a DSN.
type DriverFunc func(dsn string) gorm.Dialector

var drivers = map[string]DriverFunc{
	DriverSQLite:   sqlite.Open,
	DriverPostgres: postgres.Open,
}

// Dialector returns the dialector for cfg.Driver.
func Dialector(cfg Config) (gorm.Dialector, error) {
	open, ok := drivers[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	return open(cfg.DSN), nil
}
