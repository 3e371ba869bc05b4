package config

import (
	"fmt"
	"path/filepath"
)

type Config struct {
	General  `mapstructure:"general"`
	Rest     `mapstructure:"rest"`
	Database `mapstructure:"database"`
	Tracing  `mapstructure:"tracing"`
}

type General struct {
	DataDir string `mapstructure:"data_dir"`
	Debug   bool   `mapstructure:"debug"`
}

type Rest struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"` // "*" allows every origin
}

const (
	DriverSQLite = "sqlite"
	DriverClover = "clover"
)

type Database struct {
	Driver       string `mapstructure:"driver"`        // sqlite or clover
	DSN          string `mapstructure:"dsn"`           // sqlite only, defaults to <data_dir>/papergen.db
	Path         string `mapstructure:"path"`          // clover only, defaults to <data_dir>/clover
	AutoMigrate  bool   `mapstructure:"auto_migrate"`  // run pending migrations on connect
	StrictDelete bool   `mapstructure:"strict_delete"` // fail deletes and updates of missing records
}

type Tracing struct {
	Endpoint    string `mapstructure:"endpoint"` // OTLP gRPC collector, tracing is off when empty
	Insecure    bool   `mapstructure:"insecure"`
	ServiceName string `mapstructure:"service_name"`
}

// Validate rejects configurations no component can serve.
func (c Config) Validate() error {
	if c.Rest.Port < 0 || c.Rest.Port > 65535 {
		return fmt.Errorf("rest.port out of range: %d", c.Rest.Port)
	}
	return c.Database.Validate()
}

// Validate checks the database driver is supported.
func (d Database) Validate() error {
	switch d.Driver {
	case DriverSQLite, DriverClover:
		return nil
	default:
		return fmt.Errorf("unsupported database driver %q (want %q or %q)", d.Driver, DriverSQLite, DriverClover)
	}
}

// SQLiteDSN returns the configured DSN or the default database file under dataDir.
func (d Database) SQLiteDSN(dataDir string) string {
	if d.DSN != "" {
		return d.DSN
	}
	return filepath.Join(dataDir, "papergen.db")
}

// CloverPath returns the configured clover directory or the default one under dataDir.
func (d Database) CloverPath(dataDir string) string {
	if d.Path != "" {
		return d.Path
	}
	return filepath.Join(dataDir, "clover")
}
