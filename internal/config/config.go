// Package config provides centralized configuration management. Settings
// come from an optional config.toml, overridden by RECORDBOOK_* environment
// variables, and are validated once at startup so misconfiguration fails
// fast instead of surfacing mid-request.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all application configuration. It is constructed once in
// main and passed by reference to the components that need it; there is no
// package-level mutable state.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Export   ExportConfig
	Logging  LoggingConfig
	Pages    PagesConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0).
	Host string

	// Port is the port to listen on (default: 8080).
	Port int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// ShutdownTimeout bounds graceful shutdown (default: 10s).
	ShutdownTimeout time.Duration
}

// DatabaseConfig selects and parameterizes the record store backend.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres" (default: sqlite).
	Driver string

	// Path is the sqlite database file (default: db/database.db).
	Path string

	// URL is the postgres connection string; required for the postgres
	// driver.
	URL string

	// ConnectAttempts and ConnectDelay bound the startup retry loop for
	// network-backed stores (defaults: 10 attempts, 5s apart).
	ConnectAttempts int
	ConnectDelay    time.Duration
}

// ExportConfig controls the automatic export side effect of the listing
// endpoint and where on-disk artifacts land.
type ExportConfig struct {
	// Dir is the directory for auto-exported files (default: exports).
	Dir string

	// AutoCSV / AutoJSON write a file after every successful listing read.
	AutoCSV  bool
	AutoJSON bool
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string

	// Format is "text" or "json".
	Format string
}

// PagesConfig names the HTML templates served by the page handlers. The
// main page is selectable, mirroring the original deployment where several
// near-identical listing pages coexisted.
type PagesConfig struct {
	Welcome string
	Main    string
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks the configuration for consistency. All problems are
// reported at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "server.shutdown_timeout must be positive")
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			errs = append(errs, "database.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, "database.url is required for the postgres driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("database.driver (%q) must be %q or %q",
			c.Database.Driver, DriverSQLite, DriverPostgres))
	}
	if c.Database.ConnectAttempts <= 0 {
		errs = append(errs, "database.connect_attempts must be positive")
	}
	if c.Database.ConnectDelay < 0 {
		errs = append(errs, "database.connect_delay must be non-negative")
	}

	if (c.Export.AutoCSV || c.Export.AutoJSON) && c.Export.Dir == "" {
		errs = append(errs, "export.dir is required when auto export is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
