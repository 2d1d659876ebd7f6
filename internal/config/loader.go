package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from config.toml and the environment.
//
// When path is empty, a config.toml in the working directory is used if
// present and silently skipped otherwise. An explicit path must exist.
// Environment variables use the RECORDBOOK_ prefix with underscores, e.g.
// RECORDBOOK_DATABASE_URL overrides database.url.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix("RECORDBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Port:            v.GetInt("server.port"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			IdleTimeout:     v.GetDuration("server.idle_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Path:            v.GetString("database.path"),
			URL:             v.GetString("database.url"),
			ConnectAttempts: v.GetInt("database.connect_attempts"),
			ConnectDelay:    v.GetDuration("database.connect_delay"),
		},
		Export: ExportConfig{
			Dir:      v.GetString("export.dir"),
			AutoCSV:  v.GetBool("export.auto_csv"),
			AutoJSON: v.GetBool("export.auto_json"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Pages: PagesConfig{
			Welcome: v.GetString("pages.welcome"),
			Main:    v.GetString("pages.main"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "db/database.db")
	v.SetDefault("database.url", "")
	v.SetDefault("database.connect_attempts", 10)
	v.SetDefault("database.connect_delay", "5s")

	v.SetDefault("export.dir", "exports")
	v.SetDefault("export.auto_csv", false)
	v.SetDefault("export.auto_json", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("pages.welcome", "welcome.html")
	v.SetDefault("pages.main", "main.html")
}
