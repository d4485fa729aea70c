package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported database/sql driver names.
const (
	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

// Config holds everything the service needs at start. It is built once in main
// and passed down; handlers never look at the environment themselves.
type Config struct {
	AppEnv   string
	LogLevel string
	Server   ServerConfig
	Database DatabaseConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port               string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

// DatabaseConfig controls the connection pool.
type DatabaseConfig struct {
	URL             string
	Driver          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Addr returns the listen address for the configured port.
func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("server_port", "5000")
	v.SetDefault("cors_allowed_origins", "")
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("db_driver", DriverPQ)
	v.SetDefault("db_max_open_conns", 25)
	v.SetDefault("db_max_idle_conns", 5)
	v.SetDefault("db_conn_max_lifetime", "30m")
}

// LoadEnvFile loads a .env file into the process environment unless the
// environment says it is production. A missing file is reported but is not
// an error for the caller to stop on.
func LoadEnvFile(path string, appEnv string) (loaded bool, err error) {
	if appEnv == "production" {
		return false, nil
	}
	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("no env file at %s: %w", path, err)
	}
	return true, nil
}

// Load resolves the configuration from v, which reads the environment and any
// bound flags, and validates it.
func Load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	SetDefaults(v)

	cfg := &Config{
		AppEnv:   v.GetString("app_env"),
		LogLevel: v.GetString("log_level"),
		Server: ServerConfig{
			Port:               strings.TrimSpace(v.GetString("server_port")),
			CORSAllowedOrigins: splitOrigins(v.GetString("cors_allowed_origins")),
			ShutdownTimeout:    v.GetDuration("shutdown_timeout"),
		},
		Database: DatabaseConfig{
			URL:             strings.TrimSpace(v.GetString("database_url")),
			Driver:          strings.ToLower(strings.TrimSpace(v.GetString("db_driver"))),
			MaxOpenConns:    v.GetInt("db_max_open_conns"),
			MaxIdleConns:    v.GetInt("db_max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db_conn_max_lifetime"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	switch c.Database.Driver {
	case DriverPQ, DriverPGX:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported (use %q or %q)", c.Database.Driver, DriverPQ, DriverPGX))
	}
	if c.Database.MaxOpenConns < 0 {
		errs = append(errs, fmt.Errorf("DB_MAX_OPEN_CONNS must not be negative, got %d", c.Database.MaxOpenConns))
	}
	if c.Database.MaxIdleConns < 0 {
		errs = append(errs, fmt.Errorf("DB_MAX_IDLE_CONNS must not be negative, got %d", c.Database.MaxIdleConns))
	}
	if !validPort(c.Server.Port) {
		errs = append(errs, fmt.Errorf("SERVER_PORT %q is not a valid port", c.Server.Port))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT must not be negative, got %s", c.Server.ShutdownTimeout))
	}

	return errors.Join(errs...)
}

// splitOrigins turns a comma separated list into origins, falling back to "*".
func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func validPort(port string) bool {
	n, err := strconv.Atoi(port)
	return err == nil && n > 0 && n <= 65535
}
