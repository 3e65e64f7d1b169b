// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverBolt     = "bolt"
	DriverPostgres = "postgres"
)

// DefaultGeometryURL is the public china.json the map geometry is fetched from.
const DefaultGeometryURL = "https://cdn.jsdelivr.net/npm/echarts/map/json/china.json"

// Config holds all configuration values for the API server and tripctl.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `envconfig:"PORT" default:"8080"`

	// LogLevel controls the minimum log level.
	// Valid values: debug, info, warn, error.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to the Vite dev server. Set CORS_ORIGINS to a comma-separated
	// list to override.
	CORSOrigins CSV `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`

	// StoreDriver selects where the trip collection lives: bolt or postgres.
	StoreDriver string `envconfig:"STORE_DRIVER" default:"bolt"`

	// BoltPath is the database file used by the bolt driver.
	BoltPath string `envconfig:"BOLT_PATH" default:"logbook.db"`

	// DatabaseURL is the Postgres connection string. Required for the postgres driver.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// GeometryURL is where map geometry is fetched from at map initialisation.
	// Unset or empty means DefaultGeometryURL.
	GeometryURL string `envconfig:"GEOMETRY_URL"`

	// GeometryTimeout bounds the geometry fetch. Zero means no client timeout.
	GeometryTimeout time.Duration `envconfig:"GEOMETRY_TIMEOUT" default:"0s"`

	// MapName is the geometry set name the map series refers to.
	MapName string `envconfig:"MAP_NAME" default:"china"`

	// DetailPage is the trip detail view clicks on visited regions go to.
	DetailPage string `envconfig:"DETAIL_PAGE" default:"trip-detail.html"`

	// MaxBodyBytes caps request body size.
	MaxBodyBytes int64 `envconfig:"MAX_BODY_BYTES" default:"10485760"`

	// SeedDemoTrips loads the three demo trips when the store is empty.
	SeedDemoTrips bool `envconfig:"SEED_DEMO_TRIPS" default:"false"`
}

// CSV is a comma-separated env value; entries are trimmed and empties dropped.
type CSV []string

// Decode implements envconfig.Decoder.
func (c *CSV) Decode(value string) error {
	*c = splitCSV(value)
	return nil
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	if strings.TrimSpace(cfg.GeometryURL) == "" {
		cfg.GeometryURL = DefaultGeometryURL
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field rules envconfig cannot express.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverBolt, DriverPostgres:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q: want %s or %s", c.StoreDriver, DriverBolt, DriverPostgres)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported LOG_LEVEL %q", c.LogLevel)
	}

	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}

	var missing []string
	if c.StoreDriver == DriverPostgres && c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.StoreDriver == DriverBolt && c.BoltPath == "" {
		missing = append(missing, "BOLT_PATH")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
