// Package config loads the census configuration from defaults, an optional
// YAML file and CENSUS_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/tsawler/census/logging"
	"github.com/tsawler/census/store"
)

// EnvPrefix prefixes every environment variable, e.g.
// CENSUS_DATABASE_HOST for database.host.
const EnvPrefix = "CENSUS"

// Config is the complete configuration.
type Config struct {
	Database store.Config   `mapstructure:"database" yaml:"database"`
	Log      logging.Config `mapstructure:"log" yaml:"log"`
	API      API            `mapstructure:"api" yaml:"api"`
	Ingest   Ingest         `mapstructure:"ingest" yaml:"ingest"`
}

// API configures the HTTP server.
type API struct {
	Addr           string   `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	// RateLimit is requests per second per client; 0 disables limiting.
	RateLimit    float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	Burst        int     `mapstructure:"burst" yaml:"burst"`
	DistrictsCSV string  `mapstructure:"districts_csv" yaml:"districts_csv"`
}

// Ingest configures ingestion runs.
type Ingest struct {
	// DatasetsFile holds extra YAML dataset definitions.
	DatasetsFile string `mapstructure:"datasets_file" yaml:"datasets_file"`
	// StopAtFirst stops after the first strategy that loads records.
	StopAtFirst bool `mapstructure:"stop_at_first" yaml:"stop_at_first"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database: store.DefaultConfig(),
		Log:      logging.DefaultConfig(),
		API: API{
			Addr:           ":8000",
			AllowedOrigins: []string{"http://localhost:3000"},
			RateLimit:      20,
			Burst:          40,
			DistrictsCSV:   "district_data.csv",
		},
	}
}

// SetDefaults registers every key with v so environment variables bind
// during Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.name", d.Database.Name)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", d.Database.SSLMode)
	v.SetDefault("database.path", "")
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("api.addr", d.API.Addr)
	v.SetDefault("api.allowed_origins", d.API.AllowedOrigins)
	v.SetDefault("api.rate_limit", d.API.RateLimit)
	v.SetDefault("api.burst", d.API.Burst)
	v.SetDefault("api.districts_csv", d.API.DistrictsCSV)
	v.SetDefault("ingest.datasets_file", "")
	v.SetDefault("ingest.stop_at_first", false)
}

// Bind sets up environment lookup on v. DB_PASSWORD is honoured as a
// fallback for the database password.
func Bind(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("database.password", EnvPrefix+"_DATABASE_PASSWORD", "DB_PASSWORD")
}

// ReadFile reads path into v. An empty path is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	return nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// New builds a viper instance with defaults, environment binding and the
// optional file at path, and loads it.
func New(path string) (*viper.Viper, Config, error) {
	v := viper.New()
	SetDefaults(v)
	Bind(v)
	if err := ReadFile(v, path); err != nil {
		return nil, Config{}, err
	}
	cfg, err := Load(v)
	if err != nil {
		return nil, Config{}, err
	}
	return v, cfg, nil
}

// Validate checks values that would otherwise fail later.
func (c Config) Validate() error {
	var errs []error
	if _, err := store.ParseDialect(c.Database.Driver); err != nil {
		errs = append(errs, fmt.Errorf("database.driver: %w", err))
	}
	if c.Database.Driver != "sqlite" && (c.Database.Port <= 0 || c.Database.Port > 65535) {
		errs = append(errs, fmt.Errorf("database.port: %d out of range", c.Database.Port))
	}
	if c.API.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("api.rate_limit: negative"))
	}
	if c.API.RateLimit > 0 && c.API.Burst < 1 {
		errs = append(errs, fmt.Errorf("api.burst: must be at least 1 when rate limiting"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
