// Package config provides configuration management for m3u-filter using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultMaxOpenConns        = 25
	defaultMaxIdleConns        = 10
	defaultMaxPerChannel       = 2
	defaultImportBatchSize     = 1000
	defaultSchedulerInterval   = 6
	defaultDatabaseLogLevel    = "warn"
	defaultGeneratorFormat     = "m3u"
	defaultConnMaxLifetimeHour = time.Hour
)

// Config holds all configuration for the application.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Import    ImportConfig    `mapstructure:"import"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres, mysql
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
}

// StorageConfig holds file storage configuration. Generated playlists are
// pure in-memory values; the output directory is only where the CLI chooses
// to persist them.
type StorageConfig struct {
	BaseDir   string `mapstructure:"base_dir"`
	OutputDir string `mapstructure:"output_dir"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// GeneratorConfig holds playlist generation defaults. Per-run options can
// override any of these.
type GeneratorConfig struct {
	// Format is the default output format, m3u or txt.
	Format string `mapstructure:"format"`
	// MaxPerChannel caps same-name tracks per group kept by ranking.
	// Zero disables the cap.
	MaxPerChannel int `mapstructure:"max_per_channel"`
	// DedupeByURL collapses duplicate stream URLs before filtering.
	DedupeByURL bool `mapstructure:"dedupe_by_url"`
	// EpgURL is a fallback x-tvg-url when no source advertises one.
	EpgURL string `mapstructure:"epg_url"`
}

// SchedulerConfig holds scheduled regeneration configuration.
type SchedulerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// DefaultInterval is the regeneration cadence in hours for rule sets
	// without their own sync interval.
	DefaultInterval int `mapstructure:"default_interval"`
}

// ImportConfig holds playlist import configuration.
type ImportConfig struct {
	BatchSize int `mapstructure:"batch_size"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
// Environment variables are prefixed with M3UFILTER and use underscores for
// nesting. Example: M3UFILTER_DATABASE_DSN=/var/lib/m3u-filter/data.db.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/m3u-filter")
		v.AddConfigPath("$HOME/.m3u-filter")
	}

	v.SetEnvPrefix("M3UFILTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found is OK - we'll use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
// This should be called before reading the config file.
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "m3u-filter.db")
	v.SetDefault("database.max_open_conns", defaultMaxOpenConns)
	v.SetDefault("database.max_idle_conns", defaultMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", defaultConnMaxLifetimeHour)
	v.SetDefault("database.log_level", defaultDatabaseLogLevel)

	// Storage defaults
	v.SetDefault("storage.base_dir", "./data")
	v.SetDefault("storage.output_dir", "output")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Generator defaults
	v.SetDefault("generator.format", defaultGeneratorFormat)
	v.SetDefault("generator.max_per_channel", defaultMaxPerChannel)
	v.SetDefault("generator.dedupe_by_url", true)
	v.SetDefault("generator.epg_url", "")

	// Scheduler defaults
	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.default_interval", defaultSchedulerInterval)

	// Import defaults
	v.SetDefault("import.batch_size", defaultImportBatchSize)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	validDrivers := map[string]bool{"sqlite": true, "postgres": true, "mysql": true}
	if !validDrivers[c.Database.Driver] {
		return fmt.Errorf("database.driver must be one of: sqlite, postgres, mysql")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	if c.Storage.BaseDir == "" {
		return fmt.Errorf("storage.base_dir is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	validOutputFormats := map[string]bool{"m3u": true, "txt": true}
	if !validOutputFormats[c.Generator.Format] {
		return fmt.Errorf("generator.format must be one of: m3u, txt")
	}
	if c.Generator.MaxPerChannel < 0 {
		return fmt.Errorf("generator.max_per_channel must not be negative")
	}

	if c.Scheduler.DefaultInterval < 1 {
		return fmt.Errorf("scheduler.default_interval must be at least 1")
	}

	if c.Import.BatchSize < 1 {
		return fmt.Errorf("import.batch_size must be at least 1")
	}

	return nil
}

// OutputPath returns the full path to the output directory.
func (c *StorageConfig) OutputPath() string {
	return filepath.Join(c.BaseDir, c.OutputDir)
}
