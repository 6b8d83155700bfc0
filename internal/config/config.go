// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig points at the PostgreSQL content store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// AdminConfig configures the ops HTTP server.
type AdminConfig struct {
	Listen string `yaml:"listen"`
}

// SchedulerConfig controls the periodic update pass.
type SchedulerConfig struct {
	Interval string `yaml:"interval"`
}

// SynthConfig tunes synthetic engagement record generation.
type SynthConfig struct {
	ActorCap          int `yaml:"actor_cap"`
	BatchSize         int `yaml:"batch_size"`
	ViewDurationMinMS int `yaml:"view_duration_min_ms"`
	ViewDurationMaxMS int `yaml:"view_duration_max_ms"`
}

// ExportConfig selects optional snapshot export sinks.
type ExportConfig struct {
	File             string `yaml:"file"`
	GreptimeEndpoint string `yaml:"greptime_endpoint"`
	GreptimeTable    string `yaml:"greptime_table"`
}

// Config is the root configuration for the engagement simulator.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Admin     AdminConfig     `yaml:"admin"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Synth     SynthConfig     `yaml:"synth"`
	Export    ExportConfig    `yaml:"export"`
	Profiles  string          `yaml:"profiles"`
}

// PassInterval parses the scheduler interval, defaulting to 5 minutes.
func (c *Config) PassInterval() (time.Duration, error) {
	if c.Scheduler.Interval == "" {
		return 5 * time.Minute, nil
	}
	d, err := time.ParseDuration(c.Scheduler.Interval)
	if err != nil {
		return 0, fmt.Errorf("invalid scheduler interval %q: %w", c.Scheduler.Interval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("scheduler interval must be positive, got %s", d)
	}
	return d, nil
}

// Load loads YAML config and validates it against a CUE schema
func Load(configPath, cueSchemaPath string) (*Config, error) {
	// Validate with CUE first
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Database.DSN == "" {
		cfg.Database.DSN = os.Getenv("DATABASE_URL")
	}
	if cfg.Admin.Listen == "" {
		cfg.Admin.Listen = ":8080"
	}
	if _, err := cfg.PassInterval(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
