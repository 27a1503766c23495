package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Bench   BenchConfig   `toml:"bench" yaml:"bench"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Profile ProfileConfig `toml:"profile" yaml:"profile"`
}

type BenchConfig struct {
	Duration     time.Duration `toml:"duration" yaml:"duration"`
	TickInterval time.Duration `toml:"tick_interval" yaml:"tick_interval"`
	Entities     int           `toml:"entities" yaml:"entities"`
	ChurnPerTick int           `toml:"churn_per_tick" yaml:"churn_per_tick"` // component add/remove operations per tick
	Seed         uint64        `toml:"seed" yaml:"seed"`                     // 0 picks a time-based seed
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

type ProfileConfig struct {
	Mode string `toml:"mode" yaml:"mode"` // "", "cpu" or "mem"
	Path string `toml:"path" yaml:"path"`
}

// Load reads the file at path over the defaults. The format follows the
// extension: .toml, or .yaml/.yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Defaults()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("config %s: unsupported format %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the bench tool cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Bench.Duration <= 0:
		return fmt.Errorf("bench.duration must be positive, got %s", c.Bench.Duration)
	case c.Bench.TickInterval <= 0:
		return fmt.Errorf("bench.tick_interval must be positive, got %s", c.Bench.TickInterval)
	case c.Bench.Entities < 0:
		return fmt.Errorf("bench.entities must not be negative, got %d", c.Bench.Entities)
	case c.Bench.ChurnPerTick < 0:
		return fmt.Errorf("bench.churn_per_tick must not be negative, got %d", c.Bench.ChurnPerTick)
	}

	switch c.Profile.Mode {
	case "", "cpu", "mem":
	default:
		return fmt.Errorf("profile.mode %q is not one of cpu, mem", c.Profile.Mode)
	}
	return nil
}

// Defaults returns the configuration used when no file is given.
func Defaults() *Config {
	return &Config{
		Bench: BenchConfig{
			Duration:     10 * time.Second,
			TickInterval: 16 * time.Millisecond,
			Entities:     10000,
			ChurnPerTick: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Profile: ProfileConfig{
			Path: ".",
		},
	}
}
