// Package config loads the ecs-stress driver configuration.
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
	Simulation SimulationConfig `toml:"simulation" yaml:"simulation"`
	Scheduler  SchedulerConfig  `toml:"scheduler" yaml:"scheduler"`
	Logging    LoggingConfig    `toml:"logging" yaml:"logging"`
}

type SimulationConfig struct {
	TickRate       float64       `toml:"tick_rate" yaml:"tick_rate"` // ticks per second, 0 runs unthrottled
	Duration       time.Duration `toml:"duration" yaml:"duration"`
	Worlds         int           `toml:"worlds" yaml:"worlds"`     // independent worlds ticked in parallel
	Entities       int           `toml:"entities" yaml:"entities"` // initial entities per world
	AttributeTypes int           `toml:"attribute_types" yaml:"attribute_types"`
	Systems        int           `toml:"systems" yaml:"systems"`
	Seed           int64         `toml:"seed" yaml:"seed"` // 0 picks a time based seed
}

type SchedulerConfig struct {
	FailurePolicy string `toml:"failure_policy" yaml:"failure_policy"` // "continue" or "abort"
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

// Load reads a TOML or YAML file, chosen by extension, over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := defaults()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("config %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return defaults()
}

func (c *Config) Validate() error {
	switch {
	case c.Simulation.TickRate < 0:
		return fmt.Errorf("simulation.tick_rate must not be negative, got %v", c.Simulation.TickRate)
	case c.Simulation.Duration <= 0:
		return fmt.Errorf("simulation.duration must be positive, got %s", c.Simulation.Duration)
	case c.Simulation.Worlds < 1:
		return fmt.Errorf("simulation.worlds must be at least 1, got %d", c.Simulation.Worlds)
	case c.Simulation.Entities < 0:
		return fmt.Errorf("simulation.entities must not be negative, got %d", c.Simulation.Entities)
	case c.Simulation.AttributeTypes < 1:
		return fmt.Errorf("simulation.attribute_types must be at least 1, got %d", c.Simulation.AttributeTypes)
	case c.Simulation.Systems < 0:
		return fmt.Errorf("simulation.systems must not be negative, got %d", c.Simulation.Systems)
	}

	switch c.Scheduler.FailurePolicy {
	case "continue", "abort":
	default:
		return fmt.Errorf("scheduler.failure_policy must be continue or abort, got %q", c.Scheduler.FailurePolicy)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TickRate:       60,
			Duration:       10 * time.Second,
			Worlds:         1,
			Entities:       10000,
			AttributeTypes: 16,
			Systems:        8,
		},
		Scheduler: SchedulerConfig{
			FailurePolicy: "continue",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
