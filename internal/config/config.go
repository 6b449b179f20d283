// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime knob. All values have defaults; only
// AdminKey has no safe default and admin endpoints stay disabled while
// it is empty.
type Config struct {
	Port     int    `env:"GODSWORN_PORT" envDefault:"8080"`
	AdminKey string `env:"GODSWORN_ADMIN_KEY"`

	DBPath      string `env:"GODSWORN_DB_PATH" envDefault:"godsworn.db"`
	RefDataPath string `env:"GODSWORN_REFDATA_PATH"`

	WorldSeed    int64 `env:"GODSWORN_WORLD_SEED" envDefault:"0"`
	WorldRegions int   `env:"GODSWORN_WORLD_REGIONS" envDefault:"6"`

	TickInterval time.Duration `env:"GODSWORN_TICK_INTERVAL" envDefault:"10s"`
	TickSpeed    float64       `env:"GODSWORN_TICK_SPEED" envDefault:"0"`
	Workers      int           `env:"GODSWORN_WORKERS" envDefault:"4"`

	LogLevel string `env:"GODSWORN_LOG_LEVEL" envDefault:"info"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
