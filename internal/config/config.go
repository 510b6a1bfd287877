package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ecsim/internal/replaylog"
)

const (
	DefaultGridSize = 10
	DefaultActors   = 3
	DefaultTicks    = 60
	DefaultTickMS   = 500
)

type Config struct {
	GridSize int `yaml:"grid_size"`
	Actors   int `yaml:"actors"`
	Ticks    int `yaml:"ticks"`
	TickMS   int `yaml:"tick_ms"`
	// Seed 0 means derive one from the clock at startup.
	Seed      int64            `yaml:"seed"`
	ReplayLog replaylog.Config `yaml:"replay_log"`
}

func DefaultConfig() *Config {
	return &Config{
		GridSize:  DefaultGridSize,
		Actors:    DefaultActors,
		Ticks:     DefaultTicks,
		TickMS:    DefaultTickMS,
		Seed:      0,
		ReplayLog: replaylog.DefaultConfig(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
