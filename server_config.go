package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"rrt-planner/planner"
)

// ServerConfig is the YAML configuration of the planning service
type ServerConfig struct {
	Addr             string         `yaml:"addr"`
	LogLevel         string         `yaml:"logLevel"`
	ObstacleFile     string         `yaml:"obstacleFile"`
	MaxRuns          int            `yaml:"maxRuns"`
	BatchParallelism int            `yaml:"batchParallelism"`
	MaxBatchSeeds    int            `yaml:"maxBatchSeeds"`
	ExportDir        string         `yaml:"exportDir"`
	Planner          planner.Config `yaml:"planner"`
}

// DefaultServerConfig returns the settings used when no file is given
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:             ":8080",
		LogLevel:         "info",
		MaxRuns:          256,
		BatchParallelism: 4,
		MaxBatchSeeds:    64,
		Planner:          planner.DefaultConfig(),
	}
}

// LoadServerConfig reads a YAML file on top of the defaults
func LoadServerConfig(filename string) (ServerConfig, error) {
	cfg := DefaultServerConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the server settings and the default planner config
func (c ServerConfig) Validate() error {
	if c.MaxRuns <= 0 {
		return fmt.Errorf("maxRuns must be positive, got %d", c.MaxRuns)
	}
	if c.BatchParallelism <= 0 {
		return fmt.Errorf("batchParallelism must be positive, got %d", c.BatchParallelism)
	}
	if c.MaxBatchSeeds <= 0 {
		return fmt.Errorf("maxBatchSeeds must be positive, got %d", c.MaxBatchSeeds)
	}
	if err := c.Planner.Validate(); err != nil {
		return fmt.Errorf("planner: %w", err)
	}
	return nil
}
