package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/logging"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/pipeline"
)

// FileConfig is the on-disk configuration shape. Sections not present in
// the file keep their defaults, so a partial file is always valid.
type FileConfig struct {
	Logging  logging.Config  `toml:"logging"`
	Pipeline pipeline.Config `toml:"pipeline"`
}

// LoadFileConfig loads the full configuration file. Used by the config
// watcher, which wants parse errors surfaced rather than swallowed.
func LoadFileConfig(path string) (FileConfig, error) {
	cfg := FileConfig{
		Logging:  logging.Config{Level: "info", Format: "text"},
		Pipeline: pipeline.DefaultConfig(),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	// The logging section mixes fixed keys with per-module levels, so it
	// needs the permissive loader rather than strict struct decoding.
	cfg.Logging = LoadLoggingConfig(path)

	return cfg, nil
}

// LoadPipelineConfig loads pipeline configuration from a TOML config file.
// Returns defaults if the file doesn't exist or can't be parsed.
func LoadPipelineConfig(configPath string) pipeline.Config {
	cfg := pipeline.DefaultConfig()

	if configPath == "" {
		return cfg
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg
	}

	var rawConfig struct {
		Pipeline pipeline.Config `toml:"pipeline"`
	}
	rawConfig.Pipeline = cfg
	if err := toml.Unmarshal(data, &rawConfig); err != nil {
		return cfg
	}

	return rawConfig.Pipeline
}
