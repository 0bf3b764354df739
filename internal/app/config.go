package app

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultWorkers is the batch import worker count when neither flag nor run
// configuration sets one.
const DefaultWorkers = 4

// Config holds everything one App run needs. The caller builds it and hands
// it in; the importer keeps no process-global state.
type Config struct {
	DeckPath  string // bulk data file or directory of them
	CardsPath string // extra card manifests merged over the builtins
	Export    string // JSON export target, "" disables

	LogFormat       string
	LogLevel        string
	Workers         int
	Strict          bool // unknown card types abort instead of landing in the skip report
	MaxIncludeDepth int
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.DeckPath == "" {
		return nil, errors.New("DeckPath is a required configuration field and cannot be empty")
	}
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers
	}
	return &cfg, nil
}

// FileConfig is the optional YAML run-configuration file. Keys mirror the
// command line flags; an explicitly passed flag wins over the file value.
type FileConfig struct {
	LogLevel        string `yaml:"log_level"`
	LogFormat       string `yaml:"log_format"`
	CardsPath       string `yaml:"cards_path"`
	Export          string `yaml:"export"`
	Workers         int    `yaml:"workers"`
	Strict          bool   `yaml:"strict"`
	MaxIncludeDepth int    `yaml:"max_include_depth"`
}

// LoadConfigFile reads and parses a YAML run-configuration file.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run configuration %s: %w", path, err)
	}
	return ParseConfigFile(path, data)
}

// ParseConfigFile parses YAML run-configuration data.
func ParseConfigFile(path string, data []byte) (*FileConfig, error) {
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing run configuration %s: %w", path, err)
	}
	return &fc, nil
}
