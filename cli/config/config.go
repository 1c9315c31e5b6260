// Package config loads optional YAML defaults for the harness CLI.
//
// Precedence: flags override environment, environment overrides the
// config file. The file only supplies defaults; it can never force a
// value the user set elsewhere.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when --config is
// absent. A missing default file is not an error.
const DefaultFile = "gauntlet.yaml"

// Config represents a gauntlet.yaml configuration file. All values are
// optional defaults for the corresponding flags.
type Config struct {
	Format      string   `yaml:"format"`
	Color       string   `yaml:"color"`
	TestThreads int      `yaml:"test_threads"`
	Logfile     string   `yaml:"logfile"`
	Nocapture   bool     `yaml:"nocapture"`
	Quiet       bool     `yaml:"quiet"`
	Skip        []string `yaml:"skip"`
}

// Load reads and validates the config file at path. Unknown keys are
// errors; an empty file is a valid empty config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if cfg.TestThreads < 0 {
		return nil, fmt.Errorf("config test_threads must not be negative (was %d)", cfg.TestThreads)
	}
	return &cfg, nil
}

// LoadDefault loads DefaultFile when it exists, or an empty config.
func LoadDefault() (*Config, error) {
	if _, err := os.Stat(DefaultFile); err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	return Load(DefaultFile)
}
