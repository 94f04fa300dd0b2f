// Package config loads the YAML configuration used by the translate CLI.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the CLI front-end settings.
type Config struct {
	// Source is the default dialect incoming documents are written in.
	Source string `yaml:"source" json:"source"`

	// Target is the default dialect documents are translated into.
	Target string `yaml:"target" json:"target"`

	// Model is the model name stamped into translated requests.
	Model string `yaml:"model" json:"model"`

	// LogLevel selects the logrus level (debug, info, warn, error).
	LogLevel string `yaml:"log-level" json:"log-level"`

	// LoggingToFile switches log output from stdout to a rotating file.
	LoggingToFile bool `yaml:"logging-to-file" json:"logging-to-file"`

	// LogDir is the directory for rotating log files when LoggingToFile is set.
	LogDir string `yaml:"log-dir" json:"log-dir"`
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() *Config {
	return &Config{
		Source:   "openai",
		Target:   "antigravity",
		LogLevel: "info",
		LogDir:   "logs",
	}
}

// LoadConfig reads and parses a YAML configuration file. Fields absent from
// the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return cfg, nil
}
