// Package config loads the optional yaesutool YAML configuration. Everything
// in it has a working default; the tool runs without a config file at all.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config represents the yaesutool configuration
type Config struct {
	Serial struct {
		Device        string `yaml:"device"`
		Baud          int    `yaml:"baud"` // override of the model's clone speed
		ReadTimeoutMs int    `yaml:"read_timeout_ms"`
	} `yaml:"serial"`

	Archive struct {
		DatabasePath string `yaml:"database_path"`
		MaxSnapshots int    `yaml:"max_snapshots"`
		Disabled     bool   `yaml:"disabled"`
	} `yaml:"archive"`

	Logging struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSize    int    `yaml:"max_size"`    // megabytes
		MaxBackups int    `yaml:"max_backups"` // number of rotated files
		MaxAge     int    `yaml:"max_age"`     // days
		Compress   bool   `yaml:"compress"`
		Console    bool   `yaml:"console"`
	} `yaml:"logging"`
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	var config Config
	config.applyDefaults()
	return &config
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Serial.Device == "" {
		c.Serial.Device = "/dev/ttyUSB0"
	}
	if c.Serial.ReadTimeoutMs == 0 {
		c.Serial.ReadTimeoutMs = 2000
	}
	if c.Archive.DatabasePath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			c.Archive.DatabasePath = home + "/.yaesutool/archive.db"
		} else {
			c.Archive.DatabasePath = "./yaesutool.db"
		}
	}
	if c.Archive.MaxSnapshots == 0 {
		c.Archive.MaxSnapshots = 100
	}
	if c.Logging.MaxSize == 0 {
		c.Logging.MaxSize = 10
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 3
	}
	if c.Logging.MaxAge == 0 {
		c.Logging.MaxAge = 30
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Serial.ReadTimeoutMs < 0 {
		return fmt.Errorf("serial read timeout must not be negative")
	}
	if c.Serial.Baud < 0 {
		return fmt.Errorf("serial baud must not be negative")
	}
	if c.Archive.MaxSnapshots < 0 {
		return fmt.Errorf("archive max_snapshots must not be negative")
	}
	return nil
}
