// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package conf

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Configuration values for the application.
//
// A Config is built once at process start with Load and then passed by
// value into everything that needs it. Nothing below cmd/ reads the
// environment on its own.
type Config struct {
	// Credentials and endpoint selection for OpenStack.
	// These are only taken from the environment, never from a file.
	OpenStack OpenStackConfig `yaml:"-"`
	// Structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`
	// Monitoring configuration.
	Monitoring MonitoringConfig `yaml:"monitoring"`
	// Policy that decides which instances are reported and to whom.
	Policy PolicyConfig `yaml:"policy"`
}

// Create the configuration with all defaults applied.
func NewDefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{LevelStr: "info", Format: "text"},
		Policy:  NewDefaultPolicyConfig(),
	}
}

// Load the configuration for this process.
//
// Defaults are applied first, then the optional yaml file at path (an empty
// path skips the file), then the environment. The result is not validated,
// call Validate before using it.
func Load(path string) (Config, error) {
	c := NewDefaultConfig()
	if path != "" {
		if err := c.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	c.OpenStack = NewOpenStackConfigFromEnv()
	c.Logging = c.Logging.withEnvOverrides()
	c.Monitoring = c.Monitoring.withEnvOverrides()
	return c, nil
}

// Read the yaml file at path on top of the current values.
func (c *Config) mergeFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open config file: %w", err)
	}
	defer file.Close()
	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("cannot read config file %s: %w", path, err)
	}
	return c.mergeBytes(bytes)
}

func (c *Config) mergeBytes(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("cannot parse config: %w", err)
	}
	return nil
}
