// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load builds a Config from defaults, then an optional YAML file, then
// environment overrides, and validates the result. If path is empty it
// falls back to "config.yaml" in the working directory when present.
func Load(path string) (*Config, error) {
	cfg := New()

	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies VIS_* environment variables on top of whatever
// the file provided. Only surfaces that matter for deployment are exposed.
func (c *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("VIS_WS_ADDR"); ok {
		c.WSAddr = val
	}
	if val, ok := os.LookupEnv("VIS_LOG_LEVEL"); ok {
		c.LogLevel = val
	}
	if val, ok := os.LookupEnv("VIS_INPUT_DEVICE"); ok {
		if id, err := strconv.Atoi(val); err == nil {
			c.DeviceID = id
		}
	}
	if val, ok := os.LookupEnv("VIS_INPUT_FILE"); ok {
		c.InputFile = val
	}
}
