// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tsunami Contributors

// Package config loads host configuration from defaults, an optional YAML
// file and command-line flags, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/tsunami-stream/tsunami/internal/xdg"
)

// Config holds configuration for the tsunami host process.
type Config struct {
	// PluginsDir is the directory scanned for plugin manifests.
	PluginsDir string `koanf:"plugins-dir"`
	// LogFormat is "json" or "text".
	LogFormat string `koanf:"log-format"`
	// MetricsAddr is the observability HTTP address; empty disables it.
	MetricsAddr string `koanf:"metrics-addr"`
	// TriggerInterval is the delay between data-path trigger values.
	TriggerInterval time.Duration `koanf:"trigger-interval"`
}

// Default values.
const (
	DefaultLogFormat       = "json"
	DefaultMetricsAddr     = "127.0.0.1:9100"
	DefaultTriggerInterval = time.Second
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		PluginsDir:      xdg.PluginsDir(),
		LogFormat:       DefaultLogFormat,
		MetricsAddr:     DefaultMetricsAddr,
		TriggerInterval: DefaultTriggerInterval,
	}
}

// Load builds the effective configuration. The file at path is optional
// unless the path was explicitly given; flags may be nil.
func Load(path string, explicit bool, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()

	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return cfg, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		} else if explicit {
			return cfg, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return cfg, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.PluginsDir == "" {
		return fmt.Errorf("plugins-dir is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("log-format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if c.TriggerInterval <= 0 {
		return fmt.Errorf("trigger-interval must be positive, got %s", c.TriggerInterval)
	}
	return nil
}
