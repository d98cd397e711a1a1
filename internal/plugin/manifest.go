// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tsunami Contributors

package plugin

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Type identifies how a plugin is delivered.
type Type string

// Plugin types supported by the host.
const (
	// TypeShared is a Go shared object loaded from disk.
	TypeShared Type = "shared"
	// TypeStatic references a builtin compiled into the host.
	TypeStatic Type = "static"
)

// ManifestFileName is the per-plugin manifest file.
const ManifestFileName = "tsunami.yaml"

// Manifest represents a tsunami.yaml file.
type Manifest struct {
	Name         string        `yaml:"name" json:"name"`
	Version      string        `yaml:"version" json:"version"`
	Type         Type          `yaml:"type" json:"type"`
	SharedPlugin *SharedConfig `yaml:"shared-plugin,omitempty" json:"shared-plugin,omitempty"`
	StaticPlugin *StaticConfig `yaml:"static-plugin,omitempty" json:"static-plugin,omitempty"`
}

// SharedConfig holds shared-object plugin configuration.
type SharedConfig struct {
	// Module is the shared object file name, relative to the plugin
	// directory. Glob patterns are allowed, e.g. "echo-*.so".
	Module string `yaml:"module" json:"module"`
}

// StaticConfig holds static plugin configuration.
type StaticConfig struct {
	// Builtin names a plugin constructor compiled into the host.
	Builtin string `yaml:"builtin" json:"builtin"`
}

// maxNameLength is the maximum allowed length for plugin names.
const maxNameLength = 64

// namePattern validates plugin names: must start with lowercase letter,
// followed by lowercase letters, digits, or hyphens.
// Cannot end with a hyphen. Single character names are allowed.
var namePattern = regexp.MustCompile(`^[a-z]([a-z0-9-]*[a-z0-9])?$`)

// ParseManifest parses and validates a tsunami.yaml file.
func ParseManifest(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("manifest data is empty")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks manifest constraints.
func (m *Manifest) Validate() error {
	if m.Name == "" || !namePattern.MatchString(m.Name) {
		return fmt.Errorf("name %q must start with a-z, contain only a-z, 0-9, hyphens, and not end with a hyphen", m.Name)
	}
	if len(m.Name) > maxNameLength {
		return fmt.Errorf("name must be %d characters or less, got %d", maxNameLength, len(m.Name))
	}

	if m.Version == "" {
		return fmt.Errorf("version is required")
	}
	if _, err := semver.StrictNewVersion(m.Version); err != nil {
		return fmt.Errorf("version %q is not valid semver: %w", m.Version, err)
	}

	switch m.Type {
	case TypeShared:
		if m.SharedPlugin == nil {
			return fmt.Errorf("shared-plugin is required when type is shared")
		}
		if m.SharedPlugin.Module == "" {
			return fmt.Errorf("shared-plugin.module is required")
		}
		if _, err := glob.Compile(m.SharedPlugin.Module); err != nil {
			return fmt.Errorf("shared-plugin.module %q is not a valid pattern: %w", m.SharedPlugin.Module, err)
		}
	case TypeStatic:
		if m.StaticPlugin == nil {
			return fmt.Errorf("static-plugin is required when type is static")
		}
		if m.StaticPlugin.Builtin == "" {
			return fmt.Errorf("static-plugin.builtin is required")
		}
	default:
		return fmt.Errorf("type must be 'shared' or 'static', got %q", m.Type)
	}

	return nil
}
