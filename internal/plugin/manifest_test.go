// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tsunami Contributors

package plugin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	plugins "github.com/tsunami-stream/tsunami/internal/plugin"
)

func TestParseManifest_Shared(t *testing.T) {
	data := []byte(`
name: echo-bot
version: 1.2.3
type: shared
shared-plugin:
  module: "echo-*.so"
`)

	m, err := plugins.ParseManifest(data)
	require.NoError(t, err)

	assert.Equal(t, "echo-bot", m.Name)
	assert.Equal(t, "1.2.3", m.Version)
	assert.Equal(t, plugins.TypeShared, m.Type)
	require.NotNil(t, m.SharedPlugin)
	assert.Equal(t, "echo-*.so", m.SharedPlugin.Module)
}

func TestParseManifest_Static(t *testing.T) {
	data := []byte(`
name: counter
version: 0.1.0
type: static
static-plugin:
  builtin: counter
`)

	m, err := plugins.ParseManifest(data)
	require.NoError(t, err)
	assert.Equal(t, plugins.TypeStatic, m.Type)
	require.NotNil(t, m.StaticPlugin)
	assert.Equal(t, "counter", m.StaticPlugin.Builtin)
}

func TestParseManifest_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "bad yaml", data: "invalid: ["},
		{name: "missing name", data: "version: 1.0.0\ntype: static\nstatic-plugin:\n  builtin: x"},
		{name: "uppercase name", data: "name: Echo\nversion: 1.0.0\ntype: static\nstatic-plugin:\n  builtin: x"},
		{name: "trailing hyphen", data: "name: echo-\nversion: 1.0.0\ntype: static\nstatic-plugin:\n  builtin: x"},
		{name: "missing version", data: "name: echo\ntype: static\nstatic-plugin:\n  builtin: x"},
		{name: "unknown type", data: "name: echo\nversion: 1.0.0\ntype: lua"},
		{name: "shared without config", data: "name: echo\nversion: 1.0.0\ntype: shared"},
		{name: "shared without module", data: "name: echo\nversion: 1.0.0\ntype: shared\nshared-plugin:\n  module: \"\""},
		{name: "static without builtin", data: "name: echo\nversion: 1.0.0\ntype: static\nstatic-plugin:\n  builtin: \"\""},
		{name: "bad module pattern", data: "name: echo\nversion: 1.0.0\ntype: shared\nshared-plugin:\n  module: \"[\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := plugins.ParseManifest([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestManifest_Validate_Version(t *testing.T) {
	valid := func(version string) *plugins.Manifest {
		return &plugins.Manifest{
			Name:         "echo",
			Version:      version,
			Type:         plugins.TypeStatic,
			StaticPlugin: &plugins.StaticConfig{Builtin: "echo"},
		}
	}

	tests := []struct {
		name    string
		version string
		wantErr bool
	}{
		{name: "basic semver", version: "1.0.0"},
		{name: "prerelease", version: "1.0.0-beta.1"},
		{name: "build metadata", version: "1.0.0+build.5"},
		{name: "not semver - plain text", version: "latest", wantErr: true},
		{name: "not semver - single number", version: "1", wantErr: true},
		{name: "not semver - two numbers", version: "1.0", wantErr: true},
		{name: "not semver - leading v", version: "v1.0.0", wantErr: true},
		{name: "not semver - spaces", version: "1.0.0 beta", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := valid(tt.version).Validate()
			if tt.wantErr {
				assert.ErrorContains(t, err, "version")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
