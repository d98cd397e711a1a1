// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tsunami Contributors

package plugin

import (
	"bytes"
	"fmt"
	"go/format"
	"regexp"
	"text/template"
)

// Declare describes one concrete plugin type and its zero-argument
// constructor, to be made loadable via the generated export shim. Generating
// the shim with gen-exports is the only sanctioned way to emit the export
// surface; hand-written exports are unsupported.
//
// Because the export symbol names are fixed, a shared object can declare
// exactly one plugin.
type Declare struct {
	// Constructor is the zero-argument constructor expression, e.g.
	// "NewEcho" for a constructor in the main package itself, or
	// "echo.New" together with Import.
	Constructor string

	// Import is the optional package to import for the constructor. Empty
	// when the constructor lives in the plugin's main package.
	Import string
}

var constructorPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Validate checks that the declaration can be rendered.
func (d Declare) Validate() error {
	if d.Constructor == "" {
		return fmt.Errorf("constructor is required")
	}
	if !constructorPattern.MatchString(d.Constructor) {
		return fmt.Errorf("constructor %q is not a valid Go selector", d.Constructor)
	}
	return nil
}

// exportsTemplate renders the three export surface functions. The versions
// reported are the ones compiled into the shared object, not the host's: the
// shim references this package, which the module carries its own copy of.
var exportsTemplate = template.Must(template.New("exports").Parse(`// Code generated by gen-exports. DO NOT EDIT.

package main

import (
{{- if .Import}}
	{{printf "%q" .Import}}
{{end}}
	tsunami "github.com/tsunami-stream/tsunami/pkg/plugin"
)

// TsunamiToolchainVersion reports the Go toolchain that built this module.
func TsunamiToolchainVersion() string { return tsunami.ToolchainVersion }

// TsunamiPackageVersion reports the capability-interface version this module
// was compiled against.
func TsunamiPackageVersion() string { return tsunami.PackageVersion }

// TsunamiCreatePlugin allocates one new plugin instance, transferring
// ownership to the caller.
func TsunamiCreatePlugin() any {
	var construct func() tsunami.Plugin = func() tsunami.Plugin { return {{.Constructor}}() }
	return construct()
}
`))

// RenderExports renders the export shim source for a declaration. The result
// is gofmt-formatted and belongs in the plugin's main package.
func (d Declare) RenderExports() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := exportsTemplate.Execute(&buf, d); err != nil {
		return nil, fmt.Errorf("render exports: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format exports: %w", err)
	}
	return src, nil
}
