// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tsunami Contributors

// Package plugin provides plugin management and lifecycle control.
package plugin

// Module is an open loadable module. It exists as a seam over the runtime's
// shared-object support so the handshake and lifecycle logic can be exercised
// without compiling real shared objects.
type Module interface {
	// Lookup resolves an exported symbol by name.
	Lookup(name string) (any, error)

	// Close releases the module. Close must only be called after every
	// plugin value constructed from the module has been released; plugin
	// code and method tables live inside the module's mapped memory.
	Close() error
}

// ModuleOpener opens loadable modules from disk.
type ModuleOpener interface {
	// Open loads the module at path. The path is expected to exist; the
	// caller distinguishes missing files before calling Open.
	Open(path string) (Module, error)
}
