// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tsunami Contributors

package plugin

// Error codes returned by load and register operations. All are recoverable:
// a failed load leaves the manager unchanged and does not prevent subsequent
// registrations. Match them with oops.AsOops(err).Code().
const (
	// CodeModuleNotFound means the module file does not exist or is
	// unreadable.
	CodeModuleNotFound = "MODULE_NOT_FOUND"

	// CodeModuleInvalid means the file exists but is not a valid loadable
	// module for this platform.
	CodeModuleInvalid = "MODULE_INVALID"

	// CodeMissingHandshake means a required export surface symbol is
	// absent or has the wrong type; the file is not a conforming plugin.
	CodeMissingHandshake = "MISSING_HANDSHAKE"

	// CodeVersionMismatch means the module's version token differs from
	// the host's. The error context carries "component"
	// (ComponentToolchain or ComponentPackage), "expected" and "found".
	CodeVersionMismatch = "VERSION_MISMATCH"

	// CodeOnLoadFailure wraps the error returned by a plugin's OnLoad.
	// The just-constructed instance was torn down and nothing was
	// registered.
	CodeOnLoadFailure = "ON_LOAD_FAILURE"
)
