// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tsunami Contributors

package plugin

import "runtime"

// PackageVersion identifies the version of this capability-interface package.
// It is one half of the version token compared during the load handshake; the
// host refuses to use a module compiled against a different value.
const PackageVersion = "1.0.0"

// ToolchainVersion identifies the Go toolchain that compiled the current
// binary. runtime.Version is baked in at build time, so host and module each
// report the toolchain that actually produced them.
var ToolchainVersion = runtime.Version()

// Export surface symbol names. A loadable module must export functions under
// exactly these names from its main package:
//
//	TsunamiToolchainVersion func() string
//	TsunamiPackageVersion   func() string
//	TsunamiCreatePlugin     func() any
//
// The symbol types are built from predeclared types only, so the host can
// assert them across the module boundary before any shared type identity has
// been verified. CreatePlugin's return value is only asserted to Plugin after
// both version components match byte for byte.
const (
	SymToolchainVersion = "TsunamiToolchainVersion"
	SymPackageVersion   = "TsunamiPackageVersion"
	SymCreatePlugin     = "TsunamiCreatePlugin"
)

// Component names for version-mismatch errors.
const (
	ComponentToolchain = "toolchain"
	ComponentPackage   = "package"
)
