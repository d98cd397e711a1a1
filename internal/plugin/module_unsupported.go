// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tsunami Contributors

//go:build !(linux || darwin || freebsd)

package plugin

import "errors"

// DefaultOpener is a stub on platforms without shared-object support.
type DefaultOpener struct{}

// Open always fails; Go plugins are only supported on Linux, macOS and
// FreeBSD.
func (DefaultOpener) Open(string) (Module, error) {
	return nil, errors.New("shared objects are not supported on this platform")
}
