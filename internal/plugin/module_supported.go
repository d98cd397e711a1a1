// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tsunami Contributors

//go:build linux || darwin || freebsd

package plugin

import (
	stdplugin "plugin"
)

// DefaultOpener opens Go shared objects (-buildmode=plugin) with the
// runtime's plugin support.
type DefaultOpener struct{}

// Open loads the shared object at path.
func (DefaultOpener) Open(path string) (Module, error) {
	p, err := stdplugin.Open(path)
	if err != nil {
		return nil, err //nolint:wrapcheck // caller classifies open failures
	}
	return &sharedObject{p: p}, nil
}

// sharedObject adapts the runtime plugin handle to Module.
type sharedObject struct {
	p *stdplugin.Plugin
}

func (s *sharedObject) Lookup(name string) (any, error) {
	sym, err := s.p.Lookup(name)
	if err != nil {
		return nil, err //nolint:wrapcheck // caller classifies lookup failures
	}
	return sym, nil
}

// Close drops the handle. The Go runtime never unmaps a loaded shared object,
// so the mapping persists for the life of the process; the release-ordering
// contract still holds because nothing is ever released early.
func (s *sharedObject) Close() error {
	s.p = nil
	return nil
}
