// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tsunami Contributors

package plugin

import (
	"log/slog"
	"os"

	"github.com/samber/oops"

	pluginpkg "github.com/tsunami-stream/tsunami/pkg/plugin"
)

// Loader performs the load handshake against a module's export surface and
// produces handles. The handshake exists because host and module are compiled
// independently: a polymorphic value's in-memory layout is only safe to use
// if both sides agree on toolchain and capability-interface version, so the
// loader refuses to touch anything the module creates until both components
// of the version token compare byte for byte.
type Loader struct {
	opener     ModuleOpener
	toolchain  string
	pkgVersion string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithModuleOpener substitutes the module opener. Used by tests to inject
// fake modules.
func WithModuleOpener(o ModuleOpener) LoaderOption {
	return func(l *Loader) {
		l.opener = o
	}
}

// WithHostVersions overrides the host's version token. Used by tests; real
// hosts keep the compiled-in values.
func WithHostVersions(toolchain, pkgVersion string) LoaderOption {
	return func(l *Loader) {
		l.toolchain = toolchain
		l.pkgVersion = pkgVersion
	}
}

// NewLoader creates a loader with the host's compiled-in version token.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		opener:     DefaultOpener{},
		toolchain:  pluginpkg.ToolchainVersion,
		pkgVersion: pluginpkg.PackageVersion,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadDynamic opens the module at path, performs the version handshake,
// constructs the plugin and runs its OnLoad. The returned handle owns both
// the plugin value and the open module.
//
// Any failure leaves nothing loaded: a mismatched or non-conforming module is
// closed without constructing a plugin, and a plugin whose OnLoad fails is
// torn down (plugin first, then module) without ever becoming visible.
func (l *Loader) LoadDynamic(path string) (*handle, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, oops.Code(pluginpkg.CodeModuleNotFound).
			With("path", path).
			Wrapf(err, "module %s not found", path)
	}

	mod, err := l.opener.Open(path)
	if err != nil {
		return nil, oops.Code(pluginpkg.CodeModuleInvalid).
			With("path", path).
			Wrapf(err, "%s is not a loadable module", path)
	}

	if err := l.handshake(mod, path); err != nil {
		// The module was never trusted; there is no plugin to release.
		_ = mod.Close()
		return nil, err
	}

	create, err := resolve[func() any](mod, pluginpkg.SymCreatePlugin, path)
	if err != nil {
		_ = mod.Close()
		return nil, err
	}

	p, ok := create().(pluginpkg.Plugin)
	if !ok {
		_ = mod.Close()
		return nil, oops.Code(pluginpkg.CodeModuleInvalid).
			With("path", path).
			Errorf("%s returned a value that does not implement the capability interface", pluginpkg.SymCreatePlugin)
	}

	h := newDynamicHandle(p, mod)
	if err := h.load(); err != nil {
		h.discard()
		return nil, oops.Code(pluginpkg.CodeOnLoadFailure).
			With("path", path).
			With("plugin", h.name).
			Wrapf(err, "plugin %s rejected load", h.name)
	}

	slog.Info("loaded plugin",
		"plugin", h.name,
		"mode", "dynamic",
		"path", path,
		"handle_id", h.id.String())
	return h, nil
}

// LoadStatic wraps an in-process plugin value and runs its OnLoad. No module
// is involved and no handshake is needed: host and plugin share a compile
// unit by construction.
func (l *Loader) LoadStatic(p pluginpkg.Plugin) (*handle, error) {
	h := newStaticHandle(p)
	if err := h.load(); err != nil {
		h.discard()
		return nil, oops.Code(pluginpkg.CodeOnLoadFailure).
			With("plugin", h.name).
			Wrapf(err, "plugin %s rejected load", h.name)
	}

	slog.Info("loaded plugin",
		"plugin", h.name,
		"mode", "static",
		"handle_id", h.id.String())
	return h, nil
}

// handshake compares the module's version token against the host's, toolchain
// first. On the first mismatch it stops without further calls into the
// module: constructing a plugin object across a version gap would be unsafe.
func (l *Loader) handshake(mod Module, path string) error {
	found, err := l.versionOf(mod, pluginpkg.SymToolchainVersion, path)
	if err != nil {
		return err
	}
	if found != l.toolchain {
		return versionMismatch(pluginpkg.ComponentToolchain, l.toolchain, found, path)
	}

	found, err = l.versionOf(mod, pluginpkg.SymPackageVersion, path)
	if err != nil {
		return err
	}
	if found != l.pkgVersion {
		return versionMismatch(pluginpkg.ComponentPackage, l.pkgVersion, found, path)
	}

	return nil
}

func (l *Loader) versionOf(mod Module, symbol, path string) (string, error) {
	fn, err := resolve[func() string](mod, symbol, path)
	if err != nil {
		return "", err
	}
	return fn(), nil
}

// resolve looks up a symbol and asserts its type. T is always composed of
// predeclared types, so the assertion is safe even before the handshake has
// passed.
func resolve[T any](mod Module, symbol, path string) (T, error) {
	var zero T

	sym, err := mod.Lookup(symbol)
	if err != nil {
		return zero, oops.Code(pluginpkg.CodeMissingHandshake).
			With("path", path).
			With("symbol", symbol).
			Wrapf(err, "%s does not export %s; not a conforming plugin", path, symbol)
	}

	fn, ok := sym.(T)
	if !ok {
		return zero, oops.Code(pluginpkg.CodeMissingHandshake).
			With("path", path).
			With("symbol", symbol).
			Errorf("symbol %s in %s has the wrong type", symbol, path)
	}
	return fn, nil
}

func versionMismatch(component, expected, found, path string) error {
	return oops.Code(pluginpkg.CodeVersionMismatch).
		With("component", component).
		With("expected", expected).
		With("found", found).
		With("path", path).
		Errorf("%s version does not match: expected %s found %s", component, expected, found)
}
