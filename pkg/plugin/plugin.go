// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tsunami Contributors

// Package plugin defines the capability interface that every Tsunami plugin
// implements, the version token used for the load-time handshake, and the
// export surface a shared-object module must provide.
//
// Plugins come in two forms: static plugins compiled into the host binary and
// registered directly, and dynamic plugins built as Go shared objects
// (-buildmode=plugin) and loaded from disk. Dynamic plugins must be declared
// with the gen-exports tool; see Declare in this package.
//
// Example static plugin:
//
//	type Echo struct {
//		plugin.Base
//	}
//
//	func (*Echo) Name() string { return "echo" }
//
//	func (*Echo) Trigger(value uint64) error {
//		slog.Info("echo", "value", value)
//		return nil
//	}
package plugin

// Plugin is the capability interface every plugin satisfies.
//
// Implementations must be safe for concurrent use: once a plugin is
// registered, callers may invoke Trigger from multiple goroutines
// simultaneously and the manager does not serialize those calls.
//
// All callbacks are synchronous. There is no timeout or cancellation
// mechanism: a callback that never returns blocks its caller indefinitely.
// This is a known limitation of the lifecycle model, not a guarantee worth
// relying on.
type Plugin interface {
	// Name returns the plugin's display name. It must be stable, free of
	// side effects, and callable at any time after construction. Names are
	// not required to be unique across a registry.
	Name() string

	// OnLoad is called exactly once, immediately after construction and
	// before the plugin becomes visible to other callers. Returning an
	// error aborts registration; the instance is discarded and OnUnload is
	// not called on it.
	OnLoad() error

	// Trigger is the data-path callback. The value is an opaque sequence
	// datum streamed by the host.
	Trigger(value uint64) error

	// OnUnload is best-effort cleanup, called exactly once per registered
	// plugin during drain. Errors are logged by the manager, never
	// propagated, and never halt the drain of subsequent plugins.
	OnUnload() error
}

// Base provides no-op defaults for the optional callbacks. Embed it so a
// plugin only has to implement Name and whatever it actually needs.
type Base struct{}

// OnLoad is a no-op.
func (Base) OnLoad() error { return nil }

// Trigger is a no-op.
func (Base) Trigger(uint64) error { return nil }

// OnUnload is a no-op.
func (Base) OnUnload() error { return nil }
