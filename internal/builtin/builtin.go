// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tsunami Contributors

// Package builtin provides plugins compiled into the host binary. They are
// registered through the static path and skip the shared-object handshake.
package builtin

import (
	"log/slog"
	"sync/atomic"

	"github.com/tsunami-stream/tsunami/pkg/plugin"
)

// Echo logs every trigger value it receives.
type Echo struct {
	plugin.Base

	logger *slog.Logger
}

// NewEcho returns an Echo plugin logging through logger. A nil logger
// falls back to slog.Default.
func NewEcho(logger *slog.Logger) *Echo {
	if logger == nil {
		logger = slog.Default()
	}
	return &Echo{logger: logger}
}

// Name implements plugin.Plugin.
func (e *Echo) Name() string { return "echo" }

// Trigger implements plugin.Plugin.
func (e *Echo) Trigger(value uint64) error {
	e.logger.Info("echo trigger", "value", value)
	return nil
}

// Counter accumulates trigger values and reports the running total when
// unloaded.
type Counter struct {
	plugin.Base

	logger *slog.Logger
	total  atomic.Uint64
	count  atomic.Uint64
}

// NewCounter returns a Counter plugin logging through logger. A nil logger
// falls back to slog.Default.
func NewCounter(logger *slog.Logger) *Counter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Counter{logger: logger}
}

// Name implements plugin.Plugin.
func (c *Counter) Name() string { return "counter" }

// Trigger implements plugin.Plugin.
func (c *Counter) Trigger(value uint64) error {
	c.total.Add(value)
	c.count.Add(1)
	return nil
}

// OnUnload implements plugin.Plugin.
func (c *Counter) OnUnload() error {
	c.logger.Info("counter summary",
		"triggers", c.count.Load(),
		"total", c.total.Load())
	return nil
}

// Total returns the sum of all trigger values seen so far.
func (c *Counter) Total() uint64 { return c.total.Load() }
