// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tsunami Contributors

package plugin

import (
	"crypto/rand"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tsunami-stream/tsunami/pkg/errutil"
	pluginpkg "github.com/tsunami-stream/tsunami/pkg/plugin"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// newHandleID generates a ULID used to correlate a handle's log lines.
func newHandleID() ulid.ULID {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
}

// handleState is the lifecycle state of a handle.
type handleState int

const (
	// stateUnregistered: constructed, OnLoad not yet run.
	stateUnregistered handleState = iota
	// stateLoaded: OnLoad succeeded, visible to callers.
	stateLoaded
	// stateUnloaded: drained. Terminal.
	stateUnloaded
	// stateDiscarded: OnLoad failed, torn down without OnUnload. Terminal
	// and never observable to callers.
	stateDiscarded
)

// handle couples one constructed plugin instance with the loaded module
// supplying its code, if any. The destruction order is fixed at construction:
// the plugin value is released strictly before the module, because the
// plugin's code and method tables reside inside the module's mapped memory.
//
// A handle is only created as the successful outcome of a load operation and
// is only destroyed during manager drain.
type handle struct {
	id     ulid.ULID
	name   string
	plugin pluginpkg.Plugin
	module Module // nil for static handles
	state  handleState
}

func newDynamicHandle(p pluginpkg.Plugin, mod Module) *handle {
	return &handle{
		id:     newHandleID(),
		name:   p.Name(),
		plugin: p,
		module: mod,
	}
}

func newStaticHandle(p pluginpkg.Plugin) *handle {
	return &handle{
		id:     newHandleID(),
		name:   p.Name(),
		plugin: p,
	}
}

// load runs OnLoad exactly once. On success the handle becomes loaded; on
// failure the caller must discard it.
func (h *handle) load() error {
	if h.state != stateUnregistered {
		return nil
	}
	if err := h.plugin.OnLoad(); err != nil {
		return err
	}
	h.state = stateLoaded
	return nil
}

// discard tears down a handle whose OnLoad failed. OnUnload is not called on
// an instance that rejected its load; the plugin reference is still dropped
// before the module is released.
func (h *handle) discard() {
	h.plugin = nil
	h.closeModule()
	h.state = stateDiscarded
}

// unload drains a loaded handle: OnUnload first (errors logged, never
// propagated), then the plugin value, then the module.
func (h *handle) unload() {
	if h.state != stateLoaded {
		return
	}

	slog.Info("unloading plugin", "plugin", h.name, "handle_id", h.id.String())
	if err := h.plugin.OnUnload(); err != nil {
		RecordUnloadError(h.name)
		errutil.LogError(slog.Default(), "plugin unload failed", err)
	}

	h.plugin = nil
	h.closeModule()
	h.state = stateUnloaded
}

func (h *handle) closeModule() {
	if h.module == nil {
		return
	}
	if err := h.module.Close(); err != nil {
		slog.Warn("failed to close module", "plugin", h.name, "error", err)
	}
	h.module = nil
}
