// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tsunami Contributors

package plugin

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/gobwas/glob"

	"github.com/tsunami-stream/tsunami/pkg/errutil"
	pluginpkg "github.com/tsunami-stream/tsunami/pkg/plugin"
)

// Manager owns an ordered set of plugin handles and drives their lifecycle.
//
// Lifecycle mutation is single-owner: Register*, LoadAll and UnloadAll must
// not be invoked concurrently with each other or with a Plugins traversal.
// The registered plugins themselves are required to be concurrency-safe, so
// once a plugin is loaded callers may invoke Trigger on it from any number of
// goroutines; the manager does not serialize those calls.
type Manager struct {
	loader     *Loader
	pluginsDir string
	builtins   map[string]func() pluginpkg.Plugin
	reg        *registry
	cleanup    runtime.Cleanup
}

// registry holds the handles separately from the Manager so the finalization
// cleanup can reach them without keeping the Manager itself alive.
type registry struct {
	mu      sync.RWMutex
	handles []*handle
}

// drain unloads every handle in load order and empties the registry.
// Idempotent; safe to reach from both UnloadAll and finalization.
func (r *registry) drain() {
	r.mu.Lock()
	handles := r.handles
	r.handles = nil
	r.mu.Unlock()

	for _, h := range handles {
		h.unload()
	}
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager, *[]LoaderOption)

// WithLoaderOptions forwards options to the manager's loader.
func WithLoaderOptions(opts ...LoaderOption) ManagerOption {
	return func(_ *Manager, lo *[]LoaderOption) {
		*lo = append(*lo, opts...)
	}
}

// WithBuiltin registers a constructor for a static plugin that manifests may
// reference by name.
func WithBuiltin(name string, construct func() pluginpkg.Plugin) ManagerOption {
	return func(m *Manager, _ *[]LoaderOption) {
		m.builtins[name] = construct
	}
}

// NewManager creates a plugin manager rooted at pluginsDir.
//
// A finalization cleanup is attached so that a manager discarded without
// UnloadAll still drains every remaining handle in the same order. Relying on
// it is a bug; call UnloadAll (or defer it) on every exit path.
func NewManager(pluginsDir string, opts ...ManagerOption) *Manager {
	m := &Manager{
		pluginsDir: pluginsDir,
		builtins:   make(map[string]func() pluginpkg.Plugin),
		reg:        &registry{},
	}

	var loaderOpts []LoaderOption
	for _, opt := range opts {
		opt(m, &loaderOpts)
	}
	m.loader = NewLoader(loaderOpts...)

	m.cleanup = runtime.AddCleanup(m, func(r *registry) { r.drain() }, m.reg)
	return m
}

// RegisterDynamic loads the module at path and registers the resulting
// plugin. On failure nothing is registered and the manager is unchanged;
// every load error is recoverable and later registrations are unaffected.
func (m *Manager) RegisterDynamic(path string) error {
	h, err := m.loader.LoadDynamic(path)
	if err != nil {
		RecordLoadFailure(ModeDynamic, errutil.Code(err))
		return err
	}

	m.append(h)
	RecordLoad(ModeDynamic)
	return nil
}

// RegisterStatic registers an in-process plugin value.
func (m *Manager) RegisterStatic(p pluginpkg.Plugin) error {
	h, err := m.loader.LoadStatic(p)
	if err != nil {
		RecordLoadFailure(ModeStatic, errutil.Code(err))
		return err
	}

	m.append(h)
	RecordLoad(ModeStatic)
	return nil
}

func (m *Manager) append(h *handle) {
	m.reg.mu.Lock()
	m.reg.handles = append(m.reg.handles, h)
	m.reg.mu.Unlock()
}

// Plugins returns a restartable sequence over the registered plugins in load
// order. The handle representation is never exposed.
func (m *Manager) Plugins() iter.Seq[pluginpkg.Plugin] {
	return func(yield func(pluginpkg.Plugin) bool) {
		m.reg.mu.RLock()
		plugins := make([]pluginpkg.Plugin, 0, len(m.reg.handles))
		for _, h := range m.reg.handles {
			plugins = append(plugins, h.plugin)
		}
		m.reg.mu.RUnlock()

		for _, p := range plugins {
			if !yield(p) {
				return
			}
		}
	}
}

// Len returns the number of registered plugins.
func (m *Manager) Len() int {
	m.reg.mu.RLock()
	defer m.reg.mu.RUnlock()
	return len(m.reg.handles)
}

// Names returns the display names of all registered plugins, sorted for
// deterministic output. Names are not guaranteed unique.
func (m *Manager) Names() []string {
	m.reg.mu.RLock()
	names := make([]string, 0, len(m.reg.handles))
	for _, h := range m.reg.handles {
		names = append(names, h.name)
	}
	m.reg.mu.RUnlock()

	sort.Strings(names)
	return names
}

// UnloadAll drains every handle in load order: each plugin's OnUnload runs
// exactly once (errors logged, never propagated, never halting the drain),
// then the plugin value is released, then its module. The registry is empty
// afterwards.
func (m *Manager) UnloadAll() {
	m.reg.drain()
	m.cleanup.Stop()
}

// DiscoveredPlugin contains a parsed manifest and its directory.
type DiscoveredPlugin struct {
	Manifest *Manifest
	Dir      string
}

// Discover finds all valid plugins under the plugins directory. Directories
// with a missing or invalid manifest are logged and skipped.
func (m *Manager) Discover(_ context.Context) ([]*DiscoveredPlugin, error) {
	entries, err := os.ReadDir(m.pluginsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // No plugins directory
		}
		return nil, fmt.Errorf("failed to read plugins directory: %w", err)
	}

	var plugins []*DiscoveredPlugin
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pluginDir := filepath.Join(m.pluginsDir, entry.Name())
		manifestPath := filepath.Join(pluginDir, ManifestFileName)

		data, err := os.ReadFile(manifestPath) //nolint:gosec // manifestPath is constructed from ReadDir entries
		if err != nil {
			slog.Warn("skipping plugin without manifest",
				"dir", entry.Name(),
				"error", err)
			continue
		}

		manifest, err := ParseManifest(data)
		if err != nil {
			slog.Warn("skipping plugin with invalid manifest",
				"dir", entry.Name(),
				"error", err)
			continue
		}

		plugins = append(plugins, &DiscoveredPlugin{
			Manifest: manifest,
			Dir:      pluginDir,
		})
	}

	return plugins, nil
}

// LoadAll discovers and registers all plugins in the plugins directory.
// Individual plugin failures are logged and skipped so the host can start
// even if some plugins have issues; callers who need strict loading should
// use Discover and register individually with error checking.
func (m *Manager) LoadAll(ctx context.Context) error {
	discovered, err := m.Discover(ctx)
	if err != nil {
		return err
	}

	for _, dp := range discovered {
		if err := m.loadDiscovered(dp); err != nil {
			errutil.LogError(slog.Default(), "failed to load plugin "+dp.Manifest.Name, err)
			continue
		}
	}

	return nil
}

// loadDiscovered registers a single discovered plugin.
func (m *Manager) loadDiscovered(dp *DiscoveredPlugin) error {
	switch dp.Manifest.Type {
	case TypeShared:
		path, err := m.resolveModulePath(dp)
		if err != nil {
			return err
		}
		return m.RegisterDynamic(path)

	case TypeStatic:
		construct, ok := m.builtins[dp.Manifest.StaticPlugin.Builtin]
		if !ok {
			// Tolerated so a shared plugins directory can reference
			// builtins this host does not compile in.
			slog.Warn("no such builtin, skipping static plugin",
				"plugin", dp.Manifest.Name,
				"builtin", dp.Manifest.StaticPlugin.Builtin)
			return nil
		}
		return m.RegisterStatic(construct())

	default:
		// Unknown types are rejected by Manifest.Validate.
		slog.Warn("unknown plugin type, skipping",
			"plugin", dp.Manifest.Name,
			"type", dp.Manifest.Type)
		return nil
	}
}

// resolveModulePath matches the manifest's module pattern against the plugin
// directory. The first match in lexical order wins.
func (m *Manager) resolveModulePath(dp *DiscoveredPlugin) (string, error) {
	pattern := dp.Manifest.SharedPlugin.Module

	g, err := glob.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid module pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(dp.Dir)
	if err != nil {
		return "", fmt.Errorf("failed to read plugin directory: %w", err)
	}

	var matches []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if g.Match(entry.Name()) {
			matches = append(matches, entry.Name())
		}
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no module matches %q in %s", pattern, dp.Dir)
	}

	sort.Strings(matches)
	return filepath.Join(dp.Dir, matches[0]), nil
}
