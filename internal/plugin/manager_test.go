// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tsunami Contributors

package plugin_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	plugins "github.com/tsunami-stream/tsunami/internal/plugin"
	"github.com/tsunami-stream/tsunami/pkg/errutil"
	pluginpkg "github.com/tsunami-stream/tsunami/pkg/plugin"
)

// Helper functions for creating test fixtures with secure permissions.
func mkdirAll(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o750))
}

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, content, 0o600))
}

func TestManager_RegisterStatic_ThenIterate(t *testing.T) {
	mgr := plugins.NewManager(t.TempDir())
	defer mgr.UnloadAll()

	require.NoError(t, mgr.RegisterStatic(&testPlugin{name: "alpha"}))

	var names []string
	for p := range mgr.Plugins() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"alpha"}, names)
}

func TestManager_Plugins_LoadOrderAndRestartable(t *testing.T) {
	mgr := plugins.NewManager(t.TempDir())
	defer mgr.UnloadAll()

	require.NoError(t, mgr.RegisterStatic(&testPlugin{name: "first"}))
	require.NoError(t, mgr.RegisterStatic(&testPlugin{name: "second"}))
	require.NoError(t, mgr.RegisterStatic(&testPlugin{name: "third"}))

	want := []string{"first", "second", "third"}
	seq := mgr.Plugins()

	// The sequence is restartable: a second full traversal yields the same
	// elements in the same order.
	for range 2 {
		var names []string
		for p := range seq {
			names = append(names, p.Name())
		}
		assert.Equal(t, want, names)
	}

	// Early break must not disturb later traversals.
	for range seq {
		break
	}
	count := 0
	for range seq {
		count++
	}
	assert.Equal(t, 3, count)
}

func TestManager_RegisterStatic_OnLoadFailureNeverVisible(t *testing.T) {
	rec := &recorder{}
	mgr := plugins.NewManager(t.TempDir())

	err := mgr.RegisterStatic(&testPlugin{name: "broken", rec: rec, onLoadErr: errors.New("nope")})
	errutil.AssertErrorCode(t, err, pluginpkg.CodeOnLoadFailure)

	assert.Equal(t, 0, mgr.Len())
	for p := range mgr.Plugins() {
		t.Fatalf("unexpected plugin %q in iteration", p.Name())
	}

	mgr.UnloadAll()
	// OnUnload is never called for a plugin whose OnLoad failed.
	assert.Equal(t, []string{"load:broken"}, rec.snapshot())
}

func TestManager_UnloadAll_DrainsInLoadOrder(t *testing.T) {
	rec := &recorder{}
	mgr := plugins.NewManager(t.TempDir())

	require.NoError(t, mgr.RegisterStatic(&testPlugin{name: "a", rec: rec}))
	require.NoError(t, mgr.RegisterStatic(&testPlugin{name: "b", rec: rec, unloadErr: errors.New("cleanup failed")}))
	require.NoError(t, mgr.RegisterStatic(&testPlugin{name: "c", rec: rec}))

	mgr.UnloadAll()

	// Exactly once per plugin, in load order; b's error does not halt the
	// drain of c.
	assert.Equal(t,
		[]string{"load:a", "load:b", "load:c", "unload:a", "unload:b", "unload:c"},
		rec.snapshot())
	assert.Equal(t, 0, mgr.Len())

	// A second drain is a no-op.
	mgr.UnloadAll()
	assert.Equal(t, 6, len(rec.snapshot()))
}

func TestManager_UnloadAll_PluginReleasedBeforeModule(t *testing.T) {
	dir := t.TempDir()
	path := touch(t, dir, "echo.so")

	rec := &recorder{}
	opener := &fakeOpener{modules: map[string]*fakeModule{
		"echo.so": conformingModule("echo.so", hostToolchain, hostPackage, &testPlugin{name: "echo", rec: rec}, rec),
	}}
	mgr := newTestManager(t, opener)

	require.NoError(t, mgr.RegisterDynamic(path))
	mgr.UnloadAll()

	// The plugin value is destroyed strictly before its module is released.
	assert.Equal(t, []string{"load:echo", "unload:echo", "close:echo.so"}, rec.snapshot())
}

func TestManager_ImplicitTeardown_MatchesExplicitDrain(t *testing.T) {
	rec := &recorder{}

	// Drop the only reference without calling UnloadAll. The finalization
	// cleanup must produce the identical unload sequence.
	func() {
		mgr := plugins.NewManager(t.TempDir())
		require.NoError(t, mgr.RegisterStatic(&testPlugin{name: "a", rec: rec}))
		require.NoError(t, mgr.RegisterStatic(&testPlugin{name: "b", rec: rec}))
	}()

	require.Eventually(t, func() bool {
		runtime.GC()
		return slices.Equal(
			rec.snapshot(),
			[]string{"load:a", "load:b", "unload:a", "unload:b"},
		)
	}, 5*time.Second, 10*time.Millisecond, "cleanup did not drain remaining handles")
}

func TestManager_Names_Sorted(t *testing.T) {
	mgr := plugins.NewManager(t.TempDir())
	defer mgr.UnloadAll()

	require.NoError(t, mgr.RegisterStatic(&testPlugin{name: "zeta"}))
	require.NoError(t, mgr.RegisterStatic(&testPlugin{name: "alpha"}))

	assert.Equal(t, []string{"alpha", "zeta"}, mgr.Names())
}

func TestManager_Discover(t *testing.T) {
	dir := t.TempDir()

	echoDir := filepath.Join(dir, "plugins", "echo-bot")
	mkdirAll(t, echoDir)

	manifest := `
name: echo-bot
version: 1.0.0
type: shared
shared-plugin:
  module: "echo-*.so"
`
	writeFile(t, filepath.Join(echoDir, "tsunami.yaml"), []byte(manifest))
	writeFile(t, filepath.Join(echoDir, "echo-linux-amd64.so"), []byte("stub"))

	mgr := plugins.NewManager(filepath.Join(dir, "plugins"))
	defer mgr.UnloadAll()

	manifests, err := mgr.Discover(context.Background())
	require.NoError(t, err)

	require.Len(t, manifests, 1)
	assert.Equal(t, "echo-bot", manifests[0].Manifest.Name)
	assert.Equal(t, echoDir, manifests[0].Dir)
}

func TestManager_Discover_SkipsInvalidPlugins(t *testing.T) {
	dir := t.TempDir()
	pluginsDir := filepath.Join(dir, "plugins")

	validDir := filepath.Join(pluginsDir, "valid")
	mkdirAll(t, validDir)
	writeFile(t, filepath.Join(validDir, "tsunami.yaml"),
		[]byte("name: valid\nversion: 1.0.0\ntype: static\nstatic-plugin:\n  builtin: echo"))

	// Bad YAML
	invalidDir := filepath.Join(pluginsDir, "invalid")
	mkdirAll(t, invalidDir)
	writeFile(t, filepath.Join(invalidDir, "tsunami.yaml"), []byte("invalid: ["))

	// No manifest at all
	bareDir := filepath.Join(pluginsDir, "bare")
	mkdirAll(t, bareDir)

	// Files in the plugins dir are skipped
	writeFile(t, filepath.Join(pluginsDir, "stray.txt"), []byte("hello"))

	mgr := plugins.NewManager(pluginsDir)
	defer mgr.UnloadAll()

	manifests, err := mgr.Discover(context.Background())
	require.NoError(t, err)
	assert.Len(t, manifests, 1, "only the valid plugin should be discovered")
}

func TestManager_Discover_NonExistentDirectory(t *testing.T) {
	mgr := plugins.NewManager(filepath.Join(t.TempDir(), "non-existent-plugins"))
	defer mgr.UnloadAll()

	manifests, err := mgr.Discover(context.Background())
	require.NoError(t, err, "Discover() should handle non-existent dir gracefully")
	assert.Empty(t, manifests)
}

func TestManager_LoadAll_SharedAndStatic(t *testing.T) {
	dir := t.TempDir()
	pluginsDir := filepath.Join(dir, "plugins")

	sharedDir := filepath.Join(pluginsDir, "echo-bot")
	mkdirAll(t, sharedDir)
	writeFile(t, filepath.Join(sharedDir, "tsunami.yaml"),
		[]byte("name: echo-bot\nversion: 1.0.0\ntype: shared\nshared-plugin:\n  module: \"echo.so\""))
	writeFile(t, filepath.Join(sharedDir, "echo.so"), []byte("stub"))

	staticDir := filepath.Join(pluginsDir, "counter")
	mkdirAll(t, staticDir)
	writeFile(t, filepath.Join(staticDir, "tsunami.yaml"),
		[]byte("name: counter\nversion: 1.0.0\ntype: static\nstatic-plugin:\n  builtin: counter"))

	opener := &fakeOpener{modules: map[string]*fakeModule{
		"echo.so": conformingModule("echo.so", hostToolchain, hostPackage, &testPlugin{name: "echo"}, nil),
	}}
	mgr := plugins.NewManager(pluginsDir,
		plugins.WithBuiltin("counter", func() pluginpkg.Plugin { return &testPlugin{name: "counter"} }),
		plugins.WithLoaderOptions(
			plugins.WithModuleOpener(opener),
			plugins.WithHostVersions(hostToolchain, hostPackage),
		))
	defer mgr.UnloadAll()

	require.NoError(t, mgr.LoadAll(context.Background()))
	assert.Equal(t, []string{"counter", "echo"}, mgr.Names())
}

func TestManager_LoadAll_SkipsFailingPlugins(t *testing.T) {
	dir := t.TempDir()
	pluginsDir := filepath.Join(dir, "plugins")

	// References a module whose toolchain does not match the host.
	staleDir := filepath.Join(pluginsDir, "stale")
	mkdirAll(t, staleDir)
	writeFile(t, filepath.Join(staleDir, "tsunami.yaml"),
		[]byte("name: stale\nversion: 1.0.0\ntype: shared\nshared-plugin:\n  module: \"stale.so\""))
	writeFile(t, filepath.Join(staleDir, "stale.so"), []byte("stub"))

	// References a builtin this host does not have.
	ghostDir := filepath.Join(pluginsDir, "ghost")
	mkdirAll(t, ghostDir)
	writeFile(t, filepath.Join(ghostDir, "tsunami.yaml"),
		[]byte("name: ghost\nversion: 1.0.0\ntype: static\nstatic-plugin:\n  builtin: ghost"))

	opener := &fakeOpener{modules: map[string]*fakeModule{
		"stale.so": conformingModule("stale.so", "1.74.0", hostPackage, &testPlugin{name: "stale"}, nil),
	}}
	mgr := plugins.NewManager(pluginsDir, plugins.WithLoaderOptions(
		plugins.WithModuleOpener(opener),
		plugins.WithHostVersions(hostToolchain, hostPackage),
	))
	defer mgr.UnloadAll()

	require.NoError(t, mgr.LoadAll(context.Background()), "LoadAll() should skip plugins with load errors")
	assert.Equal(t, 0, mgr.Len())
}

func TestManager_Len_Empty(t *testing.T) {
	mgr := plugins.NewManager(t.TempDir())
	defer mgr.UnloadAll()
	assert.Equal(t, 0, mgr.Len())
	assert.Empty(t, mgr.Names())
}
