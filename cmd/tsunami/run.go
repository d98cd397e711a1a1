// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tsunami Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tsunami-stream/tsunami/internal/builtin"
	"github.com/tsunami-stream/tsunami/internal/config"
	"github.com/tsunami-stream/tsunami/internal/logging"
	"github.com/tsunami-stream/tsunami/internal/observability"
	plugins "github.com/tsunami-stream/tsunami/internal/plugin"
	pluginapi "github.com/tsunami-stream/tsunami/pkg/plugin"
)

// NewRunCmd creates the run subcommand.
func NewRunCmd() *cobra.Command {
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the plugin host",
		Long: `Start the plugin host. Plugins found under the plugins directory are
verified, loaded and driven with trigger values until the process is
interrupted, at which point they are unloaded in load order.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, configFile != "", cmd.Flags())
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runHost(cmd.Context(), cfg)
		},
	}

	// Flag defaults mirror config.Default so unset flags never override
	// values from the config file.
	cmd.Flags().String("plugins-dir", def.PluginsDir, "directory scanned for plugin manifests")
	cmd.Flags().String("log-format", def.LogFormat, "log format (json or text)")
	cmd.Flags().String("metrics-addr", def.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().Duration("trigger-interval", def.TriggerInterval, "delay between trigger values")

	return cmd
}

// runHost runs the plugin host until ctx is cancelled or a signal arrives.
func runHost(ctx context.Context, cfg config.Config) error {
	logging.SetDefault("tsunami", version, cfg.LogFormat)

	slog.Info("starting plugin host",
		"plugins_dir", cfg.PluginsDir,
		"trigger_interval", cfg.TriggerInterval,
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager := plugins.NewManager(cfg.PluginsDir,
		plugins.WithBuiltin("echo", func() pluginapi.Plugin { return builtin.NewEcho(slog.Default()) }),
		plugins.WithBuiltin("counter", func() pluginapi.Plugin { return builtin.NewCounter(slog.Default()) }),
	)
	// Unload on every exit path so plugins always see OnUnload before
	// their modules are released.
	defer manager.UnloadAll()

	if err := manager.LoadAll(ctx); err != nil {
		return fmt.Errorf("failed to load plugins: %w", err)
	}

	slog.Info("plugins loaded", "count", manager.Len(), "names", manager.Names())

	var obsServer *observability.Server
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr,
			func() bool { return true },
			plugins.RegisterMetrics,
		)
		if _, err := obsServer.Start(); err != nil {
			return fmt.Errorf("failed to start observability server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := obsServer.Stop(shutdownCtx); err != nil {
				slog.Warn("failed to stop observability server", "error", err)
			}
		}()
	}

	values := make(chan uint64)
	go generateTriggers(ctx, cfg.TriggerInterval, values)

	dispatcher := plugins.NewDispatcher(manager)
	dispatcher.Start(ctx, values)

	<-ctx.Done()
	slog.Info("shutting down")
	dispatcher.Wait()

	return nil
}

// generateTriggers emits an increasing sequence of values on every tick
// until ctx is cancelled, then closes the channel.
func generateTriggers(ctx context.Context, interval time.Duration, values chan<- uint64) {
	defer close(values)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var next uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			next++
			select {
			case values <- next:
			case <-ctx.Done():
				return
			}
		}
	}
}
