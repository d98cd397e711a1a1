// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tsunami Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsunami-stream/tsunami/internal/config"
	"github.com/tsunami-stream/tsunami/internal/logging"
	plugins "github.com/tsunami-stream/tsunami/internal/plugin"
)

// NewListCmd creates the list subcommand.
func NewListCmd() *cobra.Command {
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plugins found in the plugins directory",
		Long: `Scan the plugins directory for manifests and print what would be
loaded, without loading anything.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, configFile != "", cmd.Flags())
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			logging.SetDefault("tsunami", version, cfg.LogFormat)

			manager := plugins.NewManager(cfg.PluginsDir)
			discovered, err := manager.Discover(cmd.Context())
			if err != nil {
				return err
			}

			if len(discovered) == 0 {
				cmd.Printf("no plugins found in %s\n", cfg.PluginsDir)
				return nil
			}
			for _, dp := range discovered {
				m := dp.Manifest
				switch m.Type {
				case plugins.TypeShared:
					cmd.Printf("%s\t%s\t%s\tmodule=%s\n", m.Name, m.Version, m.Type, m.SharedPlugin.Module)
				case plugins.TypeStatic:
					cmd.Printf("%s\t%s\t%s\tbuiltin=%s\n", m.Name, m.Version, m.Type, m.StaticPlugin.Builtin)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("plugins-dir", def.PluginsDir, "directory scanned for plugin manifests")
	cmd.Flags().String("log-format", def.LogFormat, "log format (json or text)")

	return cmd
}
