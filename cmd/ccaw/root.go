// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/ccaw/speakerauth/internal/config"
	"github.com/ccaw/speakerauth/internal/xdg"
)

// NewRootCmd creates the root command for the ccaw CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ccaw",
		Short: "CCAW speaker authentication service",
		Long: `ccaw serves speaker login, signup and credential management for the
Conference for Crimes Against Women registration site.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "config file path (YAML, default: $XDG_CONFIG_HOME/ccaw/config.yaml if present)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// loadConfig reads the configuration for cmd from its --config file (or the
// XDG default) and flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if file == "" {
		if file, err = xdg.FindConfigFile(); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(config.LoadOptions{File: file, Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// requireDatabaseURL returns the configured database URL or a CONFIG_INVALID error.
func requireDatabaseURL(cfg *config.Config) (string, error) {
	if cfg.Database.URL == "" {
		return "", oops.Code("CONFIG_INVALID").
			Errorf("database URL is required (--database-url or %s)", config.EnvDatabaseURL)
	}
	return cfg.Database.URL, nil
}
