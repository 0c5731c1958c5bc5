// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
)

// RunRootCommand builds the xseed CLI: a root command plus the serve, db,
// and rules subcommands, mirroring the teacher's cmd/qui layout.
func RunRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "xseed",
		Short: "Cross-seed candidate assessment and collision management engine",
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to config.toml")

	cmd.AddCommand(runServeCommand(&configPath))
	cmd.AddCommand(runDBCommand(&configPath))
	cmd.AddCommand(runRulesCommand(&configPath))
	return cmd
}

func defaultConfigPath() string {
	return filepath.Join(".", "config.toml")
}
