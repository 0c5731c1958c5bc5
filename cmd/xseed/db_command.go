// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"github.com/spf13/cobra"

	"github.com/s0up4200/xseed/internal/config"
	"github.com/s0up4200/xseed/internal/database"
)

// runDBCommand exposes the database's fixed startup schema as an explicit
// operator action, rather than the teacher's versioned migration runner —
// xseed's schema is a single idempotent file applied by database.Open, so
// the only meaningful subcommand is re-applying it against an existing file.
func runDBCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database operations",
	}
	cmd.AddCommand(runDBMigrateSchemaCommand(configPath))
	return cmd
}

func runDBMigrateSchemaCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-schema",
		Short: "Ensure the database at the configured path has the current schema applied",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New(*configPath)
			if err != nil {
				return err
			}
			db, err := database.Open(cmd.Context(), cfg.GetDatabasePath())
			if err != nil {
				return err
			}
			defer db.Close()
			cmd.Printf("schema applied to %s\n", cfg.GetDatabasePath())
			return nil
		},
	}
}
