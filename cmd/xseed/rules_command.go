// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/xseed/internal/config"
	"github.com/s0up4200/xseed/internal/database"
	"github.com/s0up4200/xseed/internal/domain"
	"github.com/s0up4200/xseed/internal/models"
)

func runRulesCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and edit conflict-resolution priority rules",
	}
	cmd.AddCommand(runRulesListCommand(configPath))
	cmd.AddCommand(runRulesAddCommand(configPath))
	return cmd
}

func runRulesListCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the active conflict rule set in priority order",
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

			rules, err := models.NewConflictRuleStore(db).List(cmd.Context())
			if err != nil {
				return err
			}
			for i, r := range rules {
				if r.AllIndexers {
					cmd.Printf("%d. (all indexers)\n", i)
					continue
				}
				cmd.Printf("%d. %s\n", i, strings.Join(r.Trackers, ", "))
			}
			return nil
		},
	}
}

func runRulesAddCommand(configPath *string) *cobra.Command {
	var trackers []string
	var allIndexers bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a new lowest-priority rule to the conflict rule set",
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

			store := models.NewConflictRuleStore(db)
			existing, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			existing = append(existing, domain.ConflictRule{AllIndexers: allIndexers, Trackers: trackers})
			return models.SaveConflictRules(cmd.Context(), db, existing)
		},
	}
	cmd.Flags().StringSliceVar(&trackers, "tracker", nil, "tracker host this rule governs (repeatable)")
	cmd.Flags().BoolVar(&allIndexers, "all-indexers", false, "match every configured indexer (must be the only rule)")
	return cmd
}
