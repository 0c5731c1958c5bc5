// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/s0up4200/xseed/internal/api"
	"github.com/s0up4200/xseed/internal/api/handlers"
	"github.com/s0up4200/xseed/internal/config"
	"github.com/s0up4200/xseed/internal/database"
	"github.com/s0up4200/xseed/internal/domain"
	"github.com/s0up4200/xseed/internal/models"
	"github.com/s0up4200/xseed/internal/services/conflictrules"
	"github.com/s0up4200/xseed/internal/services/crossseed"
	"github.com/s0up4200/xseed/internal/services/scheduler"
	"github.com/s0up4200/xseed/internal/torrentcache"
)

func runServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the engine: scheduler, decision assessment, and collision recheck loop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New(*configPath)
			if err != nil {
				return err
			}
			setupLogger(cfg)

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			db, err := database.Open(ctx, cfg.GetDatabasePath())
			if err != nil {
				return err
			}
			defer db.Close()

			jobLog := models.NewJobLogStore(db)
			collisions := models.NewCollisionStore(db)
			decisions := models.NewDecisionStore(db)
			rules := models.NewConflictRuleStore(db)
			searchees := models.NewSearcheeStore(db)
			clientSearchees := models.NewClientSearcheeStore(db)

			indexerKey, err := cfg.GetIndexerEncryptionKey()
			if err != nil {
				return fmt.Errorf("decoding indexer encryption key: %w", err)
			}
			indexers, err := models.NewIndexerStore(db, indexerKey)
			if err != nil {
				return err
			}

			cache := torrentcache.New(cfg.CacheDir, log.Logger)

			orchestrator := crossseed.Build(crossseed.BuildOptions{
				DB:             db,
				Decisions:      decisions,
				Searchees:      searchees,
				Collisions:     collisions,
				Clients:        clientSearchees,
				Rules:          rules,
				Indexers:       indexers,
				Cache:          cache,
				Snatcher:       noopSnatcher{},
				TorrentClients: map[string]conflictrules.TorrentClient{},
				Logger:         log.Logger,
			})
			searcher := &crossseed.Searcher{Orchestrator: orchestrator, Logger: log.Logger}

			router := api.NewRouter(api.Dependencies{
				ConflictRules: &handlers.ConflictRulesHandler{DB: db, Rules: rules, Indexers: indexers, Collisions: collisions},
				Searchees:     &handlers.SearcheesHandler{Decisions: decisions, Collisions: collisions, Searcher: searcher},
				Logger:        log.Logger,
			})
			httpServer := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: router}
			go func() {
				log.Info().Str("addr", httpServer.Addr).Msg("RPC surface listening")
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error().Err(err).Msg("RPC surface stopped")
				}
			}()
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				_ = httpServer.Shutdown(shutdownCtx)
			}()

			sched := scheduler.New(jobLog, log.Logger)

			sched.Register(scheduler.NewCollisionRecheckJob(
				scheduler.CollisionRecheckExecutor(db, collisions, searcher, log.Logger),
				func() bool { return cfg.UseClientTorrents },
			))
			sched.Register(scheduler.NewUpdateIndexerCapsJob(noopExecutor("UPDATE_INDEXER_CAPS", "no torznab indexer client configured")))
			sched.Register(scheduler.NewCleanupJob(scheduler.CleanupExecutor(cache, decisions, log.Logger)))
			sched.Register(scheduler.NewInjectJob(
				noopExecutor("INJECT", "no torrent client driver configured"),
				func() bool { return cfg.PostSnatchAction == "INJECT" },
			))
			sched.Register(scheduler.NewRSSJob(noopExecutor("RSS", "no torznab indexer client configured"), time.Duration(cfg.RSSCadenceMinutes)*time.Minute))
			sched.Register(scheduler.NewSearchJob(noopExecutor("SEARCH", "no torznab indexer client configured"), time.Duration(cfg.SearchCadenceMinutes)*time.Minute))

			log.Info().Str("host", cfg.Host).Int("port", cfg.Port).Msg("xseed engine starting")
			return sched.Run(ctx, 30*time.Second)
		},
	}
}

// noopExecutor logs once per tick that a job's real external collaborator
// (indexer client, torrent-client driver) hasn't been wired in this build —
// those are fixed external interfaces outside this engine's scope, supplied
// by the deployment that embeds it.
func noopExecutor(name, reason string) scheduler.Executor {
	return func(ctx context.Context, cfg map[string]any) error {
		log.Warn().Str("job", name).Msg(reason)
		return nil
	}
}

// noopSnatcher is the decision engine's fixed external collaborator — the
// Torznab download-link fetch — left unwired until a deployment supplies a
// real indexer client.
type noopSnatcher struct{}

func (noopSnatcher) Snatch(ctx context.Context, candidate domain.Candidate) (domain.Metafile, []byte, error) {
	return domain.Metafile{}, nil, errors.New("no indexer snatch client configured")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogPath == "" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
		return
	}

	writer := &lumberjack.Logger{
		Filename:   cfg.LogPath,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
	}
	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
}
