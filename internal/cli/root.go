// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/rewind/internal/app"
	"github.com/tomtom215/rewind/internal/config"
	"github.com/tomtom215/rewind/internal/history"
	"github.com/tomtom215/rewind/internal/logging"
	"github.com/tomtom215/rewind/internal/models"
	"github.com/tomtom215/rewind/internal/stats"
)

// Store is the part of the history store the commands use.
type Store interface {
	Sync(ctx context.Context, opts models.FetchOptions) error
	Status() history.Status
	Subscribe(buffer int) (<-chan history.Event, func())
	TopMedia(q stats.TopQuery) []models.MediaStat
	Users(ctx context.Context, window stats.TimeWindow, by stats.SortOption) []models.UserStat
	Rewind(ctx context.Context, year int, accountID int64) models.RewindReport
}

// Builder assembles a store from configuration. The returned func releases it.
type Builder func(cfg *config.Config) (Store, func() error, error)

// DefaultBuilder wires the Plex-backed pipeline.
func DefaultBuilder(cfg *config.Config) (Store, func() error, error) {
	c, err := app.Build(cfg)
	if err != nil {
		return nil, nil, err
	}
	return c.Store, c.Close, nil
}

type rootFlags struct {
	ConfigFile string
	LogLevel   string
	SinceYear  int
	AccountID  int64
	JSON       bool
	Quiet      bool
}

type cli struct {
	build Builder
	flags rootFlags
	cfg   *config.Config
}

// NewRootCommand builds the rewindctl command tree.
func NewRootCommand(build Builder) *cobra.Command {
	if build == nil {
		build = DefaultBuilder
	}
	c := &cli{build: build}

	root := &cobra.Command{
		Use:   "rewindctl",
		Short: "Sync Plex watch history and print statistics",
		Long: `rewindctl reads the full watch history of the configured Plex server,
fills in missing durations and prints top titles, per-user totals or a
year in review. Every command runs one sync first.`,
		Example: `rewindctl top --window month --limit 20
  rewindctl users --sort watchTime
  rewindctl rewind 2025 --user 1
  rewindctl sync --since-year 2024 --json`,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&c.flags.ConfigFile, "config", "c", "", "Path to config file (default: search ./config.yaml, /etc/rewind)")
	pf.StringVar(&c.flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error); overrides config")
	pf.IntVar(&c.flags.SinceYear, "since-year", 0, "Stop reading history before Jan 1 of this year (0 = all)")
	pf.Int64Var(&c.flags.AccountID, "account-id", 0, "Read history of one Plex account only (0 = all)")
	pf.BoolVar(&c.flags.JSON, "json", false, "Print JSON instead of a table")
	pf.BoolVarP(&c.flags.Quiet, "quiet", "q", false, "Do not print sync progress")

	root.AddCommand(
		c.syncCommand(),
		c.topCommand(),
		c.usersCommand(),
		c.rewindCommand(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	var (
		cfg *config.Config
		err error
	)
	if c.flags.ConfigFile != "" {
		cfg, err = config.LoadFile(c.flags.ConfigFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("since-year") {
		cfg.Plex.SinceYear = c.flags.SinceYear
	}
	if flags.Changed("account-id") {
		cfg.Plex.AccountID = c.flags.AccountID
	}

	level := cfg.Logging.Level
	if c.flags.LogLevel != "" {
		level = c.flags.LogLevel
	}
	logging.Init(logging.Config{
		Level:     level,
		Format:    "console",
		Timestamp: true,
		Output:    cmd.ErrOrStderr(),
	})

	c.cfg = cfg
	return nil
}

// withSyncedStore builds the store, runs one sync and hands the store to fn.
func (c *cli) withSyncedStore(cmd *cobra.Command, fn func(ctx context.Context, store Store) error) error {
	store, closeFn, err := c.build(c.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil {
			logging.Warn().Err(cerr).Msg("Failed to release history store")
		}
	}()

	ctx := logging.ContextWithSyncID(cmd.Context(), logging.GenerateSyncID())
	if err := c.sync(ctx, cmd, store); err != nil {
		return err
	}
	return fn(ctx, store)
}

func (c *cli) sync(ctx context.Context, cmd *cobra.Command, store Store) error {
	if !c.flags.Quiet {
		events, cancel := store.Subscribe(64)
		done := make(chan struct{})
		go func() {
			defer close(done)
			printEvents(cmd.ErrOrStderr(), events)
		}()
		defer func() {
			cancel()
			<-done
		}()
	}

	opts := models.FetchOptions{
		SinceYear: c.cfg.Plex.SinceYear,
		AccountID: c.cfg.Plex.AccountID,
	}
	if err := store.Sync(ctx, opts); err != nil {
		return describeSyncError(err)
	}
	return nil
}
