// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/rewind/internal/models"
	"github.com/tomtom215/rewind/internal/stats"
)

func (c *cli) syncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Read the full history once and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSyncedStore(cmd, func(_ context.Context, store Store) error {
				status := store.Status()
				if c.flags.JSON {
					return writeJSON(cmd.OutOrStdout(), status)
				}
				printStatus(cmd.OutOrStdout(), status)
				return nil
			})
		},
	}
}

type topFlags struct {
	Window   string
	Sort     string
	Type     string
	User     int64
	Limit    int
	Sessions bool
}

func (c *cli) topCommand() *cobra.Command {
	var f topFlags
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Most watched movies and shows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			window, err := stats.ParseTimeWindow(f.Window)
			if err != nil {
				return err
			}
			sort, err := stats.ParseSortOption(f.Sort)
			if err != nil {
				return err
			}
			if f.Type != "" && f.Type != models.TypeMovie && f.Type != models.TypeShow {
				return fmt.Errorf("invalid --type %q: must be movie or show", f.Type)
			}
			if f.Limit < 0 {
				return fmt.Errorf("invalid --limit %d: must not be negative", f.Limit)
			}

			q := stats.TopQuery{
				Window:          window,
				AccountID:       f.User,
				MediaType:       f.Type,
				Sort:            sort,
				Limit:           f.Limit,
				IncludeSessions: f.Sessions,
			}
			return c.withSyncedStore(cmd, func(_ context.Context, store Store) error {
				top := store.TopMedia(q)
				if c.flags.JSON {
					return writeJSON(cmd.OutOrStdout(), top)
				}
				printTopMedia(cmd.OutOrStdout(), top, time.Now())
				return nil
			})
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.Window, "window", "w", "allTime", "Time window: week, month, year or allTime")
	fl.StringVarP(&f.Sort, "sort", "s", "plays", "Sort by plays or watchTime")
	fl.StringVarP(&f.Type, "type", "t", "", "Only movie or show")
	fl.Int64VarP(&f.User, "user", "u", 0, "Only this account id (0 = everyone)")
	fl.IntVarP(&f.Limit, "limit", "n", 10, "Number of titles (0 = all)")
	fl.BoolVar(&f.Sessions, "sessions", false, "Include source sessions (JSON output only)")
	return cmd
}

func (c *cli) usersCommand() *cobra.Command {
	var window, sort string
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Plays and watch time per account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, err := stats.ParseTimeWindow(window)
			if err != nil {
				return err
			}
			s, err := stats.ParseSortOption(sort)
			if err != nil {
				return err
			}
			return c.withSyncedStore(cmd, func(ctx context.Context, store Store) error {
				users := store.Users(ctx, w, s)
				if c.flags.JSON {
					return writeJSON(cmd.OutOrStdout(), users)
				}
				printUsers(cmd.OutOrStdout(), users, time.Now())
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&window, "window", "w", "allTime", "Time window: week, month, year or allTime")
	cmd.Flags().StringVarP(&sort, "sort", "s", "plays", "Sort by plays or watchTime")
	return cmd
}

func (c *cli) rewindCommand() *cobra.Command {
	var user int64
	cmd := &cobra.Command{
		Use:   "rewind [year]",
		Short: "Year in review for the server or one account",
		Long:  "Year in review. Defaults to the current year in the configured stats timezone.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year := 0
			if len(args) == 1 {
				y, err := strconv.Atoi(args[0])
				if err != nil || y < 1970 || y > 9999 {
					return fmt.Errorf("invalid year %q", args[0])
				}
				year = y
			}
			return c.withSyncedStore(cmd, func(ctx context.Context, store Store) error {
				if year == 0 {
					year = c.currentYear()
				}
				report := store.Rewind(ctx, year, user)
				if c.flags.JSON {
					return writeJSON(cmd.OutOrStdout(), report)
				}
				printRewind(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}
	cmd.Flags().Int64VarP(&user, "user", "u", 0, "Account id (0 = whole server)")
	return cmd
}

func (c *cli) currentYear() int {
	loc, err := c.cfg.Sync.Location()
	if err != nil {
		loc = time.Local
	}
	return time.Now().In(loc).Year()
}
