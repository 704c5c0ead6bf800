// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

// Command rewindctl syncs Plex watch history once and prints statistics.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"

	"github.com/tomtom215/rewind/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, cli.NewRootCommand(cli.DefaultBuilder)); err != nil {
		stop()
		os.Exit(1)
	}
}
