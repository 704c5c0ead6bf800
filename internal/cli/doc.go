// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

/*
Package cli implements rewindctl, a one-shot command line client.

Each subcommand loads configuration the same way the server does, runs a
single full sync and prints the result as a table or, with --json, as the
same JSON the API returns in its data field.

	rewindctl sync
	rewindctl top --window year --sort watchTime --limit 25
	rewindctl users --window month
	rewindctl rewind 2025 --user 1

Sync progress goes to stderr; results go to stdout.
*/
package cli
