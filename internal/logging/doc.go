// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

// Package logging provides the zerolog-based global logger used across Rewind.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Int("sessions", n).Msg("history sync completed")
//	logging.Error().Err(err).Msg("history sync failed")
//
//	// Attach the sync id and request id carried by ctx
//	logging.Ctx(ctx).Debug().Int("page", page).Msg("history page fetched")
//
// # Configuration
//
// Environment Variables (mapped by internal/config):
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
//
// Always terminate event chains with .Msg() or .Send(); an unterminated
// chain is never written.
//
// SlogHandler bridges log/slog consumers (the suture supervisor event hook)
// onto the same logger.
package logging
