// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package sync

import (
	"github.com/rs/zerolog"

	"github.com/tomtom215/rewind/internal/logging"
)

// schedulerLogger routes gocron's key/value logs into zerolog.
type schedulerLogger struct {
	log zerolog.Logger
}

func newSchedulerLogger() *schedulerLogger {
	return &schedulerLogger{log: logging.WithComponent("scheduler")}
}

func (l *schedulerLogger) Debug(msg string, args ...any) {
	l.log.Debug().Fields(args).Msg(msg)
}

func (l *schedulerLogger) Error(msg string, args ...any) {
	l.log.Error().Fields(args).Msg(msg)
}

func (l *schedulerLogger) Info(msg string, args ...any) {
	l.log.Info().Fields(args).Msg(msg)
}

func (l *schedulerLogger) Warn(msg string, args ...any) {
	l.log.Warn().Fields(args).Msg(msg)
}
