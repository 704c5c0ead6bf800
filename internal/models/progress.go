// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package models

// ProgressStage names the phase a sync is in.
type ProgressStage string

const (
	StageFetch  ProgressStage = "fetch"
	StageEnrich ProgressStage = "enrich"
)

// Progress is a progress report from the fetcher or the enricher.
// Total is zero when it is not known up front (paging).
type Progress struct {
	Stage ProgressStage `json:"stage"`
	Done  int           `json:"done"`
	Total int           `json:"total,omitempty"`
}

// SendProgress delivers p without blocking. A full or nil channel drops it.
func SendProgress(ch chan<- Progress, p Progress) {
	if ch == nil {
		return
	}
	select {
	case ch <- p:
	default:
	}
}
