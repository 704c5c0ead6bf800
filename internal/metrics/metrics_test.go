// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordSyncOperation(t *testing.T) {
	before := testutil.ToFloat64(SyncErrors.WithLabelValues("server_error"))

	RecordSyncOperation(2*time.Second, 0, "server_error")
	if got := testutil.ToFloat64(SyncErrors.WithLabelValues("server_error")); got != before+1 {
		t.Errorf("server_error count = %v, want %v", got, before+1)
	}

	RecordSyncOperation(time.Second, 42, "")
	if got := testutil.ToFloat64(SyncSessions); got != 42 {
		t.Errorf("SyncSessions = %v, want 42", got)
	}
	if testutil.ToFloat64(SyncLastSuccess) == 0 {
		t.Error("SyncLastSuccess not set")
	}
}

func TestRecordEnrichResult(t *testing.T) {
	before := testutil.ToFloat64(EnrichRequests.WithLabelValues("cached"))
	RecordEnrichResult("cached")
	RecordEnrichResult("cached")
	if got := testutil.ToFloat64(EnrichRequests.WithLabelValues("cached")); got != before+2 {
		t.Errorf("cached count = %v, want %v", got, before+2)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits.WithLabelValues("durations"))
	misses := testutil.ToFloat64(CacheMisses.WithLabelValues("durations"))

	RecordCacheLookup("durations", true)
	RecordCacheLookup("durations", false)
	RecordCacheLookup("durations", false)

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("durations")); got != hits+1 {
		t.Errorf("hits = %v, want %v", got, hits+1)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("durations")); got != misses+2 {
		t.Errorf("misses = %v, want %v", got, misses+2)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/stats/top", "200"))
	RecordAPIRequest("GET", "/api/v1/stats/top", "200", 15*time.Millisecond)
	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/stats/top", "200")); got != before+1 {
		t.Errorf("requests = %v, want %v", got, before+1)
	}
}
