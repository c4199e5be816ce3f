package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	PageFetches          atomic.Int64
	ConsentHandshakes    atomic.Int64
	ExtractionFailures   atomic.Int64
	ContinuationRequests atomic.Int64
	ContinuationFailures atomic.Int64
	CommentsEmitted      atomic.Int64
	RecordsSkipped       atomic.Int64
	ArchiveWrites        atomic.Int64
	ArchiveErrors        atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"page_fetches":          metrics.PageFetches.Load(),
		"consent_handshakes":    metrics.ConsentHandshakes.Load(),
		"extraction_failures":   metrics.ExtractionFailures.Load(),
		"continuation_requests": metrics.ContinuationRequests.Load(),
		"continuation_failures": metrics.ContinuationFailures.Load(),
		"comments_emitted":      metrics.CommentsEmitted.Load(),
		"records_skipped":       metrics.RecordsSkipped.Load(),
		"archive_writes":        metrics.ArchiveWrites.Load(),
		"archive_errors":        metrics.ArchiveErrors.Load(),
		"cache_hits":            hits,
		"cache_misses":          misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"page_fetches", "consent_handshakes", "extraction_failures",
		"continuation_requests", "continuation_failures",
		"comments_emitted", "records_skipped",
		"archive_writes", "archive_errors",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for youtube/ sub-package.
func IncrPageFetches()          { metrics.PageFetches.Add(1) }
func IncrConsentHandshakes()    { metrics.ConsentHandshakes.Add(1) }
func IncrExtractionFailures()   { metrics.ExtractionFailures.Add(1) }
func IncrContinuationRequests() { metrics.ContinuationRequests.Add(1) }
func IncrContinuationFailures() { metrics.ContinuationFailures.Add(1) }
func IncrRecordsSkipped()       { metrics.RecordsSkipped.Add(1) }

// AddCommentsEmitted adds n to the emitted-comments counter.
func AddCommentsEmitted(n int) { metrics.CommentsEmitted.Add(int64(n)) }

// Incrementors for archive/ sub-package.
func IncrArchiveWrites() { metrics.ArchiveWrites.Add(1) }
func IncrArchiveErrors() { metrics.ArchiveErrors.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
