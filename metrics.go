package mutscan

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives per-variant timing and outcome signals.
// Implementations must be safe for concurrent use when the scanner runs
// with more than one worker.
type MetricsCollector interface {
	RecordVariant(d time.Duration, err error)
	RecordSkip()
}

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordVariant(time.Duration, error) {}
func (NoopMetricsCollector) RecordSkip()                        {}

// BasicMetricsCollector counts variants and accumulates latency with
// atomic operations.
type BasicMetricsCollector struct {
	variantCount atomic.Int64
	failCount    atomic.Int64
	skipCount    atomic.Int64
	totalNanos   atomic.Int64
}

// RecordVariant records one variant pipeline execution.
func (c *BasicMetricsCollector) RecordVariant(d time.Duration, err error) {
	c.variantCount.Add(1)
	c.totalNanos.Add(int64(d))
	if err != nil {
		c.failCount.Add(1)
	}
}

// RecordSkip records one skipped variant.
func (c *BasicMetricsCollector) RecordSkip() {
	c.skipCount.Add(1)
}

// MetricsStats is a snapshot of collected metrics.
type MetricsStats struct {
	VariantCount int64
	FailCount    int64
	SkipCount    int64
	AvgNanos     int64
}

// GetStats returns a consistent-enough snapshot for reporting.
func (c *BasicMetricsCollector) GetStats() MetricsStats {
	n := c.variantCount.Load()
	stats := MetricsStats{
		VariantCount: n,
		FailCount:    c.failCount.Load(),
		SkipCount:    c.skipCount.Load(),
	}
	if n > 0 {
		stats.AvgNanos = c.totalNanos.Load() / n
	}
	return stats
}
