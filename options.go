package mutscan

import (
	"log/slog"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	workers          int
	topK             int
}

// Option configures scanner behavior.
type Option func(*options)

// WithLogger configures structured logging for the run.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithWorkers sets the number of concurrent variant pipelines.
//
// Each variant's pipeline only reads its own matrices and the shared
// read-only context, so the loop parallelizes safely; results are
// merged back in discovery order, keeping ranking tie-breaks identical
// for every worker count. Values below 1 fall back to sequential.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.workers = n
	}
}

// WithTopK sets the size of the bounded top view in the result.
func WithTopK(k int) Option {
	return func(o *options) {
		if k < 0 {
			k = 0
		}
		o.topK = k
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		workers:          1,
		topK:             DefaultTopK,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
