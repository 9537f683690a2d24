package task

import (
	"github.com/Iron-Ham/invisiboga/internal/logging"
	"github.com/Iron-Ham/invisiboga/internal/metrics"
)

// Option configures a Runner.
type Option func(*config)

type config struct {
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// WithLogger sets the logger for the runner.
func WithLogger(logger *logging.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics records task outcomes and durations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}
