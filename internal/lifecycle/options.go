package lifecycle

import (
	"os"

	"github.com/Iron-Ham/invisiboga/internal/event"
	"github.com/Iron-Ham/invisiboga/internal/logging"
	"github.com/Iron-Ham/invisiboga/internal/metrics"
)

// Option configures a Controller.
type Option func(*config)

type config struct {
	logger  *logging.Logger
	bus     *event.Bus
	metrics *metrics.Metrics
	exit    func(code int)
	gc      func()
}

func defaultConfig() *config {
	return &config{
		logger: logging.NopLogger(),
		exit:   os.Exit,
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBus publishes lifecycle events on bus.
func WithBus(bus *event.Bus) Option {
	return func(c *config) { c.bus = bus }
}

// WithMetrics records transitions.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// WithExit replaces os.Exit, which runs after the fatal dialog is
// acknowledged.
func WithExit(exit func(code int)) Option {
	return func(c *config) {
		if exit != nil {
			c.exit = exit
		}
	}
}

// WithGC replaces the runtime.GC hint issued on INITED and after teardown.
func WithGC(gc func()) Option {
	return func(c *config) { c.gc = gc }
}
