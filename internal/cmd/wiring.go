package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Iron-Ham/invisiboga/internal/config"
	"github.com/Iron-Ham/invisiboga/internal/display"
	"github.com/Iron-Ham/invisiboga/internal/engine/sim"
	"github.com/Iron-Ham/invisiboga/internal/lifecycle"
	"github.com/Iron-Ham/invisiboga/internal/logging"
	"github.com/Iron-Ham/invisiboga/internal/metrics"
	"github.com/Iron-Ham/invisiboga/internal/texture"
)

// newEngine builds the simulated engine from the engine section.
func newEngine(cfg *config.Config, logger *logging.Logger) *sim.Engine {
	opts := []sim.Option{
		sim.WithInitScript(cfg.Engine.InitScript...),
		sim.WithLoadScript(cfg.Engine.LoadScript...),
		sim.WithStepDelay(cfg.Engine.StepDelay),
		sim.WithLogger(logger.With("component", "engine")),
	}
	if cfg.Engine.Seed != 0 {
		opts = append(opts, sim.WithSeed(cfg.Engine.Seed))
	}
	return sim.New(opts...)
}

// newTextures returns the texture source: the asset directory when one is
// configured, the built-in placeholders otherwise. Relative directories are
// resolved against the config directory.
func newTextures(cfg *config.Config) texture.Provider {
	dir := config.ResolveDir(cfg.Assets.Dir, config.ConfigDir())
	if dir == "" {
		return texture.PlaceholderProvider{}
	}
	return texture.NewDirProvider(dir, cfg.Assets.Manifest)
}

func newScreen(cfg *config.Config) display.Source {
	return display.Resolve(cfg.Screen.Width, cfg.Screen.Height)
}

func viewOptions(cfg *config.Config) lifecycle.ViewOptions {
	return lifecycle.ViewOptions{
		FPS:        cfg.Render.FPS,
		ToastShort: cfg.UI.ToastShort,
		ToastLong:  cfg.UI.ToastLong,
	}
}

// CreateLogger creates the application logger. The interactive UI owns the
// terminal, so with toFile set an empty logging.dir falls back to the logs
// directory under the config directory instead of stderr.
// Returns a NopLogger if creation fails.
func CreateLogger(cfg *config.Config, toFile bool) *logging.Logger {
	dir := config.ResolveDir(cfg.Logging.Dir, config.ConfigDir())
	if dir == "" && toFile {
		dir = filepath.Join(config.ConfigDir(), "logs")
	}

	logger, err := logging.NewLogger(dir, cfg.Logging.Level)
	if err != nil {
		// Log creation failure shouldn't prevent the application from starting
		fmt.Fprintf(os.Stderr, "Warning: failed to create logger: %v\n", err)
		return logging.NopLogger()
	}
	return logger
}

// metricsServer exposes the Prometheus registry on /metrics.
type metricsServer struct {
	http     *http.Server
	listener net.Listener
	logger   *logging.Logger
}

// startMetrics listens on addr and serves m in the background. An empty
// addr disables the endpoint and returns nil.
func startMetrics(addr string, m *metrics.Metrics, logger *logging.Logger) (*metricsServer, error) {
	if addr == "" {
		return nil, nil
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	s := &metricsServer{
		http: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 2 * time.Second,
			ReadTimeout:       5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		listener: ln,
		logger:   logger,
	}

	go func() {
		logger.Info("metrics endpoint listening", "addr", ln.Addr().String())
		if err := s.http.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics endpoint failed", "error", err)
		}
	}()
	return s, nil
}

// Addr returns the bound address.
func (s *metricsServer) Addr() string {
	return s.listener.Addr().String()
}

// Stop shuts the endpoint down, waiting briefly for in-flight scrapes.
func (s *metricsServer) Stop() {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Warn("metrics endpoint shutdown", "error", err)
	}
}
