package tui

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/invisiboga/internal/display"
	"github.com/Iron-Ham/invisiboga/internal/engine"
	"github.com/Iron-Ham/invisiboga/internal/event"
	"github.com/Iron-Ham/invisiboga/internal/lifecycle"
	"github.com/Iron-Ham/invisiboga/internal/logging"
	"github.com/Iron-Ham/invisiboga/internal/metrics"
	"github.com/Iron-Ham/invisiboga/internal/task"
	"github.com/Iron-Ham/invisiboga/internal/texture"
)

// Config wires the interactive app.
type Config struct {
	Engine   engine.Boundary
	Textures texture.Provider
	Screen   display.Source
	Views    lifecycle.ViewOptions
	Logger   *logging.Logger
	Metrics  *metrics.Metrics
	Bus      *event.Bus

	// Input and Output default to the process terminal.
	Input  io.Reader
	Output io.Writer
}

// App wraps the Bubbletea program
type App struct {
	cfg Config
}

// New creates a new TUI application
func New(cfg Config) *App {
	if cfg.Engine == nil {
		panic("tui: Engine must not be nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NopLogger()
	}
	return &App{cfg: cfg}
}

// Run starts the TUI application and blocks until it exits. The returned
// code is the process exit status the application asked for: 1 after a
// fatal initialization error was acknowledged, 0 otherwise.
func (a *App) Run(ctx context.Context) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	u := &ui{}
	model := newModel(u, a.cfg.Logger)

	var program *tea.Program
	post := newPoster(func(msg tea.Msg) { program.Send(msg) })
	runner := task.NewRunner(post,
		task.WithLogger(a.cfg.Logger),
		task.WithMetrics(a.cfg.Metrics),
	)

	vo := a.cfg.Views
	if vo.Logger == nil {
		vo.Logger = a.cfg.Logger
	}
	if vo.Metrics == nil {
		vo.Metrics = a.cfg.Metrics
	}

	u.ctrl = lifecycle.NewController(ctx, lifecycle.Deps{
		Engine:   a.cfg.Engine,
		Tasks:    runner,
		Chrome:   u,
		Views:    lifecycle.DefaultViews(post, vo),
		Textures: a.cfg.Textures,
		Screen:   a.cfg.Screen,
	},
		lifecycle.WithLogger(a.cfg.Logger),
		lifecycle.WithBus(a.cfg.Bus),
		lifecycle.WithMetrics(a.cfg.Metrics),
		lifecycle.WithExit(u.exit),
	)

	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	}
	if a.cfg.Input != nil {
		opts = append(opts, tea.WithInput(a.cfg.Input))
	}
	if a.cfg.Output != nil {
		opts = append(opts, tea.WithOutput(a.cfg.Output))
	}
	program = tea.NewProgram(model, opts...)

	go post.run(ctx)

	// Set up signal handling for graceful shutdown so the engine is torn
	// down on the UI thread.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		select {
		case <-sigChan:
			program.Send(quitMsg{})
		case <-ctx.Done():
		}
	}()

	_, err := program.Run()

	signal.Stop(sigChan)
	if dropped := post.stop(); dropped > 0 {
		a.cfg.Logger.Debug("posted work discarded at shutdown", "count", dropped)
	}

	// The update loop is gone, so this goroutine owns the controller now.
	if !u.ctrl.Destroyed() {
		u.ctrl.Destroy()
	}
	runner.Close()

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return u.exitCode, err
	}
	return u.exitCode, nil
}
