package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/invisiboga/internal/config"
	"github.com/Iron-Ham/invisiboga/internal/console"
	"github.com/Iron-Ham/invisiboga/internal/display"
	"github.com/Iron-Ham/invisiboga/internal/engine"
	"github.com/Iron-Ham/invisiboga/internal/event"
	"github.com/Iron-Ham/invisiboga/internal/lifecycle"
	"github.com/Iron-Ham/invisiboga/internal/logging"
	"github.com/Iron-Ham/invisiboga/internal/looper"
	"github.com/Iron-Ham/invisiboga/internal/metrics"
	"github.com/Iron-Ham/invisiboga/internal/task"
	"github.com/Iron-Ham/invisiboga/internal/texture"
	"github.com/Iron-Ham/invisiboga/internal/uibridge"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the application headless and print what happens",
	Long: `Run the application without a terminal UI.

The UI thread is a plain event loop and the UI is a console that prints
every state change, task result and engine UI request. Use it to watch
the staged bring-up, to try failure scripts, or to drive pause and
resume on a timer:

  invisiboga simulate --duration 5s --pause-after 2s --resume-after 3s
  INVISIBOGA_ENGINE_INIT_SCRIPT=0,40,-2 invisiboga simulate

The process exits with status 1 when initialization fails fatally.`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

var (
	simDuration    time.Duration
	simPauseAfter  time.Duration
	simResumeAfter time.Duration
	simAutoplay    time.Duration
	simQuiet       bool
)

func init() {
	simulateCmd.Flags().DurationVar(&simDuration, "duration", 5*time.Second, "how long to run before destroying the app (0 = until interrupted)")
	simulateCmd.Flags().DurationVar(&simPauseAfter, "pause-after", 0, "pause the app after this long (0 = never)")
	simulateCmd.Flags().DurationVar(&simResumeAfter, "resume-after", 0, "resume the app after this long (0 = never)")
	simulateCmd.Flags().DurationVar(&simAutoplay, "autoplay", 0, "press the visible dice or next button at this interval (0 = off)")
	simulateCmd.Flags().BoolVarP(&simQuiet, "quiet", "q", false, "do not print engine UI requests")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := CreateLogger(cfg, false)
	defer func() { _ = logger.Close() }()
	watchConfig(logger)

	m := metrics.New()
	srv, err := startMetrics(cfg.Metrics.Addr, m, logger)
	if err != nil {
		return err
	}
	defer srv.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	vo := viewOptions(cfg)
	vo.Logger = logger
	vo.Metrics = m

	res := simulate(ctx, cmd.OutOrStdout(), simulation{
		Engine:      newEngine(cfg, logger),
		Textures:    newTextures(cfg),
		Screen:      newScreen(cfg),
		Views:       vo,
		Logger:      logger,
		Metrics:     m,
		Duration:    simDuration,
		PauseAfter:  simPauseAfter,
		ResumeAfter: simResumeAfter,
		Autoplay:    simAutoplay,
		Quiet:       simQuiet,
	})
	if res.ExitCode != 0 {
		return &ExitError{Code: res.ExitCode}
	}
	return nil
}

// simulation describes one headless run.
type simulation struct {
	Engine   engine.Boundary
	Textures texture.Provider
	Screen   display.Source
	Views    lifecycle.ViewOptions
	Logger   *logging.Logger
	Metrics  *metrics.Metrics

	Duration    time.Duration
	PauseAfter  time.Duration
	ResumeAfter time.Duration
	Autoplay    time.Duration
	Quiet       bool
}

// simResult summarizes a finished headless run.
type simResult struct {
	ExitCode   int
	FinalState lifecycle.State
	Trail      []string
	Metrics    metrics.Snapshot
}

// simulate brings the application up on a looper owned by the calling
// goroutine and runs it until the duration elapses, ctx ends, or a fatal
// error is acknowledged.
func simulate(ctx context.Context, out io.Writer, s simulation) simResult {
	if s.Logger == nil {
		s.Logger = logging.NopLogger()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l := looper.New()
	con := console.New(out)
	bus := event.NewBus(s.Logger)
	con.Follow(bus)

	var trail []string
	bus.Subscribe(event.TypeStateChanged, func(e event.Event) {
		trail = append(trail, e.(event.StateChangedEvent).To)
	})

	runner := task.NewRunner(l,
		task.WithLogger(s.Logger),
		task.WithMetrics(s.Metrics),
	)

	vo := s.Views
	if !s.Quiet {
		vo.Mirror = con
	}

	var res simResult
	var ctrl *lifecycle.Controller
	shutdown := func() {
		ctrl.Destroy()
		l.Stop()
	}

	ctrl = lifecycle.NewController(ctx, lifecycle.Deps{
		Engine:   s.Engine,
		Tasks:    runner,
		Chrome:   con,
		Views:    lifecycle.DefaultViews(l, vo),
		Textures: s.Textures,
		Screen:   s.Screen,
	},
		lifecycle.WithLogger(s.Logger),
		lifecycle.WithBus(bus),
		lifecycle.WithMetrics(s.Metrics),
		lifecycle.WithExit(func(code int) {
			res.ExitCode = code
			// The fatal dialog acks from inside the controller; finish
			// after it returns.
			l.Post(shutdown)
		}),
	)

	var timers []*time.Timer
	after := func(d time.Duration, fn func()) {
		if d > 0 {
			timers = append(timers, time.AfterFunc(d, func() { l.Post(fn) }))
		}
	}
	after(s.PauseAfter, func() {
		con.Printf("pausing")
		ctrl.Pause()
	})
	after(s.ResumeAfter, func() {
		con.Printf("resuming")
		ctrl.Resume()
	})
	after(s.Duration, shutdown)

	if s.Autoplay > 0 {
		go autoplay(ctx, l, con, s.Autoplay)
	}

	l.Post(ctrl.Create)
	_ = l.Run(ctx)

	for _, t := range timers {
		t.Stop()
	}
	cancel()

	// The loop is gone, so this goroutine owns the controller now.
	if !ctrl.Destroyed() {
		ctrl.Destroy()
	}
	runner.Close()

	res.FinalState = ctrl.State()
	res.Trail = trail
	res.Metrics = s.Metrics.Snapshot()
	con.Printf("final state: %s", res.FinalState)
	return res
}

// autoplay presses whichever game button is visible, dice first.
func autoplay(ctx context.Context, l *looper.Looper, con *console.Console, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Post(func() {
				ov := con.Overlay()
				if ov == nil || ov.Confirming() {
					return
				}
				for _, view := range []string{uibridge.ViewDiceButton, uibridge.ViewNextButton} {
					if ov.Visible(view) {
						con.Printf("press %s", view)
						if err := ov.Click(view); err != nil {
							con.Printf("press %s failed: %v", view, err)
						}
						return
					}
				}
			})
		}
	}
}
