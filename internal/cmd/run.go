package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/invisiboga/internal/config"
	"github.com/Iron-Ham/invisiboga/internal/event"
	"github.com/Iron-Ham/invisiboga/internal/metrics"
	"github.com/Iron-Ham/invisiboga/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive game UI",
	Long: `Start the interactive terminal UI.

The application walks through its bring-up stages behind a loading
indicator, then shows the camera viewport with the game overlay.

Keys:
  p          pause / resume (focus loss and gain do the same)
  d, n, r    dice, next player, restart (confirm with y / n)
  t          retry a stalled stage
  mouse      touch events forwarded to the engine
  q, ctrl+c  quit

The process exits with status 1 after a fatal initialization error has
been acknowledged.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := CreateLogger(cfg, true)
	defer func() { _ = logger.Close() }()
	watchConfig(logger)

	m := metrics.New()
	srv, err := startMetrics(cfg.Metrics.Addr, m, logger)
	if err != nil {
		return err
	}
	defer srv.Stop()

	app := tui.New(tui.Config{
		Engine:   newEngine(cfg, logger),
		Textures: newTextures(cfg),
		Screen:   newScreen(cfg),
		Views:    viewOptions(cfg),
		Logger:   logger,
		Metrics:  m,
		Bus:      event.NewBus(logger),
	})

	code, err := app.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}
