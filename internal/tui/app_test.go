package tui

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/creack/pty"

	"github.com/Iron-Ham/invisiboga/internal/display"
	"github.com/Iron-Ham/invisiboga/internal/engine/sim"
	"github.com/Iron-Ham/invisiboga/internal/event"
	"github.com/Iron-Ham/invisiboga/internal/lifecycle"
)

// openPTY returns a pseudo-terminal pair. The program runs on tty; the
// test types into ptmx. Everything the program draws is discarded.
func openPTY(t *testing.T) (ptmx, tty *os.File) {
	t.Helper()
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("no pseudo-terminal available: %v", err)
	}
	if err := pty.Setsize(ptmx, &pty.Winsize{Rows: 40, Cols: 120}); err != nil {
		t.Logf("Setsize: %v", err)
	}
	go func() { _, _ = io.Copy(io.Discard, ptmx) }()
	t.Cleanup(func() {
		_ = tty.Close()
		_ = ptmx.Close()
	})
	return ptmx, tty
}

type runResult struct {
	code int
	err  error
}

func runApp(t *testing.T, eng *sim.Engine, bus *event.Bus, tty *os.File) <-chan runResult {
	t.Helper()
	app := New(Config{
		Engine: eng,
		Screen: display.Fixed{Width: 120, Height: 40},
		Views:  lifecycle.ViewOptions{FPS: 30},
		Bus:    bus,
		Input:  tty,
		Output: tty,
	})

	done := make(chan runResult, 1)
	go func() {
		code, err := app.Run(context.Background())
		done <- runResult{code: code, err: err}
	}()
	return done
}

func waitResult(t *testing.T, done <-chan runResult) runResult {
	t.Helper()
	select {
	case r := <-done:
		return r
	case <-time.After(10 * time.Second):
		t.Fatal("program did not exit")
		return runResult{}
	}
}

func TestApp_RunAndQuit(t *testing.T) {
	ptmx, tty := openPTY(t)

	bus := event.NewBus(nil)
	running := make(chan struct{}, 1)
	bus.Subscribe(event.TypeStateChanged, func(e event.Event) {
		if e.(event.StateChangedEvent).To == lifecycle.StateCameraRunning.String() {
			select {
			case running <- struct{}{}:
			default:
			}
		}
	})

	eng := sim.New(sim.WithInitScript(0, 100), sim.WithLoadScript(100))
	done := runApp(t, eng, bus, tty)

	select {
	case <-running:
	case <-time.After(10 * time.Second):
		t.Fatal("camera never started")
	}

	if _, err := ptmx.Write([]byte("q")); err != nil {
		t.Fatalf("write to pty: %v", err)
	}

	r := waitResult(t, done)
	if r.err != nil {
		t.Fatalf("Run() error = %v", r.err)
	}
	if r.code != 0 {
		t.Errorf("exit code = %d, want 0", r.code)
	}
	if n := eng.CallCount(sim.CallTeardown); n != 1 {
		t.Errorf("teardown = %d, want 1", n)
	}
	if eng.CameraOn() {
		t.Error("camera left running after quit")
	}
}

func TestApp_FatalInitExitsWithOne(t *testing.T) {
	ptmx, tty := openPTY(t)

	bus := event.NewBus(nil)
	fatal := make(chan struct{}, 1)
	bus.Subscribe(event.TypeFatalInit, func(event.Event) {
		select {
		case fatal <- struct{}{}:
		default:
		}
	})

	eng := sim.New(sim.WithInitScript(0, -3))
	done := runApp(t, eng, bus, tty)

	select {
	case <-fatal:
	case <-time.After(10 * time.Second):
		t.Fatal("fatal dialog never shown")
	}

	if _, err := ptmx.Write([]byte("\r")); err != nil {
		t.Fatalf("write to pty: %v", err)
	}

	r := waitResult(t, done)
	if r.err != nil {
		t.Fatalf("Run() error = %v", r.err)
	}
	if r.code != 1 {
		t.Errorf("exit code = %d, want 1", r.code)
	}
	if eng.CallCount(sim.CallCreateSession) != 0 {
		t.Error("no session should be created after a fatal init")
	}
}

func TestNew_NilEnginePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New() with a nil engine should panic")
		}
	}()
	New(Config{})
}
