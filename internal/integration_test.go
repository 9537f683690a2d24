// Package internal contains integration tests that run the application
// shell end to end: a looper as the UI thread, the staged task runner, the
// simulated engine, the real overlay, bridge and render loop, and the
// console standing in for the terminal UI.
package internal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/invisiboga/internal/console"
	"github.com/Iron-Ham/invisiboga/internal/display"
	"github.com/Iron-Ham/invisiboga/internal/engine/sim"
	"github.com/Iron-Ham/invisiboga/internal/event"
	"github.com/Iron-Ham/invisiboga/internal/lifecycle"
	"github.com/Iron-Ham/invisiboga/internal/looper"
	"github.com/Iron-Ham/invisiboga/internal/metrics"
	"github.com/Iron-Ham/invisiboga/internal/render"
	"github.com/Iron-Ham/invisiboga/internal/task"
	"github.com/Iron-Ham/invisiboga/internal/texture"
	"github.com/Iron-Ham/invisiboga/internal/uibridge"
)

// pngHeader is enough for MIME sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

// syncBuffer is a bytes.Buffer safe for the console and the test to share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type app struct {
	t       *testing.T
	looper  *looper.Looper
	runner  *task.Runner
	engine  *sim.Engine
	console *console.Console
	metrics *metrics.Metrics
	ctrl    *lifecycle.Controller
	out     *syncBuffer

	mu     sync.Mutex
	events []event.Event
}

func startApp(t *testing.T, textures texture.Provider, opts ...sim.Option) *app {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	a := &app{
		t:       t,
		looper:  looper.New(),
		engine:  sim.New(opts...),
		metrics: metrics.New(),
		out:     &syncBuffer{},
	}
	a.console = console.New(a.out)
	a.runner = task.NewRunner(a.looper, task.WithMetrics(a.metrics))

	bus := event.NewBus(nil)
	bus.SubscribeAll(func(e event.Event) {
		a.mu.Lock()
		a.events = append(a.events, e)
		a.mu.Unlock()
	})
	a.console.Follow(bus)

	a.ctrl = lifecycle.NewController(ctx, lifecycle.Deps{
		Engine:   a.engine,
		Tasks:    a.runner,
		Chrome:   a.console,
		Views:    lifecycle.DefaultViews(a.looper, lifecycle.ViewOptions{FPS: 120, Metrics: a.metrics, Mirror: a.console}),
		Textures: textures,
		Screen:   display.Fixed{Width: 100, Height: 30},
	},
		lifecycle.WithBus(bus),
		lifecycle.WithMetrics(a.metrics),
		lifecycle.WithGC(func() {}),
		lifecycle.WithExit(func(int) {}),
	)

	go func() { _ = a.looper.Run(ctx) }()
	t.Cleanup(func() {
		a.do(func() {
			if !a.ctrl.Destroyed() {
				a.ctrl.Destroy()
			}
		})
		cancel()
		<-a.looper.Done()
		a.runner.Close()
	})

	a.do(a.ctrl.Create)
	return a
}

// do runs fn on the UI thread and waits for it.
func (a *app) do(fn func()) {
	a.t.Helper()
	if !a.looper.Sync(fn) {
		a.t.Fatal("UI thread is gone")
	}
}

func (a *app) waitFor(what string, cond func() bool) {
	a.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		var ok bool
		a.do(func() { ok = cond() })
		if ok {
			return
		}
		if time.Now().After(deadline) {
			a.t.Fatalf("timed out waiting for %s\n%s", what, a.out.String())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func (a *app) eventTypes() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.EventType())
	}
	return out
}

func writeAssets(t *testing.T, skip texture.Role) string {
	t.Helper()
	dir := t.TempDir()
	for _, e := range texture.DefaultManifest().Textures {
		data := pngHeader
		if e.Role == skip.String() {
			data = []byte("not an image at all")
		}
		if err := os.WriteFile(filepath.Join(dir, e.File), data, 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestApplicationEndToEnd(t *testing.T) {
	dir := writeAssets(t, -1)
	a := startApp(t, texture.NewDirProvider(dir, ""),
		sim.WithInitScript(0, 30, 60, 100),
		sim.WithLoadScript(50, 100),
		sim.WithSeed(11),
	)

	a.waitFor("camera running", func() bool { return a.ctrl.State() == lifecycle.StateCameraRunning })

	// Asset textures were sniffed and handed to the engine.
	var count int
	var mime string
	a.do(func() {
		count = a.ctrl.TextureCount()
		if tex := a.ctrl.Texture(int(texture.RoleTarget)); tex != nil {
			mime = tex.MIME
		}
	})
	if count != texture.Count {
		t.Errorf("TextureCount() = %d, want %d", count, texture.Count)
	}
	if mime != "image/png" {
		t.Errorf("target texture MIME = %q, want image/png", mime)
	}
	if w, h, n := a.engine.Session(); w != 100 || h != 30 || n != texture.Count {
		t.Errorf("session = %dx%d with %d textures", w, h, n)
	}

	// The render loop is live and the overlay follows the engine.
	ov := a.console.Overlay()
	if ov == nil {
		t.Fatal("overlay not attached")
	}
	if _, ok := a.ctrl.Views().Surface.(*render.Loop); !ok {
		t.Errorf("Surface = %T, want *render.Loop", a.ctrl.Views().Surface)
	}
	a.waitFor("dice button", func() bool { return ov.Visible(uibridge.ViewDiceButton) })
	if a.metrics.Snapshot().Frames == 0 {
		t.Error("no frames rendered")
	}

	a.do(func() {
		if err := ov.Click(uibridge.ViewDiceButton); err != nil {
			t.Errorf("Click(dice) error = %v", err)
		}
	})
	a.waitFor("next button", func() bool { return ov.Visible(uibridge.ViewNextButton) })
	if positions, _ := a.engine.Positions(); positions[0] == 0 {
		t.Error("dice roll did not move player 1")
	}

	a.do(a.ctrl.Pause)
	if a.engine.CameraOn() {
		t.Error("camera still on after pause")
	}
	a.do(a.ctrl.Resume)
	if !a.engine.CameraOn() {
		t.Error("camera off after resume")
	}

	var closed bool
	a.do(func() {
		a.ctrl.Destroy()
		closed = a.ctrl.Views().Bridge.Closed()
	})
	if !closed {
		t.Error("bridge not closed on destroy")
	}
	if a.engine.CallCount(sim.CallTeardown) != 1 || a.engine.CallCount(sim.CallDeinit) != 1 {
		t.Errorf("calls = %v", a.engine.Calls())
	}

	types := a.eventTypes()
	for _, want := range []string{event.TypeStateChanged, event.TypeTaskFinished, event.TypeCamera, event.TypeTeardown} {
		if !slices.Contains(types, want) {
			t.Errorf("no %s event in %v", want, types)
		}
	}
}

func TestApplicationDegradedAssets(t *testing.T) {
	dir := writeAssets(t, texture.RoleSpecial)
	a := startApp(t, texture.NewDirProvider(dir, ""))

	a.waitFor("camera running", func() bool { return a.ctrl.State() == lifecycle.StateCameraRunning })

	var special, start *texture.Texture
	a.do(func() {
		special = a.ctrl.Texture(int(texture.RoleSpecial))
		start = a.ctrl.Texture(int(texture.RoleStart))
	})
	if special != nil {
		t.Error("a file that is not an image must not load")
	}
	if start == nil {
		t.Error("the other textures should still load")
	}
}

func TestApplicationFatalInit(t *testing.T) {
	a := startApp(t, nil, sim.WithInitScript(0, -2))

	a.waitFor("fatal error", func() bool { return a.ctrl.Fatal() != nil })

	if a.engine.CallCount(sim.CallCreateSession) != 0 {
		t.Error("no session should be created after a fatal init")
	}
	if !slices.Contains(a.eventTypes(), event.TypeFatalInit) {
		t.Errorf("no fatal event in %v", a.eventTypes())
	}
	if got := a.out.String(); !bytes.Contains([]byte(got), []byte("device is not supported")) {
		t.Errorf("console missing the fatal reason:\n%s", got)
	}
}
