package lifecycle

import (
	"context"
	"runtime"

	"github.com/Iron-Ham/invisiboga/internal/display"
	"github.com/Iron-Ham/invisiboga/internal/engine"
	"github.com/Iron-Ham/invisiboga/internal/errors"
	"github.com/Iron-Ham/invisiboga/internal/event"
	"github.com/Iron-Ham/invisiboga/internal/logging"
	"github.com/Iron-Ham/invisiboga/internal/metrics"
	"github.com/Iron-Ham/invisiboga/internal/overlay"
	"github.com/Iron-Ham/invisiboga/internal/task"
	"github.com/Iron-Ham/invisiboga/internal/texture"
)

// Staged task names.
const (
	StageEngineInit  = "engine-init"
	StageTrackerLoad = "tracker-load"
)

// LoadingText is shown while the application initializes.
const LoadingText = "Loading, please wait..."

// Chrome is the part of the UI the controller drives directly.
type Chrome interface {
	ShowLoading(text string)
	DismissLoading()
	// ShowFatal shows a modal message. ack must be invoked on the UI
	// thread when the user acknowledges it.
	ShowFatal(reason string, ack func())
	// Attach makes the render surface and overlay visible.
	Attach(surface Surface, ov *overlay.Overlay)
}

// Launcher starts staged tasks. task.Runner implements it.
type Launcher interface {
	Launch(ctx context.Context, name string, t task.StagedTask, done func(task.Result)) (*task.Handle, error)
}

// Deps are the collaborators of a Controller. Engine, Tasks, Chrome and
// Views are required.
type Deps struct {
	Engine engine.Boundary
	Tasks  Launcher
	Chrome Chrome
	Views  ViewFactory
	// Textures defaults to texture.PlaceholderProvider.
	Textures texture.Provider
	// Screen defaults to display.DefaultSize.
	Screen display.Source
}

// Controller is the application lifecycle state machine.
type Controller struct {
	ctx    context.Context
	cancel context.CancelFunc

	engine   engine.Boundary
	tasks    Launcher
	chrome   Chrome
	views    ViewFactory
	textures texture.Provider
	screen   display.Source

	logger  *logging.Logger
	bus     *event.Bus
	metrics *metrics.Metrics
	exit    func(int)
	gc      func()

	state     State
	stalled   bool
	stallErr  error
	destroyed bool
	loaded    texture.Set
	size      display.Size
	handle    *engine.Handle
	ui        Views
	inflight  map[string]*task.Handle
	fatal     *errors.InitError
}

// NewController creates a Controller in StateUninited. Its tasks are
// cancelled when ctx is done or on Destroy.
//
// Engine, Tasks, Chrome and Views must be non-nil. Passing nil will panic
// early to surface wiring bugs immediately.
func NewController(ctx context.Context, deps Deps, opts ...Option) *Controller {
	if deps.Engine == nil {
		panic("lifecycle: Engine must not be nil")
	}
	if deps.Tasks == nil {
		panic("lifecycle: Tasks must not be nil")
	}
	if deps.Chrome == nil {
		panic("lifecycle: Chrome must not be nil")
	}
	if deps.Views == nil {
		panic("lifecycle: Views must not be nil")
	}
	if deps.Textures == nil {
		deps.Textures = texture.PlaceholderProvider{}
	}
	if deps.Screen == nil {
		deps.Screen = display.Fixed(display.DefaultSize)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.gc == nil {
		cfg.gc = runtime.GC
	}

	ctx, cancel := context.WithCancel(ctx)
	return &Controller{
		ctx:      ctx,
		cancel:   cancel,
		engine:   deps.Engine,
		tasks:    deps.Tasks,
		chrome:   deps.Chrome,
		views:    deps.Views,
		textures: deps.Textures,
		screen:   deps.Screen,
		logger:   cfg.logger,
		bus:      cfg.bus,
		metrics:  cfg.metrics,
		exit:     cfg.exit,
		gc:       cfg.gc,
		inflight: make(map[string]*task.Handle),
	}
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Stalled reports the state the controller is stuck in after a staged task
// failed to launch.
func (c *Controller) Stalled() (State, bool) { return c.state, c.stalled }

// Fatal returns the fatal-init error being shown, if any.
func (c *Controller) Fatal() *errors.InitError { return c.fatal }

// Handle returns the engine session, or nil before StateInitAR.
func (c *Controller) Handle() *engine.Handle { return c.handle }

// Views returns the views built for the engine session.
func (c *Controller) Views() Views { return c.ui }

// ScreenSize returns the size recorded while entering StateInitApp.
func (c *Controller) ScreenSize() display.Size { return c.size }

// Destroyed reports whether Destroy has run.
func (c *Controller) Destroyed() bool { return c.destroyed }

// TextureCount returns the number of texture slots.
func (c *Controller) TextureCount() int { return len(c.loaded) }

// Texture returns the texture in slot i, or nil when i is out of range or
// the slot failed to load.
func (c *Controller) Texture(i int) *texture.Texture {
	if i < 0 || i >= len(c.loaded) {
		c.logger.Warn("texture index out of range", "index", i, "count", len(c.loaded))
		return nil
	}
	return c.loaded[i]
}

// Create is the application created trigger.
func (c *Controller) Create() {
	c.AdvanceTo(StateInitApp)
}

// AdvanceTo moves the controller to next and runs its entry action.
// Advancing to the current state does nothing. After Destroy every call is
// ignored.
//
// AdvanceTo panics with *errors.DefectError if next is not a known state.
func (c *Controller) AdvanceTo(next State) {
	if !next.Valid() {
		panic(errors.NewDefectError(next.String()))
	}
	if next == c.state {
		return
	}
	if c.destroyed {
		c.logger.Debug("transition after destroy ignored", "to", next.String())
		return
	}
	if next.NeedsSession() && c.handle == nil {
		c.logger.Warn("transition refused, no engine session", "from", c.state.String(), "to", next.String())
		return
	}

	from := c.state
	c.state = next
	c.stalled, c.stallErr = false, nil

	c.logger.WithState(next.String()).Info("state changed", "from", from.String())
	c.metrics.RecordTransition(from.String(), next.String(), int(next))
	c.publish(event.NewStateChangedEvent(from.String(), next.String()))

	c.enter(next)
}

func (c *Controller) enter(s State) {
	switch s {
	case StateUninited:
	case StateInitApp:
		c.initApp()
		c.AdvanceTo(StateInitEngine)
	case StateInitEngine:
		c.launchEngineInit()
	case StateInitAR:
		if err := c.initAR(); err != nil {
			c.showFatal(err)
			return
		}
		c.AdvanceTo(StateInitTracker)
	case StateInitTracker:
		c.launchTrackerLoad()
	case StateInited:
		c.gc()
		if err := c.handle.PostInit(); err != nil {
			c.logger.Warn("post init failed", "error", err)
		}
		c.chrome.Attach(c.ui.Surface, c.ui.Overlay)
		if err := c.ui.Surface.Start(c.ctx); err != nil {
			c.logger.Warn("render surface not started", "error", err)
		}
		c.AdvanceTo(StateCameraRunning)
		c.chrome.DismissLoading()
	case StateCameraRunning:
		c.setCamera(true)
	case StateCameraStopped:
		c.setCamera(false)
	}
}

func (c *Controller) initApp() {
	c.chrome.ShowLoading(LoadingText)

	textures, err := c.textures.LoadOrdered()
	if err != nil {
		c.logger.Warn("some textures failed to load", "error", err)
	}
	c.loaded = texture.Set(textures)
	c.logger.Info("textures loaded", "slots", len(c.loaded), "loaded", c.loaded.Loaded())

	size, err := c.screen.Size()
	if err != nil || !size.Valid() {
		c.logger.Warn("screen size unavailable, using default", "error", err, "size", size.String())
		size = display.DefaultSize
	}
	c.size = size
}

func (c *Controller) launchEngineInit() {
	host := hostContext(append(texture.Set(nil), c.loaded...))
	poll := task.PollFunc(func() int { return c.engine.Init(host) })
	c.launch(StageEngineInit, poll, c.onEngineInit)
}

func (c *Controller) onEngineInit(res task.Result) {
	if c.state != StateInitEngine {
		c.logger.Warn("engine init result in unexpected state", "state", c.state.String())
		return
	}
	if res.Succeeded {
		c.AdvanceTo(StateInitAR)
		return
	}
	c.showFatal(engine.ClassifyInitFailure(res.LastProgress))
}

// showFatal shows the fatal dialog for err; acknowledging it exits with 1.
// Errors not written for users get the generic reason.
func (c *Controller) showFatal(err error) {
	var initErr *errors.InitError
	if !errors.As(err, &initErr) || !errors.IsUserFacing(err) {
		initErr = errors.NewInitError(errors.InitCauseGeneric, engine.InitGenericFailure)
	}
	c.fatal = initErr
	c.logger.Error("engine initialization failed", "error", err, "severity", errors.GetSeverity(err).String())
	c.publish(event.NewFatalInitEvent(initErr.Cause.String(), initErr.Code, initErr.Reason()))
	c.chrome.ShowFatal(initErr.Reason(), func() { c.exit(1) })
}

func (c *Controller) initAR() error {
	h := engine.NewHandle(c.engine)
	if err := h.CreateSession(c.size.Width, c.size.Height); err != nil {
		return err
	}
	c.handle = h
	c.logger = c.logger.WithSession(h.ID())

	ui, err := c.views(h)
	if err != nil {
		return errors.Wrap(err, "building views")
	}
	if ui.Surface == nil || ui.Overlay == nil {
		return errors.New("view factory returned incomplete views")
	}
	c.ui = ui
	return nil
}

func (c *Controller) launchTrackerLoad() {
	c.launch(StageTrackerLoad, task.PollFunc(c.handle.LoadData), c.onTrackerLoad)
}

func (c *Controller) onTrackerLoad(res task.Result) {
	if c.state != StateInitTracker {
		c.logger.Warn("tracker load result in unexpected state", "state", c.state.String())
		return
	}
	if res.Succeeded {
		c.logger.Info("tracking data loaded", "polls", res.Polls)
	} else {
		c.logger.Warn("tracking data not loaded, continuing", "last_progress", res.LastProgress)
	}
	c.AdvanceTo(StateInited)
}

// launch starts a staged task. Results that arrive after Destroy or for a
// cancelled task never reach done.
func (c *Controller) launch(stage string, t task.StagedTask, done func(task.Result)) {
	h, err := c.tasks.Launch(c.ctx, stage, t, func(res task.Result) {
		delete(c.inflight, stage)
		c.publish(event.NewTaskFinishedEvent(stage, res.Succeeded, res.Cancelled, res.LastProgress, res.Elapsed))
		if c.destroyed || res.Cancelled {
			c.logger.WithStage(stage).Debug("task result ignored", "destroyed", c.destroyed, "cancelled", res.Cancelled)
			return
		}
		done(res)
	})
	if err != nil {
		c.stalled, c.stallErr = true, err
		c.logger.WithStage(stage).Error("staged task not started, lifecycle stalled",
			"state", c.state.String(), "error", err,
			"severity", errors.GetSeverity(err).String(), "retryable", errors.IsRetryable(err))
		c.publish(event.NewStageStalledEvent(c.state.String(), stage, err))
		return
	}
	c.inflight[stage] = h
}

// Retry re-runs the entry action of a stalled asynchronous state. It
// reports whether a retry was attempted; a stall whose launch error is not
// retryable stays stalled.
func (c *Controller) Retry() bool {
	if !c.stalled || c.destroyed {
		return false
	}
	if !errors.IsRetryable(c.stallErr) {
		c.logger.Warn("stalled stage cannot be retried", "state", c.state.String(), "error", c.stallErr)
		return false
	}
	c.logger.Info("retrying stalled stage", "state", c.state.String())
	c.stalled, c.stallErr = false, nil
	switch c.state {
	case StateInitEngine:
		c.launchEngineInit()
	case StateInitTracker:
		c.launchTrackerLoad()
	default:
		return false
	}
	return true
}

func (c *Controller) setCamera(running bool) {
	var err error
	if running {
		err = c.handle.StartCamera()
	} else {
		err = c.handle.StopCamera()
	}
	if err != nil {
		c.logger.Warn("camera toggle failed", "running", running, "error", err)
	}
	c.publish(event.NewCameraEvent(running, err))
}

// Pause is the external pause signal.
func (c *Controller) Pause() {
	if c.destroyed {
		return
	}
	if c.ui.Surface != nil {
		c.ui.Surface.Pause()
	}
	c.engine.OnPause()
	if c.state == StateCameraRunning {
		c.AdvanceTo(StateCameraStopped)
	}
}

// Resume is the external resume signal.
func (c *Controller) Resume() {
	if c.destroyed {
		return
	}
	c.engine.OnResume()
	if c.state == StateCameraStopped {
		c.AdvanceTo(StateCameraRunning)
	}
	if c.ui.Surface != nil {
		c.ui.Surface.Resume()
	}
}

// Destroy tears the application down: in-flight tasks are cancelled, the
// render surface is stopped, the engine is torn down and its session
// released. Calling Destroy again does nothing.
func (c *Controller) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true

	cancelled := 0
	for stage, h := range c.inflight {
		if !h.Finished() {
			cancelled++
		}
		h.Cancel()
		delete(c.inflight, stage)
	}
	c.cancel()

	if c.ui.Surface != nil {
		c.ui.Surface.Stop()
	}
	if c.ui.Bridge != nil {
		if dropped := c.ui.Bridge.Close(); dropped > 0 {
			c.logger.Debug("pending ui messages discarded", "count", dropped)
		}
	}

	sessionID := ""
	if c.handle != nil {
		sessionID = c.handle.ID()
		if err := c.handle.Teardown(); err != nil {
			c.logger.Warn("engine teardown skipped", "error", err)
		}
		c.loaded = nil
		c.handle.Release()
	} else {
		c.engine.Teardown()
		c.loaded = nil
		c.engine.Deinit()
	}
	c.gc()

	c.logger.Info("application destroyed", "cancelled_tasks", cancelled, "state", c.state.String())
	c.publish(event.NewTeardownEvent(cancelled, sessionID))
}

// Touch forwards a pointer event while the engine session is live.
func (c *Controller) Touch(action engine.TouchAction, x, y float32) {
	if c.handle == nil || !c.handle.Live() {
		c.logger.Debug("touch dropped, no live engine session", "action", action.String())
		return
	}
	if err := c.handle.Touch(action, x, y); err != nil {
		c.logger.Debug("touch dropped", "error", err)
	}
}

func (c *Controller) publish(e event.Event) {
	if c.bus != nil {
		c.bus.Publish(e)
	}
}

// hostContext is the read-only texture view handed to the engine worker.
// It is a snapshot so Destroy can clear the controller's textures while a
// cancelled worker is still polling.
type hostContext texture.Set

func (h hostContext) TextureCount() int { return len(h) }

func (h hostContext) Texture(i int) *texture.Texture { return texture.Set(h).At(i) }
