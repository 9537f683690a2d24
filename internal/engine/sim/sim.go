// Package sim provides a scripted stand-in for the native engine.
//
// Bring-up and data loading follow configurable progress scripts: each poll
// returns the next value and the last value repeats forever. Every boundary
// call is recorded so tests can assert on order and counts.
//
// On top of that, a small two-player demo game drives the overlay the way
// the native game logic would: button clicks change game state on the UI
// thread, and the resulting UI messages are emitted from RenderFrame on the
// render goroutine.
package sim

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/Iron-Ham/invisiboga/internal/engine"
	"github.com/Iron-Ham/invisiboga/internal/logging"
	"github.com/Iron-Ham/invisiboga/internal/uibridge"
)

// Recorded call names.
const (
	CallInit          = "init"
	CallLoadData      = "load_data"
	CallCreateSession = "create_session"
	CallPostInit      = "post_init"
	CallStartCamera   = "start_camera"
	CallStopCamera    = "stop_camera"
	CallTouch         = "touch"
	CallNext          = "next_button"
	CallDice          = "dice_button"
	CallRestart       = "restart"
	CallOnPause       = "on_pause"
	CallOnResume      = "on_resume"
	CallTeardown      = "teardown"
	CallDeinit        = "deinit"
)

// BoardSize is the number of spaces on the demo board. Space 0 is the
// start, the last space is the target.
const BoardSize = 20

// Player colours as ARGB.
var playerColors = [][4]int{
	{255, 52, 152, 219},
	{255, 231, 76, 60},
}

// Engine is a scripted engine.Boundary.
type Engine struct {
	logger    *logging.Logger
	stepDelay time.Duration

	mu         sync.Mutex
	initScript []int
	loadScript []int
	initPolls  int
	loadPolls  int
	calls      []string
	touches    []Touch
	width      int
	height     int
	textures   int
	cameraOn   bool
	paused     bool
	frames     int

	rng      *rand.Rand
	player   int
	position [2]int
	winner   int // -1 while playing
	pending  []uibridge.Message
}

// Touch is a recorded pointer event.
type Touch struct {
	Action engine.TouchAction
	X, Y   float32
}

// Option configures an Engine.
type Option func(*Engine)

// WithInitScript sets the progress values returned by successive Init polls.
func WithInitScript(values ...int) Option {
	return func(e *Engine) { e.initScript = slices.Clone(values) }
}

// WithLoadScript sets the progress values returned by successive LoadData polls.
func WithLoadScript(values ...int) Option {
	return func(e *Engine) { e.loadScript = slices.Clone(values) }
}

// WithStepDelay makes every poll take d.
func WithStepDelay(d time.Duration) Option {
	return func(e *Engine) { e.stepDelay = d }
}

// WithSeed makes dice rolls deterministic.
func WithSeed(seed uint64) Option {
	return func(e *Engine) { e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Engine. Without scripts both stages complete on the first
// poll.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger: logging.NopLogger(),
		winner: -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if len(e.initScript) == 0 {
		e.initScript = []int{100}
	}
	if len(e.loadScript) == 0 {
		e.loadScript = []int{100}
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 1))
	}
	return e
}

var _ engine.Boundary = (*Engine)(nil)

func scriptValue(script []int, poll int) int {
	return script[min(poll, len(script))-1]
}

func (e *Engine) record(call string) {
	e.calls = append(e.calls, call)
}

func (e *Engine) sleep() {
	if e.stepDelay > 0 {
		time.Sleep(e.stepDelay)
	}
}

// Init implements engine.Boundary.
func (e *Engine) Init(host engine.HostContext) int {
	e.sleep()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.initPolls++
	if e.initPolls == 1 {
		e.record(CallInit)
		if host != nil {
			e.textures = host.TextureCount()
		}
	}
	return scriptValue(e.initScript, e.initPolls)
}

// LoadData implements engine.Boundary.
func (e *Engine) LoadData() int {
	e.sleep()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.loadPolls++
	if e.loadPolls == 1 {
		e.record(CallLoadData)
	}
	return scriptValue(e.loadScript, e.loadPolls)
}

// CreateSession implements engine.Boundary.
func (e *Engine) CreateSession(width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record(CallCreateSession)
	e.width, e.height = width, height
}

// PostInit implements engine.Boundary. It sets up the first turn.
func (e *Engine) PostInit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record(CallPostInit)
	e.resetGame()
}

// StartCamera implements engine.Boundary.
func (e *Engine) StartCamera() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record(CallStartCamera)
	e.cameraOn = true
}

// StopCamera implements engine.Boundary.
func (e *Engine) StopCamera() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record(CallStopCamera)
	e.cameraOn = false
}

// Touch implements engine.Boundary.
func (e *Engine) Touch(action engine.TouchAction, x, y float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record(CallTouch)
	e.touches = append(e.touches, Touch{Action: action, X: x, Y: y})
}

// RenderFrame implements engine.Boundary. Frames are only produced while
// the camera runs and the engine is not paused; queued UI messages are
// flushed in order.
func (e *Engine) RenderFrame(ui uibridge.Sender) error {
	e.mu.Lock()
	if !e.cameraOn || e.paused {
		e.mu.Unlock()
		return nil
	}
	e.frames++
	out := e.pending
	e.pending = nil
	e.mu.Unlock()

	for _, msg := range out {
		ui.Send(msg)
	}
	return nil
}

// DiceButtonClick implements engine.Boundary. It rolls for the current
// player and moves their token.
func (e *Engine) DiceButtonClick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record(CallDice)

	if e.winner >= 0 {
		return
	}

	roll := e.rng.IntN(6) + 1
	p := e.player
	e.position[p] = min(e.position[p]+roll, BoardSize-1)
	e.logger.Debug("dice rolled", "player", p+1, "roll", roll, "position", e.position[p])

	e.queue(uibridge.ShowToast{
		Text:     fmt.Sprintf("Player %d rolled %d (space %d)", p+1, roll, e.position[p]),
		Duration: uibridge.ToastShort,
	})

	if e.position[p] == BoardSize-1 {
		e.winner = p
		e.queue(
			uibridge.ShowToast{Text: fmt.Sprintf("Player %d wins!", p+1), Duration: uibridge.ToastLong},
			uibridge.HideView{Name: uibridge.ViewDiceButton},
			uibridge.HideView{Name: uibridge.ViewNextButton},
			uibridge.ShowView{Name: uibridge.ViewRestartButton},
		)
		return
	}
	e.queue(uibridge.ShowView{Name: uibridge.ViewNextButton})
}

// NextButtonClick implements engine.Boundary. It passes the turn.
func (e *Engine) NextButtonClick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record(CallNext)

	if e.winner >= 0 {
		return
	}
	e.player = (e.player + 1) % len(e.position)
	e.queueTurn()
}

// Restart implements engine.Boundary.
func (e *Engine) Restart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record(CallRestart)
	e.resetGame()
}

// OnPause implements engine.Boundary.
func (e *Engine) OnPause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record(CallOnPause)
	e.paused = true
}

// OnResume implements engine.Boundary.
func (e *Engine) OnResume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record(CallOnResume)
	e.paused = false
}

// Teardown implements engine.Boundary.
func (e *Engine) Teardown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record(CallTeardown)
	e.pending = nil
}

// Deinit implements engine.Boundary.
func (e *Engine) Deinit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record(CallDeinit)
	e.cameraOn = false
}

// resetGame must be called with e.mu held.
func (e *Engine) resetGame() {
	e.player = 0
	e.position = [2]int{}
	e.winner = -1
	e.queue(
		uibridge.ShowView{Name: uibridge.ViewRestartButton},
		uibridge.ShowView{Name: uibridge.ViewPlayerText},
	)
	e.queueTurn()
}

// queueTurn must be called with e.mu held.
func (e *Engine) queueTurn() {
	c := playerColors[e.player]
	e.queue(
		uibridge.SetPlayerText{Text: fmt.Sprintf("Player %d", e.player+1)},
		uibridge.SetPlayerTextColor{Alpha: c[0], Red: c[1], Green: c[2], Blue: c[3]},
		uibridge.ShowView{Name: uibridge.ViewDiceButton},
	)
}

func (e *Engine) queue(msgs ...uibridge.Message) {
	e.pending = append(e.pending, msgs...)
}

// Calls returns the recorded boundary calls in order. Init and LoadData
// are recorded on their first poll only.
func (e *Engine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.calls)
}

// CallCount returns how many times call was recorded.
func (e *Engine) CallCount(call string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for _, c := range e.calls {
		if c == call {
			n++
		}
	}
	return n
}

// Polls returns how many times Init and LoadData were polled.
func (e *Engine) Polls() (initPolls, loadPolls int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initPolls, e.loadPolls
}

// Touches returns the recorded pointer events.
func (e *Engine) Touches() []Touch {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.touches)
}

// Session returns the size passed to CreateSession and the texture count
// seen during Init.
func (e *Engine) Session() (width, height, textures int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.width, e.height, e.textures
}

// CameraOn reports whether the camera is running.
func (e *Engine) CameraOn() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cameraOn
}

// Frames returns the number of frames rendered.
func (e *Engine) Frames() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

// Positions returns each player's board position and the current player.
func (e *Engine) Positions() (positions [2]int, current int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position, e.player
}
