package task

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Iron-Ham/invisiboga/internal/errors"
	"github.com/Iron-Ham/invisiboga/internal/logging"
	"github.com/Iron-Ham/invisiboga/internal/looper"
	"github.com/Iron-Ham/invisiboga/internal/metrics"
)

// scriptTask returns values in order and repeats the last one forever.
type scriptTask struct {
	mu     sync.Mutex
	values []int
	calls  int
	onPoll func(step int)
}

func (s *scriptTask) Poll() int {
	s.mu.Lock()
	s.calls++
	step := s.calls
	v := s.values[min(step, len(s.values))-1]
	hook := s.onPoll
	s.mu.Unlock()

	if hook != nil {
		hook(step)
	}
	return v
}

func (s *scriptTask) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// recordingPoster queues posted functions so the test can run them as the
// UI thread would.
type recordingPoster struct {
	mu     sync.Mutex
	fns    []func()
	refuse bool
}

func (p *recordingPoster) Post(fn func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.refuse {
		return false
	}
	p.fns = append(p.fns, fn)
	return true
}

func (p *recordingPoster) runAll() int {
	p.mu.Lock()
	fns := p.fns
	p.fns = nil
	p.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

func waitDone(t *testing.T, h *Handle) Result {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("task %q did not finish", h.Name())
	}
	res, ok := h.Result()
	if !ok {
		t.Fatal("Result() not available after Done")
	}
	return res
}

func TestRunner_Termination(t *testing.T) {
	tests := []struct {
		name          string
		script        []int
		wantSucceeded bool
		wantLast      int
		wantPolls     int
	}{
		{"immediate success", []int{100}, true, 100, 1},
		{"progress then success", []int{0, 20, 45, 70, 100}, true, 100, 5},
		{"immediate failure", []int{-1}, false, -1, 1},
		{"failure after progress", []int{10, 30, -2}, false, -2, 3},
		{"no network code", []int{-3}, false, -3, 1},
		{"overshoot counts as complete", []int{50, 150}, true, 150, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			poster := &recordingPoster{}
			runner := NewRunner(poster)
			defer runner.Close()

			var results []Result
			h, err := runner.Launch(context.Background(), "stage", &scriptTask{values: tt.script}, func(r Result) {
				results = append(results, r)
			})
			if err != nil {
				t.Fatalf("Launch() error = %v", err)
			}
			waitDone(t, h)
			runner.Close()

			// Running the posted work twice must still deliver once.
			poster.runAll()
			poster.runAll()

			if len(results) != 1 {
				t.Fatalf("delivered %d results, want exactly 1", len(results))
			}
			res := results[0]
			if res.Succeeded != tt.wantSucceeded {
				t.Errorf("Succeeded = %v, want %v", res.Succeeded, tt.wantSucceeded)
			}
			if res.LastProgress != tt.wantLast {
				t.Errorf("LastProgress = %d, want %d", res.LastProgress, tt.wantLast)
			}
			if res.Polls != tt.wantPolls {
				t.Errorf("Polls = %d, want %d", res.Polls, tt.wantPolls)
			}
			if res.Cancelled {
				t.Error("Cancelled = true for an uncancelled task")
			}
			if res.Name != "stage" {
				t.Errorf("Name = %q, want stage", res.Name)
			}
			if !h.Delivered() {
				t.Error("Delivered() = false after callback ran")
			}
		})
	}
}

func TestRunner_CancellationAtStepK(t *testing.T) {
	for _, k := range []int{1, 2, 5, 17} {
		t.Run("", func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			st := &scriptTask{values: []int{0, 10, 50, 99}}
			st.onPoll = func(step int) {
				if step == k {
					cancel()
				}
			}

			poster := &recordingPoster{}
			runner := NewRunner(poster)
			h, err := runner.Launch(ctx, "forever", st, func(Result) {})
			if err != nil {
				t.Fatalf("Launch() error = %v", err)
			}
			res := waitDone(t, h)
			runner.Close()

			if !res.Cancelled {
				t.Error("Cancelled = false, want true")
			}
			if res.Succeeded {
				t.Error("Succeeded = true for a cancelled task")
			}
			if res.Polls < k {
				t.Errorf("terminated after %d polls, before the cancel at step %d", res.Polls, k)
			}
			if res.Outcome() != metrics.OutcomeCancelled {
				t.Errorf("Outcome() = %q, want cancelled", res.Outcome())
			}
		})
	}
}

func TestRunner_CancelledCompletionIsNotSuccess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The final poll reports completion but the cancel lands during it.
	st := &scriptTask{values: []int{100}, onPoll: func(int) { cancel() }}

	runner := NewRunner(&recordingPoster{})
	defer runner.Close()

	h, err := runner.Launch(ctx, "racy", st, func(Result) {})
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	res := waitDone(t, h)

	if res.Succeeded || !res.Cancelled {
		t.Errorf("got Succeeded=%v Cancelled=%v, want false/true", res.Succeeded, res.Cancelled)
	}
}

func TestRunner_HandleCancel(t *testing.T) {
	runner := NewRunner(&recordingPoster{})
	defer runner.Close()

	started := make(chan struct{})
	var once sync.Once
	st := &scriptTask{values: []int{1}, onPoll: func(int) {
		once.Do(func() { close(started) })
		time.Sleep(time.Millisecond)
	}}

	h, err := runner.Launch(context.Background(), "spin", st, func(Result) {})
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	<-started
	h.Cancel()

	res := waitDone(t, h)
	if !res.Cancelled {
		t.Error("Cancelled = false after Handle.Cancel")
	}
}

func TestRunner_PanicBecomesFailure(t *testing.T) {
	var buf bytes.Buffer
	runner := NewRunner(&recordingPoster{}, WithLogger(logging.NewWriterLogger(&buf, logging.LevelError)))
	defer runner.Close()

	h, err := runner.Launch(context.Background(), "boom", PollFunc(func() int {
		panic("native crash")
	}), func(Result) {})
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	res := waitDone(t, h)

	if res.Succeeded {
		t.Error("Succeeded = true after panic")
	}
	if res.LastProgress != ProgressFailed {
		t.Errorf("LastProgress = %d, want %d", res.LastProgress, ProgressFailed)
	}
	if res.Err == nil || !strings.Contains(res.Err.Error(), "native crash") {
		t.Errorf("Err = %v, want recovered panic", res.Err)
	}
	if res.Outcome() != metrics.OutcomePanicked {
		t.Errorf("Outcome() = %q, want panicked", res.Outcome())
	}
	if !strings.Contains(buf.String(), "staged task panicked") {
		t.Errorf("panic was not logged: %s", buf.String())
	}
}

func TestRunner_LaunchErrors(t *testing.T) {
	runner := NewRunner(&recordingPoster{})

	if _, err := runner.Launch(context.Background(), "nil-task", nil, func(Result) {}); !errors.Is(err, errors.ErrLaunchFailed) {
		t.Errorf("nil task: err = %v, want ErrLaunchFailed", err)
	}
	if _, err := runner.Launch(context.Background(), "nil-done", PollFunc(func() int { return 100 }), nil); !errors.Is(err, errors.ErrLaunchFailed) {
		t.Errorf("nil callback: err = %v, want ErrLaunchFailed", err)
	}

	runner.Close()
	runner.Close()

	_, err := runner.Launch(context.Background(), "late", PollFunc(func() int { return 100 }), func(Result) {})
	if !errors.Is(err, errors.ErrRunnerClosed) {
		t.Fatalf("err = %v, want ErrRunnerClosed", err)
	}
	var launchErr *errors.LaunchError
	if !errors.As(err, &launchErr) {
		t.Fatalf("err = %T, want *errors.LaunchError", err)
	}
	if launchErr.Stage != "late" {
		t.Errorf("Stage = %q, want late", launchErr.Stage)
	}
}

func TestRunner_DroppedWhenUIThreadGone(t *testing.T) {
	var buf bytes.Buffer
	poster := &recordingPoster{refuse: true}
	runner := NewRunner(poster, WithLogger(logging.NewWriterLogger(&buf, logging.LevelWarn)))

	called := false
	h, err := runner.Launch(context.Background(), "orphan", PollFunc(func() int { return 100 }), func(Result) {
		called = true
	})
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	waitDone(t, h)
	runner.Close()

	if called {
		t.Error("callback ran although the poster refused it")
	}
	if h.Delivered() {
		t.Error("Delivered() = true for a dropped result")
	}
	if !strings.Contains(buf.String(), "result dropped") {
		t.Errorf("drop was not logged: %s", buf.String())
	}
}

func TestRunner_CancelAllAndClose(t *testing.T) {
	runner := NewRunner(&recordingPoster{})

	var started sync.WaitGroup
	started.Add(3)
	for range 3 {
		var once sync.Once
		st := &scriptTask{values: []int{5}, onPoll: func(int) {
			once.Do(started.Done)
			time.Sleep(time.Millisecond)
		}}
		if _, err := runner.Launch(context.Background(), "spin", st, func(Result) {}); err != nil {
			t.Fatalf("Launch() error = %v", err)
		}
	}
	started.Wait()

	if got := runner.Active(); got != 3 {
		t.Fatalf("Active() = %d, want 3", got)
	}
	if got := runner.CancelAll(); got != 3 {
		t.Errorf("CancelAll() = %d, want 3", got)
	}

	runner.Close()
	if got := runner.Active(); got != 0 {
		t.Errorf("Active() after Close = %d, want 0", got)
	}
}

func TestRunner_DeliversOnLooper(t *testing.T) {
	l := looper.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = l.Run(ctx) }()

	m := metrics.New()
	runner := NewRunner(l, WithMetrics(m))
	defer runner.Close()

	var delivered atomic.Int32
	got := make(chan Result, 1)
	_, err := runner.Launch(ctx, "engine-init", &scriptTask{values: []int{0, 20, 45, 70, 100}}, func(r Result) {
		delivered.Add(1)
		got <- r
	})
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}

	select {
	case res := <-got:
		if !res.Succeeded {
			t.Errorf("Succeeded = false, want true")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("result was not delivered on the looper")
	}

	l.Sync(func() {})
	if delivered.Load() != 1 {
		t.Errorf("delivered %d times, want 1", delivered.Load())
	}
	if snap := m.Snapshot(); snap.TasksFinished != 1 {
		t.Errorf("TasksFinished = %d, want 1", snap.TasksFinished)
	}
}

func TestNewRunner_NilPosterPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewRunner(nil) did not panic")
		}
	}()
	NewRunner(nil)
}
