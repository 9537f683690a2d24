package looper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func startLooper(t *testing.T) (*Looper, func()) {
	t.Helper()
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.Run(ctx)
	}()
	return l, func() {
		cancel()
		<-done
	}
}

func TestLooper_FIFO(t *testing.T) {
	l, stop := startLooper(t)
	defer stop()

	var got []int
	for i := range 100 {
		l.Post(func() { got = append(got, i) })
	}
	// Sync runs after everything posted before it.
	if !l.Sync(func() {}) {
		t.Fatal("Sync() = false, want true")
	}

	if len(got) != 100 {
		t.Fatalf("ran %d functions, want 100", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("got[%d] = %d, functions ran out of order", i, v)
		}
	}
}

func TestLooper_PerProducerOrder(t *testing.T) {
	l, stop := startLooper(t)
	defer stop()

	const producers, perProducer = 8, 200
	seen := make(map[int][]int)

	var wg sync.WaitGroup
	for p := range producers {
		wg.Go(func() {
			for i := range perProducer {
				l.Post(func() { seen[p] = append(seen[p], i) })
			}
		})
	}
	wg.Wait()
	l.Sync(func() {})

	for p := range producers {
		if len(seen[p]) != perProducer {
			t.Fatalf("producer %d: %d functions ran, want %d", p, len(seen[p]), perProducer)
		}
		for i, v := range seen[p] {
			if v != i {
				t.Fatalf("producer %d: position %d holds %d", p, i, v)
			}
		}
	}
}

func TestLooper_PostAfterStop(t *testing.T) {
	l := New()
	if dropped := l.Stop(); dropped != 0 {
		t.Errorf("Stop() = %d, want 0", dropped)
	}
	if l.Post(func() {}) {
		t.Error("Post() after Stop = true, want false")
	}
	if l.Sync(func() {}) {
		t.Error("Sync() after Stop = true, want false")
	}
	if l.Post(nil) {
		t.Error("Post(nil) = true, want false")
	}
	if !l.Stopped() {
		t.Error("Stopped() = false after Stop")
	}
}

func TestLooper_StopDiscardsPending(t *testing.T) {
	l := New()
	ran := false
	l.Post(func() { ran = true })
	l.Post(func() { ran = true })

	if got := l.Pending(); got != 2 {
		t.Fatalf("Pending() = %d, want 2", got)
	}
	if dropped := l.Stop(); dropped != 2 {
		t.Errorf("Stop() = %d, want 2", dropped)
	}
	if dropped := l.Stop(); dropped != 0 {
		t.Errorf("second Stop() = %d, want 0", dropped)
	}

	if err := l.Run(context.Background()); err != nil {
		t.Errorf("Run() after Stop = %v, want nil", err)
	}
	if ran {
		t.Error("discarded function ran")
	}
	select {
	case <-l.Done():
	default:
		t.Error("Done() not closed after Stop")
	}
}

func TestLooper_RunReturnsContextError(t *testing.T) {
	l := New()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := l.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() = %v, want deadline exceeded", err)
	}
	if !l.Stopped() {
		t.Error("looper should be stopped once its context ends")
	}
}

func TestLooper_StopFromPostedFunction(t *testing.T) {
	l := New()
	l.Post(func() { l.Stop() })
	l.Post(func() { t.Error("function after Stop ran") })

	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}
