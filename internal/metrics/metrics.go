package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "invisiboga"

// Task outcome label values.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
	OutcomePanicked  = "panicked"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	Transitions  *prometheus.CounterVec
	CurrentState prometheus.Gauge

	TaskResults  *prometheus.CounterVec
	TaskDuration *prometheus.HistogramVec

	BridgeMessages *prometheus.CounterVec
	BridgeDropped  prometheus.Counter

	Frames      prometheus.Counter
	FrameErrors prometheus.Counter

	mu       sync.RWMutex
	snapshot Snapshot
}

// Snapshot holds plain counts mirrored from the collectors for status
// output and tests.
type Snapshot struct {
	Transitions    int64
	TasksFinished  int64
	BridgeApplied  int64
	BridgeDropped  int64
	Frames         int64
	FrameErrors    int64
	LastTransition string
}

// New creates a Metrics with its own registry. Go runtime and process
// collectors are registered alongside the application series.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lifecycle_transitions_total",
				Help:      "Total number of lifecycle state transitions",
			},
			[]string{"from", "to"},
		),
		CurrentState: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "lifecycle_state",
				Help:      "Ordinal of the current lifecycle state",
			},
		),

		TaskResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "task_results_total",
				Help:      "Total number of staged task results by outcome",
			},
			[]string{"stage", "outcome"},
		),
		TaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "task_duration_seconds",
				Help:      "Staged task duration in seconds",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"stage"},
		),

		BridgeMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bridge_messages_total",
				Help:      "Total number of UI messages applied on the UI thread",
			},
			[]string{"kind"},
		),
		BridgeDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bridge_dropped_total",
				Help:      "Total number of UI messages discarded at teardown",
			},
		),

		Frames: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "render_frames_total",
				Help:      "Total number of frames rendered",
			},
		),
		FrameErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "render_frame_errors_total",
				Help:      "Total number of frames that returned an error",
			},
		),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler returns an HTTP handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordTransition records a lifecycle state change.
func (m *Metrics) RecordTransition(from, to string, ordinal int) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(from, to).Inc()
	m.CurrentState.Set(float64(ordinal))

	m.mu.Lock()
	m.snapshot.Transitions++
	m.snapshot.LastTransition = from + "->" + to
	m.mu.Unlock()
}

// RecordTask records a finished staged task.
func (m *Metrics) RecordTask(stage, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.TaskResults.WithLabelValues(stage, outcome).Inc()
	m.TaskDuration.WithLabelValues(stage).Observe(elapsed.Seconds())

	m.mu.Lock()
	m.snapshot.TasksFinished++
	m.mu.Unlock()
}

// RecordBridgeApplied records one UI message applied on the UI thread.
func (m *Metrics) RecordBridgeApplied(kind string) {
	if m == nil {
		return
	}
	m.BridgeMessages.WithLabelValues(kind).Inc()

	m.mu.Lock()
	m.snapshot.BridgeApplied++
	m.mu.Unlock()
}

// RecordBridgeDropped records UI messages discarded at teardown.
func (m *Metrics) RecordBridgeDropped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.BridgeDropped.Add(float64(n))

	m.mu.Lock()
	m.snapshot.BridgeDropped += int64(n)
	m.mu.Unlock()
}

// RecordFrame records one rendered frame.
func (m *Metrics) RecordFrame(err error) {
	if m == nil {
		return
	}
	m.Frames.Inc()
	if err != nil {
		m.FrameErrors.Inc()
	}

	m.mu.Lock()
	m.snapshot.Frames++
	if err != nil {
		m.snapshot.FrameErrors++
	}
	m.mu.Unlock()
}

// Snapshot returns a copy of the current counts.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
