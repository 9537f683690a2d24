/*
Package metrics provides Prometheus collectors for the application shell.

# Overview

Metrics are registered on a private registry owned by each Metrics value, so
tests and multiple shells in one process never collide on the default
registry.

Tracked series:

  - invisiboga_lifecycle_transitions_total{from,to}
  - invisiboga_lifecycle_state (gauge holding the ordinal of the current state)
  - invisiboga_task_results_total{stage,outcome}
  - invisiboga_task_duration_seconds{stage}
  - invisiboga_bridge_messages_total{kind}
  - invisiboga_bridge_dropped_total
  - invisiboga_render_frames_total / invisiboga_render_frame_errors_total

# Nil Safety

Every recording method is safe to call on a nil *Metrics, which lets
components treat metrics as optional without guarding each call.

# Metrics Endpoint

	m := metrics.New()
	http.Handle("/metrics", m.Handler())
*/
package metrics
