package styles

import (
	"strings"
	"testing"
)

func TestStateColor(t *testing.T) {
	tests := []struct {
		state    string
		expected string // Expected color hex value
	}{
		{"camera_running", "#10B981"},
		{"camera_stopped", "#60A5FA"},
		{"init_engine", "#F59E0B"},
		{"init_tracker", "#F59E0B"},
		{"inited", "#F59E0B"},
		{"stalled", "#F87171"},
		{"fatal", "#F87171"},
		{"uninited", "#9CA3AF"},
		{"unknown", "#9CA3AF"}, // falls back to Dim
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			got := StateColor(tt.state)
			if string(got) != tt.expected {
				t.Errorf("StateColor(%q) = %q, want %q", tt.state, got, tt.expected)
			}
		})
	}
}

func TestStateIcon(t *testing.T) {
	tests := []struct {
		state    string
		expected string
	}{
		{"camera_running", "●"},
		{"camera_stopped", "⏸"},
		{"init_ar", "◌"},
		{"inited", "✓"},
		{"stalled", "⏱"},
		{"fatal", "✗"},
		{"unknown", "○"}, // Should fall back to default
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			if got := StateIcon(tt.state); got != tt.expected {
				t.Errorf("StateIcon(%q) = %q, want %q", tt.state, got, tt.expected)
			}
		})
	}
}

func TestStateBadge(t *testing.T) {
	got := StateBadge("camera_running")
	if !strings.Contains(got, "camera_running") || !strings.Contains(got, "●") {
		t.Errorf("StateBadge() = %q", got)
	}
}

func TestARGB(t *testing.T) {
	tests := []struct {
		a, r, g, b int
		want       string
	}{
		{255, 52, 152, 219, "#3498DB"},
		{255, 231, 76, 60, "#E74C3C"},
		{0, -5, 300, 16, "#00FF10"},
	}

	for _, tt := range tests {
		if got := ARGB(tt.a, tt.r, tt.g, tt.b); string(got) != tt.want {
			t.Errorf("ARGB(%d,%d,%d,%d) = %q, want %q", tt.a, tt.r, tt.g, tt.b, got, tt.want)
		}
	}
}
