package model

import (
	"testing"
	"time"
)

// TestRunSummary tests derived values.
func TestRunSummary(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("duration", func(t *testing.T) {
		t.Parallel()

		r := &RunSummary{StartedAt: start, EndedAt: start.Add(90 * time.Second)}
		if got := r.Duration(); got != 90*time.Second {
			t.Errorf("Duration() = %v, want 1m30s", got)
		}

		r.EndedAt = start.Add(-time.Second)
		if got := r.Duration(); got != 0 {
			t.Errorf("Duration() = %v, want 0 for an inverted range", got)
		}
	})

	t.Run("requests and success rate", func(t *testing.T) {
		t.Parallel()

		r := &RunSummary{GoodRequests: 3, BadRequests: 1}
		if r.Requests() != 4 {
			t.Errorf("Requests() = %d, want 4", r.Requests())
		}
		if r.SuccessRate() != 75 {
			t.Errorf("SuccessRate() = %v, want 75", r.SuccessRate())
		}
		if (&RunSummary{}).SuccessRate() != 0 {
			t.Error("SuccessRate() with no requests must be 0")
		}
	})
}
