package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/trafficgen/internal/history"
	"github.com/nao1215/trafficgen/internal/model"
)

// seedHistory records n runs, one hour apart, in a new ledger under a
// temporary directory and returns the directory.
func seedHistory(t *testing.T, n int) string {
	t.Helper()

	dir := t.TempDir()
	store, err := history.Open(dir, history.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range n {
		run := &model.RunSummary{
			StartedAt:    start.Add(time.Duration(i) * time.Hour),
			EndedAt:      start.Add(time.Duration(i)*time.Hour + 30*time.Minute),
			Egress:       "direct",
			RootURLs:     3,
			Sessions:     int64(10 + i),
			Hops:         int64(40 + i),
			Bytes:        1_000_000,
			GoodRequests: 30,
			BadRequests:  int64(i),
			FinalMinWait: 5 * time.Second,
			FinalMaxWait: 10 * time.Second,
		}
		if _, err := store.SaveRun(t.Context(), run); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
	}
	return dir
}

func executeHistory(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewHistoryCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// TestHistoryCmd tests listing recorded runs.
func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("missing ledger", func(t *testing.T) {
		t.Parallel()

		out, err := executeHistory(t, "--dir", t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "No runs recorded.") {
			t.Errorf("expected empty history message, got %q", out)
		}
	})

	t.Run("text output with totals", func(t *testing.T) {
		t.Parallel()

		out, err := executeHistory(t, "--dir", seedHistory(t, 3))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"#1", "#2", "#3", "3 runs in total", "3.0 MB received"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
		if strings.Index(out, "#3") > strings.Index(out, "#1") {
			t.Errorf("expected newest run first, got:\n%s", out)
		}
	})

	t.Run("json output honours limit", func(t *testing.T) {
		t.Parallel()

		out, err := executeHistory(t, "--dir", seedHistory(t, 3), "--json", "--limit", "2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var runs []model.RunSummary
		if err := json.Unmarshal([]byte(out), &runs); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
		if runs[0].ID != 3 || runs[1].ID != 2 {
			t.Errorf("expected runs 3 and 2, got %d and %d", runs[0].ID, runs[1].ID)
		}
	})

	t.Run("single run in markdown", func(t *testing.T) {
		t.Parallel()

		out, err := executeHistory(t, "--dir", seedHistory(t, 2), "--markdown", "--id", "2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "# Traffic Generator Run") {
			t.Errorf("expected markdown run heading, got:\n%s", out)
		}
	})

	t.Run("unknown run id", func(t *testing.T) {
		t.Parallel()

		_, err := executeHistory(t, "--dir", seedHistory(t, 1), "--id", "42")
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("json and markdown are exclusive", func(t *testing.T) {
		t.Parallel()

		_, err := executeHistory(t, "--dir", t.TempDir(), "--json", "--markdown")
		if err == nil {
			t.Fatal("expected error")
		}
	})
}
