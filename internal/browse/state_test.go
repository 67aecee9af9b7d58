package browse

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"
)

// TestWaitBounds tests sampling and backoff of the pause range.
func TestWaitBounds(t *testing.T) {
	t.Parallel()

	t.Run("samples stay in range", func(t *testing.T) {
		t.Parallel()

		w := NewWaitBounds(5*time.Second, 10*time.Second)
		rng := rand.New(rand.NewPCG(3, 4))
		for range 1000 {
			d := w.Sample(rng)
			if d < 5*time.Second || d >= 10*time.Second {
				t.Fatalf("sample %v outside [5s, 10s)", d)
			}
		}
	})

	t.Run("empty range yields the minimum", func(t *testing.T) {
		t.Parallel()

		w := NewWaitBounds(time.Second, time.Second)
		if d := w.Sample(rand.New(rand.NewPCG(1, 1))); d != time.Second {
			t.Errorf("expected 1s, got %v", d)
		}
	})

	t.Run("increase never shrinks", func(t *testing.T) {
		t.Parallel()

		w := NewWaitBounds(5*time.Second, 10*time.Second)
		w.Increase(10 * time.Second)
		w.Increase(-time.Hour)
		minWait, maxWait := w.Increase(0)
		if minWait != 15*time.Second || maxWait != 20*time.Second {
			t.Errorf("got [%v, %v), want [15s, 20s)", minWait, maxWait)
		}
	})
}

// TestMeter tests counter updates under concurrent use.
func TestMeter(t *testing.T) {
	t.Parallel()

	var m Meter
	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status := statusOK
			if i%4 == 0 {
				status = 500
			}
			m.record(status, 10)
		}()
	}
	wg.Wait()

	got := m.Snapshot()
	if got.Bytes != 1000 || got.Good != 75 || got.Bad != 25 || got.Requests() != 100 {
		t.Errorf("unexpected snapshot %+v", got)
	}
}
