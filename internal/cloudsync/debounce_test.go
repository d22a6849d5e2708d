package cloudsync

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerTrailingEdge(t *testing.T) {
	var fired atomic.Int32
	d := NewDebouncer(40*time.Millisecond, func() { fired.Add(1) })
	defer d.Stop()

	// A burst of calls collapses into one firing after the interval.
	for i := 0; i < 5; i++ {
		d.Call()
		time.Sleep(5 * time.Millisecond)
	}
	if got := fired.Load(); got != 0 {
		t.Fatalf("fired during burst: %d", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for fired.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := fired.Load(); got != 1 {
		t.Fatalf("fired %d times, want 1", got)
	}
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	var fired atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func() { fired.Add(1) })
	d.Call()
	d.Stop()

	time.Sleep(100 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Fatalf("fired %d times after stop", got)
	}
}
