package client

import (
	"sync"
	"testing"
	"time"
)

func TestDebouncedBurstCommitsFinalValueOnce(t *testing.T) {
	var mu sync.Mutex
	var commits []string
	d := NewDebounced("", 30*time.Millisecond, func(v string) {
		mu.Lock()
		commits = append(commits, v)
		mu.Unlock()
	})

	// Keystroke burst well inside the quiet window.
	for _, v := range []string{"p", "pa", "par", "park"} {
		d.Set(v)
		time.Sleep(5 * time.Millisecond)
	}

	if got := d.Raw(); got != "park" {
		t.Fatalf("Raw = %q, want park", got)
	}
	if got := d.Committed(); got != "" {
		t.Fatalf("Committed = %q before the window elapsed, want empty", got)
	}

	waitFor(t, func() bool { return d.Committed() == "park" })

	time.Sleep(60 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if len(commits) != 1 || commits[0] != "park" {
		t.Fatalf("commits = %v, want exactly [park]", commits)
	}
}

func TestDebouncedPausesCommitSeparately(t *testing.T) {
	var mu sync.Mutex
	var commits []string
	d := NewDebounced("", 20*time.Millisecond, func(v string) {
		mu.Lock()
		commits = append(commits, v)
		mu.Unlock()
	})

	d.Set("pa")
	waitFor(t, func() bool { return d.Committed() == "pa" })
	d.Set("park")
	waitFor(t, func() bool { return d.Committed() == "park" })

	mu.Lock()
	defer mu.Unlock()
	if len(commits) != 2 {
		t.Fatalf("commits = %v, want [pa park]", commits)
	}
}

func TestDebouncedFlushCommitsImmediately(t *testing.T) {
	d := NewDebounced("", time.Hour, nil)
	d.Set("park")
	d.Flush()
	if got := d.Committed(); got != "park" {
		t.Fatalf("Committed = %q after Flush, want park", got)
	}
}

func TestDebouncedStaleTimerDoesNotCommitEarly(t *testing.T) {
	d := NewDebounced("", time.Hour, nil)

	// A timer from the first Set that fires after the second Set has taken
	// the lock is a stale generation; it must not commit the new raw value
	// with no quiet time.
	d.Set("pa")
	d.Set("park")
	d.commit(1)

	if got := d.Committed(); got != "" {
		t.Fatalf("Committed = %q after stale timer, want empty", got)
	}

	d.commit(2)
	if got := d.Committed(); got != "park" {
		t.Fatalf("Committed = %q after current timer, want park", got)
	}
}

func TestDebouncedStopDiscardsPendingValue(t *testing.T) {
	d := NewDebounced("", 20*time.Millisecond, nil)
	d.Set("park")
	d.Stop()
	time.Sleep(50 * time.Millisecond)
	if got := d.Committed(); got != "" {
		t.Fatalf("Committed = %q after Stop, want empty", got)
	}
	if got := d.Raw(); got != "park" {
		t.Fatalf("Raw = %q, want park", got)
	}
}
