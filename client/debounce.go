package client

import (
	"sync"
	"time"
)

// Debounced holds a rapidly-changing value and commits it only after a quiet
// window with no updates. Every Set cancels and restarts the window, so a
// burst of updates commits exactly the final value once.
type Debounced[T any] struct {
	mu        sync.Mutex
	delay     time.Duration
	raw       T
	committed T
	timer     *time.Timer
	gen       uint64
	onCommit  func(T)
}

// NewDebounced constructs a Debounced with both raw and committed values set
// to initial. onCommit, when non-nil, fires after each commit; it runs on
// the timer goroutine and must not block.
func NewDebounced[T any](initial T, delay time.Duration, onCommit func(T)) *Debounced[T] {
	return &Debounced[T]{
		delay:     delay,
		raw:       initial,
		committed: initial,
		onCommit:  onCommit,
	}
}

// Set records a new raw value immediately and restarts the quiet window.
// The generation counter invalidates a timer that already fired but has not
// yet taken the lock; Stop alone cannot cancel that one.
func (d *Debounced[T]) Set(v T) {
	d.mu.Lock()
	d.raw = v
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.commit(gen) })
	d.mu.Unlock()
}

// Raw returns the latest value, committed or not. UIs render this one.
func (d *Debounced[T]) Raw() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.raw
}

// Committed returns the last value that survived a full quiet window.
// Queries key off this one.
func (d *Debounced[T]) Committed() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.committed
}

// Flush commits the raw value immediately, cancelling any pending window.
func (d *Debounced[T]) Flush() {
	d.mu.Lock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.committed = d.raw
	v := d.committed
	fire := d.onCommit
	d.mu.Unlock()

	if fire != nil {
		fire(v)
	}
}

// Stop cancels any pending commit without committing.
func (d *Debounced[T]) Stop() {
	d.mu.Lock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
}

func (d *Debounced[T]) commit(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		// A newer Set, Flush, or Stop superseded this window.
		d.mu.Unlock()
		return
	}
	d.committed = d.raw
	v := d.committed
	fire := d.onCommit
	d.mu.Unlock()

	if fire != nil {
		fire(v)
	}
}
