package configurator

import (
	"sync"
	"time"

	"github.com/gitshopapp/merchconfig/internal/pricing"
)

const DefaultQuantityDelay = 100 * time.Millisecond

// Debouncer delays commit until no value has been pushed for the configured
// delay. Push never blocks, and the most recently pushed value always wins.
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	value   T
	pending bool
	stopped bool
	gen     uint64

	commitMu  sync.Mutex
	committed uint64
	commit    func(T)
}

func NewDebouncer[T any](delay time.Duration, commit func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, commit: commit}
}

func (d *Debouncer[T]) Push(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.value = value
	d.pending = true
	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(gen)
	})
}

// Flush commits the pending value now, if any.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if !d.pending || d.stopped {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	value, gen := d.value, d.gen
	d.pending = false
	d.mu.Unlock()

	d.run(gen, value)
}

// Stop drops any pending value. Pushes after Stop are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || !d.pending || gen != d.gen {
		d.mu.Unlock()
		return
	}
	value := d.value
	d.pending = false
	d.mu.Unlock()

	d.run(gen, value)
}

// run serializes commits so an older value can never land after a newer one.
func (d *Debouncer[T]) run(gen uint64, value T) {
	d.commitMu.Lock()
	defer d.commitMu.Unlock()
	if gen <= d.committed {
		return
	}
	d.committed = gen
	d.commit(value)
}

// QuantityInput debounces free-text quantity edits into the store.
func (c *Controller) QuantityInput(delay time.Duration) *Debouncer[string] {
	if delay <= 0 {
		delay = DefaultQuantityDelay
	}
	return NewDebouncer(delay, func(raw string) {
		c.store.SetQuantity(pricing.ClampQuantity(raw))
	})
}
