package usecase

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/qkart/storefront/internal/infrastructure/metrics"
)

// DefaultSearchDebounce is the quiet period before a search request fires
const DefaultSearchDebounce = 500 * time.Millisecond

// Scheduler runs f after d and returns a function that cancels it.
// The cancel function reports whether f was prevented from starting.
type Scheduler func(d time.Duration, f func()) (cancel func() bool)

// AfterFunc is the Scheduler backed by time.AfterFunc
func AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Debouncer holds at most one pending action. Each Trigger cancels the
// pending one and schedules a new one after the delay.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	schedule Scheduler
	action   func(text string)
	cancel   func() bool
	gen      uint64
}

// NewDebouncer creates a debouncer that calls action with the latest text
// once delay has passed without another Trigger.
func NewDebouncer(delay time.Duration, schedule Scheduler, action func(text string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultSearchDebounce
	}
	if schedule == nil {
		schedule = AfterFunc
	}
	return &Debouncer{
		delay:    delay,
		schedule: schedule,
		action:   action,
	}
}

// Trigger cancels any pending action and schedules action(text)
func (d *Debouncer) Trigger(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
		metrics.RecordSearchEvent("superseded")
	}
	d.gen++
	gen := d.gen
	d.cancel = d.schedule(d.delay, func() { d.fire(gen, text) })
	metrics.RecordSearchEvent("scheduled")
}

// Stop cancels the pending action, if any
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.gen++
}

// Pending reports whether an action is scheduled and has not fired
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel != nil
}

// fire runs the action unless it was superseded after the timer had
// already started.
func (d *Debouncer) fire(gen uint64, text string) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.cancel = nil
	d.mu.Unlock()

	metrics.RecordSearchEvent("fired")
	d.action(text)
}

// Sequencer numbers outgoing requests so that only the response to the
// most recently issued one is applied.
type Sequencer struct {
	latest atomic.Uint64
}

// Next issues a new sequence number
func (s *Sequencer) Next() uint64 {
	return s.latest.Add(1)
}

// IsLatest reports whether seq is the most recently issued number
func (s *Sequencer) IsLatest(seq uint64) bool {
	return s.latest.Load() == seq
}
