// Package dropdown implements the hover-driven visibility state machine
// shared by the cart and brand dropdown panels. Pure :hover styling
// cannot bridge the visual gap between a trigger control and its panel;
// the close delay is the minimal stateful fix that keeps the panel open
// while the pointer crosses that gap.
package dropdown

import (
	"sync"
	"time"
)

// DefaultCloseDelay is the debounce window between the pointer leaving
// and the panel actually closing.
const DefaultCloseDelay = 200 * time.Millisecond

// State is the panel visibility state.
type State string

const (
	StateClosed  State = "closed"
	StateOpen    State = "open"
	StateClosing State = "closing"
)

// Timer is the pending close timer handle. *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules fn after d and returns its cancellation handle.
type AfterFunc func(d time.Duration, fn func()) Timer

// Visibility drives one dropdown panel. Each instance owns at most one
// pending close timer, cancelled on every transition out of StateClosing
// and on Close, so no timer outlives its panel.
type Visibility struct {
	mu         sync.Mutex
	state      State
	closeDelay time.Duration
	afterFunc  AfterFunc
	onChange   func(State)
	pending    Timer
	generation int
}

// Option configures a Visibility.
type Option func(*Visibility)

// WithCloseDelay overrides the debounce window.
func WithCloseDelay(delay time.Duration) Option {
	return func(v *Visibility) {
		v.closeDelay = delay
	}
}

// WithAfterFunc replaces the timer scheduler (primarily for testing).
func WithAfterFunc(afterFunc AfterFunc) Option {
	return func(v *Visibility) {
		v.afterFunc = afterFunc
	}
}

// WithOnChange registers a callback invoked after every state change.
func WithOnChange(fn func(State)) Option {
	return func(v *Visibility) {
		v.onChange = fn
	}
}

// New creates a closed panel.
func New(options ...Option) *Visibility {
	v := &Visibility{
		state:      StateClosed,
		closeDelay: DefaultCloseDelay,
		afterFunc: func(d time.Duration, fn func()) Timer {
			return time.AfterFunc(d, fn)
		},
	}
	for _, opt := range options {
		opt(v)
	}
	return v
}

// State returns the current visibility state.
func (v *Visibility) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Open reports whether the panel is visible. A closing panel is still
// visible until its timer fires.
func (v *Visibility) Open() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state == StateOpen || v.state == StateClosing
}

// PointerEnter cancels any pending close and opens the panel immediately.
// Re-entering during the debounce window keeps the panel open without it
// ever flashing closed.
func (v *Visibility) PointerEnter() {
	v.mu.Lock()
	v.cancelPending()
	changed := v.state != StateOpen
	v.state = StateOpen
	v.mu.Unlock()

	if changed {
		v.notify(StateOpen)
	}
}

// PointerLeave arms the close timer. The panel stays visible until the
// debounce window elapses without a re-enter.
func (v *Visibility) PointerLeave() {
	v.mu.Lock()
	if v.state != StateOpen {
		v.mu.Unlock()
		return
	}

	v.cancelPending()
	v.state = StateClosing
	v.generation++
	generation := v.generation
	v.pending = v.afterFunc(v.closeDelay, func() {
		v.expire(generation)
	})
	v.mu.Unlock()

	v.notify(StateClosing)
}

// Close force-closes the panel and cancels the pending timer. Call on
// unmount so no timer fires into a view that no longer exists.
func (v *Visibility) Close() {
	v.mu.Lock()
	v.cancelPending()
	changed := v.state != StateClosed
	v.state = StateClosed
	v.mu.Unlock()

	if changed {
		v.notify(StateClosed)
	}
}

// expire completes a close when its timer fires. A stale generation means
// the close was cancelled after the timer was already committed to run.
func (v *Visibility) expire(generation int) {
	v.mu.Lock()
	if v.state != StateClosing || v.generation != generation {
		v.mu.Unlock()
		return
	}
	v.state = StateClosed
	v.pending = nil
	v.mu.Unlock()

	v.notify(StateClosed)
}

// cancelPending stops the pending close timer. Callers must hold the lock.
func (v *Visibility) cancelPending() {
	if v.pending != nil {
		v.pending.Stop()
		v.pending = nil
	}
	v.generation++
}

func (v *Visibility) notify(state State) {
	if v.onChange != nil {
		v.onChange(state)
	}
}
