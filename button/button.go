// Package button turns button edges into counter transitions.
package button

import (
	"fmt"

	"libdb.so/digitglow/state"
)

// Result is the outcome of handling one edge.
type Result uint8

const (
	// Rejected means the edge arrived inside the debounce window.
	Rejected Result = iota
	// Clamped means the edge was accepted but the counter was already at
	// its bound, so nothing needs redrawing.
	Clamped
	// Changed means the counter moved and a redraw was requested.
	Changed
	// Reset means the update-mode collaborator was invoked.
	Reset
)

func (r Result) String() string {
	switch r {
	case Rejected:
		return "rejected"
	case Clamped:
		return "clamped"
	case Changed:
		return "changed"
	case Reset:
		return "reset"
	default:
		return fmt.Sprintf("Result(%d)", r)
	}
}

// Resetter enters firmware update mode. EnterUpdateMode is not expected to
// return.
type Resetter interface {
	EnterUpdateMode()
}

// ResetterFunc is a function that implements Resetter.
type ResetterFunc func()

// EnterUpdateMode calls f.
func (f ResetterFunc) EnterUpdateMode() { f() }

// Observer is notified of every handled edge. It is called from the same
// context as Handle and must not block.
type Observer interface {
	Observe(b state.Button, r Result)
}

// Dispatcher is the edge handler. Handle must not be called concurrently
// with itself; edges are expected to be delivered one at a time, like
// non-reentrant interrupts.
type Dispatcher struct {
	shared   *state.Shared
	resetter Resetter
	observer Observer
}

// NewDispatcher creates a new dispatcher. observer may be nil.
func NewDispatcher(shared *state.Shared, resetter Resetter, observer Observer) *Dispatcher {
	return &Dispatcher{
		shared:   shared,
		resetter: resetter,
		observer: observer,
	}
}

// Handle processes one falling edge of b observed at nowMs.
func (d *Dispatcher) Handle(b state.Button, nowMs uint32) Result {
	r := d.transition(b, nowMs)
	if d.observer != nil {
		d.observer.Observe(b, r)
	}
	return r
}

func (d *Dispatcher) transition(b state.Button, nowMs uint32) Result {
	if b == state.ButtonReset {
		d.resetter.EnterUpdateMode()
		return Reset
	}

	if !d.shared.Gate.TryAccept(b, nowMs) {
		return Rejected
	}

	var changed bool
	switch b {
	case state.ButtonA:
		changed = d.shared.Counter.Increment()
	case state.ButtonB:
		changed = d.shared.Counter.Decrement()
	default:
		return Rejected
	}
	if !changed {
		return Clamped
	}

	d.shared.Redraw.Set()
	return Changed
}
