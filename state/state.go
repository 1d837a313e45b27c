// Package state holds the data shared between the button handler, which runs
// in interrupt context, and the render loop. Every field is a single atomic
// word with exactly one writing context, so no locks are needed and every
// operation is safe to call from an interrupt handler.
package state

import (
	"fmt"
	"sync/atomic"
	"time"

	"libdb.so/digitglow/glyph"
)

// Button identifies the source of an edge.
type Button uint8

const (
	// ButtonA increments the counter.
	ButtonA Button = iota
	// ButtonB decrements the counter.
	ButtonB
	// ButtonReset is the joystick press that enters update mode.
	ButtonReset
)

// numDebounced is the number of buttons tracked by the Gate. ButtonReset is
// never debounced.
const numDebounced = 2

func (b Button) String() string {
	switch b {
	case ButtonA:
		return "a"
	case ButtonB:
		return "b"
	case ButtonReset:
		return "reset"
	default:
		return fmt.Sprintf("Button(%d)", b)
	}
}

// DebounceInterval is the default minimum time between two accepted edges
// of the same button.
const DebounceInterval = 500 * time.Millisecond

// Gate rejects edges that arrive too soon after the last accepted edge of
// the same button. Timestamps are monotonic milliseconds that may wrap.
type Gate struct {
	last     [numDebounced]atomic.Uint32
	interval uint32
}

// NewGate creates a gate with the given interval. Last-accepted timestamps
// start at 0, so an edge arriving less than interval after boot is rejected.
func NewGate(interval time.Duration) *Gate {
	return &Gate{interval: uint32(interval / time.Millisecond)}
}

// Interval returns the debounce interval.
func (g *Gate) Interval() time.Duration {
	return time.Duration(g.interval) * time.Millisecond
}

// TryAccept returns true and records nowMs if at least the interval has
// elapsed since the last accepted edge of b. Otherwise it returns false and
// leaves the gate unchanged. Buttons the gate does not track are always
// accepted.
func (g *Gate) TryAccept(b Button, nowMs uint32) bool {
	if int(b) >= numDebounced {
		return true
	}
	last := &g.last[b]
	if nowMs-last.Load() < g.interval {
		return false
	}
	last.Store(nowMs)
	return true
}

// Counter is a digit clamped to 0 through 9.
type Counter struct {
	v atomic.Uint32
}

// Value returns the current digit.
func (c *Counter) Value() glyph.Digit {
	return glyph.Digit(c.v.Load())
}

// Increment raises the counter by one unless it is already 9. It returns
// true if the value changed.
func (c *Counter) Increment() bool {
	v := c.v.Load()
	if v >= uint32(glyph.MaxDigit) {
		return false
	}
	c.v.Store(v + 1)
	return true
}

// Decrement lowers the counter by one unless it is already 0. It returns
// true if the value changed.
func (c *Counter) Decrement() bool {
	v := c.v.Load()
	if v == 0 {
		return false
	}
	c.v.Store(v - 1)
	return true
}

// Flag is the redraw handshake between the button handler and the render
// loop.
type Flag struct {
	b atomic.Bool
}

// Set raises the flag.
func (f *Flag) Set() { f.b.Store(true) }

// Pending reports whether the flag is raised without consuming it.
func (f *Flag) Pending() bool { return f.b.Load() }

// Take lowers the flag and returns whether it was raised. A Set racing with
// Take is either observed by this Take or left for the next one.
func (f *Flag) Take() bool { return f.b.Swap(false) }

// Shared is the state owned for the lifetime of the process and passed by
// pointer to both the button handler and the render loop.
type Shared struct {
	Gate    *Gate
	Counter Counter
	Redraw  Flag
}

// NewShared creates the power-on state: digit 0, no pending redraw and
// zeroed debounce timestamps.
func NewShared(debounce time.Duration) *Shared {
	return &Shared{Gate: NewGate(debounce)}
}
