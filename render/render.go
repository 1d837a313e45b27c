// Package render draws the counter onto the LED matrix and runs the
// cooperative main loop.
package render

import (
	"context"
	"time"

	"libdb.so/digitglow/glyph"
	"libdb.so/digitglow/led"
	"libdb.so/digitglow/state"
)

// Task is one timer-gated behavior of the main loop.
type Task interface {
	// Tick runs the task against the loop's time sample for this
	// iteration.
	Tick(now time.Duration) error
}

// Renderer redraws the matrix whenever the redraw flag is raised.
type Renderer struct {
	shared  *state.Shared
	leds    led.LEDs
	encoder *led.Encoder

	// OnFlush, if set, is called with the digit after every successful
	// flush.
	OnFlush func(glyph.Digit)
}

var _ Task = (*Renderer)(nil)

// NewRenderer creates a renderer that owns a fresh pixel buffer.
func NewRenderer(shared *state.Shared, encoder *led.Encoder) *Renderer {
	return &Renderer{
		shared:  shared,
		leds:    led.NewLEDs(led.NumCells),
		encoder: encoder,
	}
}

// LEDs returns the pixel buffer. It must only be read between ticks.
func (r *Renderer) LEDs() led.LEDs {
	return r.leds
}

// Draw unconditionally renders the current digit and flushes it.
func (r *Renderer) Draw() error {
	d := r.shared.Counter.Value()

	r.leds.Clear()
	glyph.For(d).Draw(r.leds)

	if err := r.encoder.Flush(r.leds); err != nil {
		return err
	}
	if r.OnFlush != nil {
		r.OnFlush(d)
	}
	return nil
}

// Tick consumes the redraw flag and draws if it was raised.
func (r *Renderer) Tick(time.Duration) error {
	if !r.shared.Redraw.Take() {
		return nil
	}
	return r.Draw()
}

// Output is a boolean output such as an indicator LED.
type Output interface {
	Set(on bool) error
}

// HeartbeatInterval is the default toggle interval of the heartbeat LED.
const HeartbeatInterval = 100 * time.Millisecond

// Heartbeat toggles an output every Interval.
type Heartbeat struct {
	out      Output
	interval time.Duration
	last     time.Duration
	on       bool
}

var _ Task = (*Heartbeat)(nil)

// NewHeartbeat creates a heartbeat on out. The output starts off.
func NewHeartbeat(out Output, interval time.Duration) *Heartbeat {
	return &Heartbeat{out: out, interval: interval}
}

// Tick toggles the output if at least the interval has passed since the
// last toggle.
func (h *Heartbeat) Tick(now time.Duration) error {
	if now-h.last < h.interval {
		return nil
	}
	h.on = !h.on
	h.last = now
	return h.out.Set(h.on)
}

// Scheduler is a single-threaded loop that samples the clock once per
// iteration and hands the sample to every task.
type Scheduler struct {
	tasks []Task
	now   func() time.Duration
}

// NewScheduler creates a scheduler. The clock is the time elapsed since the
// scheduler was created unless replaced with SetClock.
func NewScheduler(tasks ...Task) *Scheduler {
	start := time.Now()
	return &Scheduler{
		tasks: tasks,
		now:   func() time.Duration { return time.Since(start) },
	}
}

// SetClock replaces the scheduler's clock.
func (s *Scheduler) SetClock(now func() time.Duration) {
	s.now = now
}

// Step runs one iteration. Every task runs even if an earlier one fails; the
// first error is returned.
func (s *Scheduler) Step() error {
	now := s.now()

	var firstErr error
	for _, t := range s.tasks {
		if err := t.Tick(now); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Run steps the scheduler every poll interval until ctx is canceled or a
// task fails.
func (s *Scheduler) Run(ctx context.Context, poll time.Duration) error {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		if err := s.Step(); err != nil {
			// Outputs fail once shutdown closes them; report the cancellation.
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
