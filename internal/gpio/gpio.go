// Package gpio connects the buttons and the heartbeat LED through the Linux
// GPIO character device.
package gpio

import (
	"time"

	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"
	"libdb.so/digitglow/state"
)

const consumer = "digitglow"

// Handler receives debounce-ready edges: the button and the monotonic
// timestamp of the edge in milliseconds.
type Handler func(b state.Button, nowMs uint32)

// Lines maps line offsets to buttons.
type Lines map[int]state.Button

// Offsets returns the line offsets in button order.
func (l Lines) Offsets() []int {
	offsets := make([]int, 0, len(l))
	for b := state.ButtonA; b <= state.ButtonReset; b++ {
		for offset, lb := range l {
			if lb == b {
				offsets = append(offsets, offset)
			}
		}
	}
	return offsets
}

// EventHandler adapts h to a gpiocdev event handler. Events from unknown
// lines and rising edges are dropped. The kernel timestamps events with
// CLOCK_MONOTONIC, which counts from boot.
func (l Lines) EventHandler(h Handler) gpiocdev.EventHandler {
	return func(evt gpiocdev.LineEvent) {
		if evt.Type != gpiocdev.LineEventFallingEdge {
			return
		}
		b, ok := l[evt.Offset]
		if !ok {
			return
		}
		h(b, Millis(evt.Timestamp))
	}
}

// Millis converts a monotonic timestamp to wrapping milliseconds.
func Millis(ts time.Duration) uint32 {
	return uint32(ts / time.Millisecond)
}

// Buttons is a set of requested button lines.
type Buttons struct {
	lines *gpiocdev.Lines
}

// RequestButtons requests the lines as pulled-up inputs with falling-edge
// detection. gpiocdev delivers all events of one request from a single
// goroutine, in order, so h is never called concurrently with itself.
func RequestButtons(chip string, lines Lines, h Handler) (*Buttons, error) {
	req, err := gpiocdev.RequestLines(chip, lines.Offsets(),
		gpiocdev.WithConsumer(consumer),
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(lines.EventHandler(h)),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to request button lines on %s", chip)
	}
	return &Buttons{lines: req}, nil
}

// Close releases the lines.
func (b *Buttons) Close() error {
	return b.lines.Close()
}

// Output is a single output line.
type Output struct {
	line *gpiocdev.Line
}

// RequestOutput requests the line as an output, initially low.
func RequestOutput(chip string, offset int) (*Output, error) {
	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.WithConsumer(consumer),
		gpiocdev.AsOutput(0),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to request output line %d on %s", offset, chip)
	}
	return &Output{line: line}, nil
}

// Set drives the line high or low.
func (o *Output) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	return o.line.SetValue(v)
}

// Close releases the line.
func (o *Output) Close() error {
	return o.line.Close()
}
