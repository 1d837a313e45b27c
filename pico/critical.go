package pico

import (
	"io"
	"runtime/interrupt"
)

// CriticalWriter writes to W with interrupts disabled, so that the strip's
// bit timing cannot be stretched by a button interrupt.
type CriticalWriter struct {
	W io.Writer
}

func (c CriticalWriter) Write(b []byte) (n int, err error) {
	state := interrupt.Disable()
	n, err = c.W.Write(b)
	interrupt.Restore(state)
	return n, err
}
