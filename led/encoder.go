package led

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ResetDuration is the minimum time the data line must idle after a frame
// for the strip to latch it.
const ResetDuration = 100 * time.Microsecond

// Encoder serializes LEDs into a byte sink. It owns the sink: every write
// to the strip goes through Flush or FlushFrame, so the latch window after
// a frame can never be violated.
type Encoder struct {
	mu    sync.Mutex
	w     io.Writer
	frame []byte
	sleep func(time.Duration)
}

// NewEncoder creates a new encoder writing frames to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:     w,
		frame: make([]byte, 0, 3*NumCells),
		sleep: time.Sleep,
	}
}

// SetSleep replaces the function used to hold the latch window. It is meant
// for tests and for targets with their own delay primitive.
func (e *Encoder) SetSleep(sleep func(time.Duration)) {
	e.mu.Lock()
	e.sleep = sleep
	e.mu.Unlock()
}

// Flush writes the whole strip to the sink in a single write, then holds
// the encoder for ResetDuration. The hold applies even if the write fails,
// since a partial frame still needs the latch before the next one.
func (e *Encoder) Flush(l LEDs) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.frame = AppendGRB(e.frame[:0], l)
	return e.write(e.frame)
}

// FlushFrame is like Flush, but takes a frame that is already in wire
// order, such as the payload of a ledserial Set packet.
func (e *Encoder) FlushFrame(frame []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.write(frame)
}

func (e *Encoder) write(frame []byte) error {
	_, err := e.w.Write(frame)
	e.sleep(ResetDuration)

	if err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}
