package render

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"libdb.so/digitglow/button"
	"libdb.so/digitglow/glyph"
	"libdb.so/digitglow/led"
	"libdb.so/digitglow/state"
)

type frameSink struct {
	frames  [][]byte
	err     error
	onWrite func()
}

func (s *frameSink) Write(b []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.frames = append(s.frames, append([]byte(nil), b...))
	if s.onWrite != nil {
		s.onWrite()
	}
	return len(b), nil
}

func newTestRenderer(shared *state.Shared, sink *frameSink) *Renderer {
	enc := led.NewEncoder(sink)
	enc.SetSleep(func(time.Duration) {})
	return NewRenderer(shared, enc)
}

func expectedFrame(d glyph.Digit) []byte {
	leds := led.NewLEDs(led.NumCells)
	glyph.For(d).Draw(leds)
	return led.AppendGRB(nil, leds)
}

func TestRendererIdempotent(t *testing.T) {
	var sink frameSink
	r := newTestRenderer(state.NewShared(state.DebounceInterval), &sink)

	if err := r.Draw(); err != nil {
		t.Fatal(err)
	}
	first := append(led.LEDs(nil), r.LEDs()...)

	if err := r.Draw(); err != nil {
		t.Fatal(err)
	}

	for i := range first {
		if first[i] != r.LEDs()[i] {
			t.Fatalf("cell %d differs between draws: %v != %v", i, first[i], r.LEDs()[i])
		}
	}
	if !bytes.Equal(sink.frames[0], sink.frames[1]) {
		t.Fatal("frames differ between draws")
	}
}

func TestRendererClearsPreviousGlyph(t *testing.T) {
	var sink frameSink
	shared := state.NewShared(state.DebounceInterval)
	r := newTestRenderer(shared, &sink)

	for i := 0; i < 8; i++ {
		shared.Counter.Increment()
	}
	r.Draw()

	for shared.Counter.Value() > 1 {
		shared.Counter.Decrement()
	}
	r.Draw()

	if !bytes.Equal(sink.frames[1], expectedFrame(1)) {
		t.Fatal("cells of digit 8 leaked into the frame of digit 1")
	}
}

func TestEndToEnd(t *testing.T) {
	var sink frameSink
	shared := state.NewShared(state.DebounceInterval)
	r := newTestRenderer(shared, &sink)
	d := button.NewDispatcher(shared, nil, nil)

	var flushed []glyph.Digit
	r.OnFlush = func(d glyph.Digit) { flushed = append(flushed, d) }

	sched := NewScheduler(r)
	var now time.Duration
	sched.SetClock(func() time.Duration { return now })

	if err := r.Draw(); err != nil {
		t.Fatal(err)
	}

	edges := []state.Button{state.ButtonA, state.ButtonA, state.ButtonB}
	for i, b := range edges {
		d.Handle(b, uint32(1000*(i+1)))
		now += time.Millisecond
		if err := sched.Step(); err != nil {
			t.Fatal(err)
		}
		// No further redraw without a new transition.
		if err := sched.Step(); err != nil {
			t.Fatal(err)
		}
	}

	if got := shared.Counter.Value(); got != 1 {
		t.Fatalf("final digit = %d, want 1", got)
	}

	want := []glyph.Digit{0, 1, 2, 1}
	if len(flushed) != len(want) {
		t.Fatalf("flushed digits = %v, want %v", flushed, want)
	}
	for i, d := range want {
		if flushed[i] != d {
			t.Fatalf("flushed digits = %v, want %v", flushed, want)
		}
		if !bytes.Equal(sink.frames[i], expectedFrame(d)) {
			t.Errorf("frame %d does not show digit %d", i, d)
		}
	}
}

func TestBoundaryAtNine(t *testing.T) {
	var sink frameSink
	shared := state.NewShared(state.DebounceInterval)
	for i := 0; i < 9; i++ {
		shared.Counter.Increment()
	}

	r := newTestRenderer(shared, &sink)
	d := button.NewDispatcher(shared, nil, nil)

	if err := r.Draw(); err != nil {
		t.Fatal(err)
	}

	if got := d.Handle(state.ButtonA, 1000); got != button.Clamped {
		t.Fatalf("result = %v, want clamped", got)
	}
	if shared.Redraw.Pending() {
		t.Fatal("redraw flag set by an ignored increment")
	}

	if err := r.Tick(0); err != nil {
		t.Fatal(err)
	}
	if len(sink.frames) != 1 {
		t.Fatalf("%d flushes, want only the initial draw", len(sink.frames))
	}
	if shared.Counter.Value() != 9 {
		t.Fatalf("digit = %d, want 9", shared.Counter.Value())
	}
}

func TestRendererFlushError(t *testing.T) {
	errSink := errors.New("unplugged")
	sink := frameSink{err: errSink}
	shared := state.NewShared(state.DebounceInterval)
	r := newTestRenderer(shared, &sink)

	called := false
	r.OnFlush = func(glyph.Digit) { called = true }

	shared.Redraw.Set()
	if err := r.Tick(0); !errors.Is(err, errSink) {
		t.Fatalf("Tick error = %v, want %v", err, errSink)
	}
	if called {
		t.Fatal("OnFlush called after a failed flush")
	}
}

func TestRendererSetDuringDraw(t *testing.T) {
	var sink frameSink
	shared := state.NewShared(state.DebounceInterval)
	r := newTestRenderer(shared, &sink)

	// An edge lands while the first frame is on the wire.
	sink.onWrite = func() {
		sink.onWrite = nil
		shared.Counter.Increment()
		shared.Redraw.Set()
	}

	shared.Redraw.Set()
	if err := r.Tick(0); err != nil {
		t.Fatal(err)
	}
	if err := r.Tick(time.Millisecond); err != nil {
		t.Fatal(err)
	}

	if len(sink.frames) != 2 {
		t.Fatalf("flushes = %d, want 2", len(sink.frames))
	}
	if !bytes.Equal(sink.frames[1], expectedFrame(1)) {
		t.Fatal("second frame does not show 1")
	}
	if shared.Redraw.Pending() {
		t.Fatal("redraw still pending after the second flush")
	}
}

type fakeOutput struct {
	states []bool
}

func (o *fakeOutput) Set(on bool) error {
	o.states = append(o.states, on)
	return nil
}

func TestHeartbeat(t *testing.T) {
	var out fakeOutput
	h := NewHeartbeat(&out, HeartbeatInterval)

	for _, ms := range []int{0, 50, 99, 100, 150, 199, 200, 350} {
		if err := h.Tick(time.Duration(ms) * time.Millisecond); err != nil {
			t.Fatal(err)
		}
	}

	want := []bool{true, false, true}
	if len(out.states) != len(want) {
		t.Fatalf("states = %v, want %v", out.states, want)
	}
	for i := range want {
		if out.states[i] != want[i] {
			t.Fatalf("states = %v, want %v", out.states, want)
		}
	}
}

type sampleTask struct {
	samples []time.Duration
	err     error
}

func (s *sampleTask) Tick(now time.Duration) error {
	s.samples = append(s.samples, now)
	return s.err
}

func TestSchedulerSingleSample(t *testing.T) {
	a := &sampleTask{err: errors.New("first")}
	b := &sampleTask{}

	sched := NewScheduler(a, b)
	calls := 0
	sched.SetClock(func() time.Duration {
		calls++
		return time.Duration(calls) * time.Second
	})

	if err := sched.Step(); err == nil || err.Error() != "first" {
		t.Fatalf("Step error = %v, want first", err)
	}

	if calls != 1 {
		t.Fatalf("clock read %d times in one iteration", calls)
	}
	if len(b.samples) != 1 || b.samples[0] != a.samples[0] {
		t.Fatalf("tasks saw different samples: %v, %v", a.samples, b.samples)
	}
}

func TestSchedulerRunCanceled(t *testing.T) {
	task := &sampleTask{}
	sched := NewScheduler(task)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sched.Run(ctx, time.Millisecond); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
	if len(task.samples) == 0 {
		t.Fatal("task never ran")
	}
}

func TestSchedulerRunErrorAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The output is torn down by the same shutdown that cancels ctx.
	task := taskFunc(func(time.Duration) error {
		cancel()
		return errors.New("failed to write frame: file already closed")
	})

	if err := NewScheduler(task).Run(ctx, time.Millisecond); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
}

func TestSchedulerRunError(t *testing.T) {
	errTask := errors.New("unplugged")
	task := &sampleTask{err: errTask}

	if err := NewScheduler(task).Run(context.Background(), time.Millisecond); !errors.Is(err, errTask) {
		t.Fatalf("Run error = %v, want %v", err, errTask)
	}
}

type taskFunc func(time.Duration) error

func (f taskFunc) Tick(now time.Duration) error { return f(now) }
