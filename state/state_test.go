package state

import (
	"math/rand"
	"testing"
	"time"
)

func TestGateTryAccept(t *testing.T) {
	tests := []struct {
		name  string
		edges []uint32
		want  []bool
	}{
		{
			name:  "first edge after interval",
			edges: []uint32{500},
			want:  []bool{true},
		},
		{
			name:  "first edge too early after boot",
			edges: []uint32{499},
			want:  []bool{false},
		},
		{
			name:  "bounce within window",
			edges: []uint32{1000, 1001, 1200, 1499, 1500},
			want:  []bool{true, false, false, false, true},
		},
		{
			name:  "rejected edges do not extend the window",
			edges: []uint32{1000, 1400, 1500},
			want:  []bool{true, false, true},
		},
		{
			name:  "clock wraparound",
			edges: []uint32{0xFFFFFF00, 0x000000F0, 0x000000F4},
			want:  []bool{true, false, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGate(DebounceInterval)
			for i, now := range tt.edges {
				if got := g.TryAccept(ButtonA, now); got != tt.want[i] {
					t.Errorf("edge %d at %d ms: accepted = %v, want %v", i, now, got, tt.want[i])
				}
			}
		})
	}
}

func TestGatePerButton(t *testing.T) {
	g := NewGate(DebounceInterval)

	if !g.TryAccept(ButtonA, 1000) {
		t.Fatal("button a rejected")
	}
	if !g.TryAccept(ButtonB, 1001) {
		t.Fatal("button b rejected by button a's window")
	}
	if !g.TryAccept(ButtonReset, 1002) || !g.TryAccept(ButtonReset, 1003) {
		t.Fatal("reset button must never be debounced")
	}
}

func TestGateAtMostOnePerWindow(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	g := NewGate(DebounceInterval)

	var accepted []uint32
	now := uint32(0)
	for i := 0; i < 10000; i++ {
		now += uint32(rng.Intn(120))
		if g.TryAccept(ButtonB, now) {
			accepted = append(accepted, now)
		}
	}

	for i := 1; i < len(accepted); i++ {
		if d := accepted[i] - accepted[i-1]; d < 500 {
			t.Fatalf("accepted edges %d ms apart", d)
		}
	}
	if len(accepted) == 0 {
		t.Fatal("no edges accepted")
	}
}

func TestCounterClamp(t *testing.T) {
	var c Counter

	if c.Decrement() {
		t.Fatal("decrement at 0 reported a change")
	}
	if c.Value() != 0 {
		t.Fatalf("value = %d after decrement at 0", c.Value())
	}

	for i := 1; i <= 9; i++ {
		if !c.Increment() {
			t.Fatalf("increment to %d reported no change", i)
		}
	}
	if c.Increment() {
		t.Fatal("increment at 9 reported a change")
	}
	if c.Value() != 9 {
		t.Fatalf("value = %d after increment at 9", c.Value())
	}
}

func TestCounterRandomWalk(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	var c Counter

	for i := 0; i < 10000; i++ {
		if rng.Intn(2) == 0 {
			c.Increment()
		} else {
			c.Decrement()
		}
		if v := c.Value(); !v.Valid() {
			t.Fatalf("counter left range: %d", v)
		}
	}
}

func TestFlagTake(t *testing.T) {
	var f Flag

	if f.Take() {
		t.Fatal("fresh flag was raised")
	}

	f.Set()
	f.Set()
	if !f.Pending() {
		t.Fatal("flag not pending after Set")
	}
	if !f.Take() {
		t.Fatal("Take missed a Set")
	}
	if f.Take() {
		t.Fatal("flag consumed twice")
	}
}

func TestNewShared(t *testing.T) {
	s := NewShared(250 * time.Millisecond)

	if s.Counter.Value() != 0 {
		t.Errorf("initial digit = %d", s.Counter.Value())
	}
	if s.Redraw.Pending() {
		t.Error("initial redraw flag raised")
	}
	if s.Gate.Interval() != 250*time.Millisecond {
		t.Errorf("interval = %v", s.Gate.Interval())
	}
}

func TestButtonString(t *testing.T) {
	if ButtonReset.String() != "reset" || Button(7).String() != "Button(7)" {
		t.Fatal("unexpected button names")
	}
}
