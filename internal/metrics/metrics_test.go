package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"libdb.so/digitglow/button"
	"libdb.so/digitglow/state"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())

	r.Observe(state.ButtonA, button.Changed)
	r.Observe(state.ButtonA, button.Changed)
	r.Observe(state.ButtonA, button.Rejected)
	r.Observe(state.ButtonB, button.Clamped)
	r.Flushed(0)
	r.Flushed(2)

	tests := []struct {
		button, result string
		want           float64
	}{
		{"a", "changed", 2},
		{"a", "rejected", 1},
		{"b", "clamped", 1},
		{"b", "changed", 0},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(r.edges.WithLabelValues(tt.button, tt.result))
		if got != tt.want {
			t.Errorf("edges{%s,%s} = %v, want %v", tt.button, tt.result, got, tt.want)
		}
	}

	if got := testutil.ToFloat64(r.flushes); got != 2 {
		t.Errorf("flushes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.digit); got != 2 {
		t.Errorf("digit = %v, want 2", got)
	}
}
