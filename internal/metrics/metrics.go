// Package metrics provides Prometheus metrics for the button handler and
// the render loop.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"libdb.so/digitglow/button"
	"libdb.so/digitglow/glyph"
	"libdb.so/digitglow/state"
)

// Recorder records edges and flushes. All methods are non-blocking and safe
// to call from the button handler.
type Recorder struct {
	edges   *prometheus.CounterVec
	flushes prometheus.Counter
	digit   prometheus.Gauge
}

var _ button.Observer = (*Recorder)(nil)

// NewRecorder registers the metrics on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		edges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "digitglow",
			Subsystem: "buttons",
			Name:      "edges_total",
			Help:      "Button edges by button and outcome",
		}, []string{"button", "result"}),
		flushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "digitglow",
			Subsystem: "matrix",
			Name:      "flushes_total",
			Help:      "Frames written to the LED strip",
		}),
		digit: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "digitglow",
			Subsystem: "matrix",
			Name:      "digit",
			Help:      "Digit currently shown on the matrix",
		}),
	}
}

// Observe implements button.Observer.
func (r *Recorder) Observe(b state.Button, res button.Result) {
	r.edges.WithLabelValues(b.String(), res.String()).Inc()
}

// Flushed records a frame showing d.
func (r *Recorder) Flushed(d glyph.Digit) {
	r.flushes.Inc()
	r.digit.Set(float64(d))
}
