// Package digitglow is a daemon that shows a single decimal digit on a 5x5
// LED matrix. Two buttons step the digit up and down and a third one puts
// the device into update mode.
package digitglow

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"libdb.so/digitglow/button"
	"libdb.so/digitglow/glyph"
	"libdb.so/digitglow/internal/gpio"
	"libdb.so/digitglow/internal/metrics"
	"libdb.so/digitglow/internal/reset"
	"libdb.so/digitglow/internal/sink"
	"libdb.so/digitglow/led"
	"libdb.so/digitglow/render"
	"libdb.so/digitglow/state"
)

// Daemon is the main digitglow daemon.
type Daemon struct {
	cfg      *Config
	logger   *slog.Logger
	shared   *state.Shared
	recorder *metrics.Recorder

	// hardware hooks, replaced in tests
	openSink       func() (sink.Sink, error)
	requestButtons func(gpio.Handler) (io.Closer, error)
	requestOutput  func() (outputCloser, error)
	resetter       button.Resetter
}

type outputCloser interface {
	render.Output
	io.Closer
}

var _ sink.RefreshQueuer = (*Daemon)(nil)

// NewDaemon creates a new digitglow daemon.
func NewDaemon(cfg *Config, logger *slog.Logger) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		shared:   state.NewShared(time.Duration(cfg.Buttons.Debounce)),
		resetter: reset.NewExec(cfg.Update.Command, logger),
	}
	d.openSink = d.openConfiguredSink
	d.requestButtons = d.requestConfiguredButtons
	d.requestOutput = d.requestConfiguredOutput
	return d, nil
}

// EnableMetrics registers the daemon's Prometheus metrics on reg. It must be
// called before Run.
func (d *Daemon) EnableMetrics(reg prometheus.Registerer) {
	d.recorder = metrics.NewRecorder(reg)
}

// QueueRefresh queues a redraw of the current digit.
func (d *Daemon) QueueRefresh() {
	d.shared.Redraw.Set()
}

// Run starts the daemon. It blocks until the given context is canceled or
// the LED output fails. Failing to acquire the LED sink or the GPIO lines
// is returned immediately.
func (d *Daemon) Run(ctx context.Context) error {
	out, err := d.openSink()
	if err != nil {
		return errors.Wrap(err, "failed to acquire LED output")
	}
	defer out.Close()

	renderer := render.NewRenderer(d.shared, led.NewEncoder(out))
	renderer.OnFlush = d.flushed

	d.logger.Debug("drawing initial digit")
	if err := renderer.Draw(); err != nil {
		return errors.Wrap(err, "failed to draw initial digit")
	}

	var observer button.Observer
	if d.recorder != nil {
		observer = d.recorder
	}
	dispatcher := button.NewDispatcher(d.shared, d.resetter, observer)

	buttons, err := d.requestButtons(func(b state.Button, nowMs uint32) {
		dispatcher.Handle(b, nowMs)
	})
	if err != nil {
		return err
	}
	defer buttons.Close()

	tasks := []render.Task{renderer}
	if d.cfg.Heartbeat.Line >= 0 {
		heartbeat, err := d.requestOutput()
		if err != nil {
			return err
		}
		defer heartbeat.Close()

		tasks = append(tasks, render.NewHeartbeat(heartbeat, time.Duration(d.cfg.Heartbeat.Interval)))
	}

	scheduler := render.NewScheduler(tasks...)

	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		return out.Run(ctx)
	})
	errg.Go(func() error {
		return scheduler.Run(ctx, time.Duration(d.cfg.Poll))
	})

	return errg.Wait()
}

func (d *Daemon) flushed(digit glyph.Digit) {
	d.logger.Debug("flushed frame", "digit", digit)
	if d.recorder != nil {
		d.recorder.Flushed(digit)
	}
}

func (d *Daemon) openConfiguredSink() (sink.Sink, error) {
	cfg := d.cfg.Sink
	d.logger.Debug("opening LED sink", "sink", cfg.Kind)

	switch cfg.Kind {
	case SerialSink:
		return sink.OpenSerial(cfg.Device, cfg.Baud, led.NumCells, d, d.logger)
	case SPISink:
		return sink.OpenSPI(cfg.Port)
	case FileSink:
		return sink.OpenFile(cfg.Path)
	default:
		return nil, errors.Errorf("unknown sink kind %q", cfg.Kind)
	}
}

func (d *Daemon) requestConfiguredButtons(h gpio.Handler) (io.Closer, error) {
	cfg := d.cfg.Buttons
	return gpio.RequestButtons(cfg.Chip, gpio.Lines{
		cfg.Increment: state.ButtonA,
		cfg.Decrement: state.ButtonB,
		cfg.Reset:     state.ButtonReset,
	}, h)
}

func (d *Daemon) requestConfiguredOutput() (outputCloser, error) {
	return gpio.RequestOutput(d.cfg.Buttons.Chip, d.cfg.Heartbeat.Line)
}
