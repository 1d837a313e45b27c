package sink

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	"libdb.so/digitglow/ledserial"
)

// ErrBridgePanicked is returned by Serial.Run when the bridge reports that
// it cannot recover.
var ErrBridgePanicked = errors.New("LED bridge panicked")

// RefreshQueuer is the interface for types that can queue a redraw of the
// matrix.
type RefreshQueuer interface {
	// QueueRefresh queues a redraw. Multiple calls before the render loop
	// gets to it result in a single redraw.
	QueueRefresh()
}

// eofBackoff is how long Run waits before reading again after the port
// returned EOF.
var eofBackoff = 50 * time.Millisecond

// Serial is a sink that forwards frames to a microcontroller bridge over a
// serial port. Each frame becomes one ledserial Set packet.
type Serial struct {
	port    io.ReadWriteCloser
	refresh RefreshQueuer
	logger  *slog.Logger
}

// OpenSerial opens the serial device and initializes the bridge for
// numLEDs LEDs. Frames rejected by the bridge are redrawn through refresh.
func OpenSerial(device string, baud, numLEDs int, refresh RefreshQueuer, logger *slog.Logger) (*Serial, error) {
	port, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open serial port")
	}

	if err := port.SetReadTimeout(serial.NoTimeout); err != nil {
		port.Close()
		return nil, errors.Wrap(err, "failed to reset read timeout")
	}

	s, err := NewSerial(port, numLEDs, refresh, logger)
	if err != nil {
		port.Close()
		return nil, err
	}
	return s, nil
}

// NewSerial wraps an open port and sends the initialize packet.
func NewSerial(port io.ReadWriteCloser, numLEDs int, refresh RefreshQueuer, logger *slog.Logger) (*Serial, error) {
	s := &Serial{
		port:    port,
		refresh: refresh,
		logger:  logger,
	}

	s.logger.Debug("sending initialize packet", "num_leds", numLEDs)
	if err := ledserial.WriteIncomingPacket(port, ledserial.InitializePacket{
		NumLEDs: uint16(numLEDs),
	}); err != nil {
		return nil, errors.Wrap(err, "failed to initialize LED bridge")
	}

	return s, nil
}

func (s *Serial) Write(b []byte) (int, error) {
	if err := ledserial.WriteIncomingPacket(s.port, ledserial.SetPacket{Pix: b}); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (s *Serial) Close() error {
	return s.port.Close()
}

// Run reads packets from the bridge until ctx is canceled, the port fails or
// the bridge panics. Canceling ctx closes the port.
func (s *Serial) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		s.port.Close()
	}()

	for {
		p, err := ledserial.ReadOutgoingPacket(s.port)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// A short read indicates a timeout or a hangup. Back off so a
			// hung up tty does not spin; the next frame write reports it.
			if errors.Is(err, io.EOF) {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(eofBackoff):
				}
				continue
			}
			return errors.Wrap(err, "failed to read packet")
		}

		switch p := p.(type) {
		case ledserial.AckPacket:
			s.logger.Debug(
				"received ack packet from bridge",
				"acked_for", p.IncomingPacketType)

		case ledserial.LogPacket:
			s.logger.Info(
				"received log packet from bridge",
				"message", p.Message)

		case ledserial.ErrorPacket:
			s.logger.Warn(
				"received error packet from bridge, redrawing",
				"message", p.Message)
			s.refresh.QueueRefresh()

		case ledserial.PanicPacket:
			s.logger.Error("bridge unrecoverably panicked")
			return ErrBridgePanicked
		}
	}
}
