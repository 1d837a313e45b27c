package digitglow

import (
	"encoding"
	"fmt"
	"io"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"libdb.so/digitglow/render"
	"libdb.so/digitglow/state"
)

// Config is the configuration for the digitglow daemon.
type Config struct {
	// Poll is how often the main loop checks for work.
	Poll TOMLDuration `toml:"poll"`
	// Sink is where LED frames are written.
	Sink SinkConfig `toml:"sink"`
	// Buttons configures the input lines.
	Buttons ButtonsConfig `toml:"buttons"`
	// Heartbeat configures the blinking indicator LED.
	Heartbeat HeartbeatConfig `toml:"heartbeat"`
	// Update configures what the reset button does.
	Update UpdateConfig `toml:"update"`
}

// SinkKind is the kind of byte sink the LED frames are written to.
type SinkKind string

const (
	// SerialSink sends frames to a microcontroller bridge over a serial
	// port using the ledserial protocol.
	SerialSink SinkKind = "serial"
	// SPISink drives the strip's data line directly from an SPI MOSI pin.
	SPISink SinkKind = "spi"
	// FileSink writes the raw wire bytes to a file. "-" is stdout.
	FileSink SinkKind = "file"
)

// SinkConfig is the configuration of the LED byte sink.
type SinkConfig struct {
	Kind SinkKind `toml:"kind"`
	// Device is the path to the serial device, usually /dev/ttyACM0.
	Device string `toml:"device"`
	// Baud is the baud rate for the serial connection.
	Baud int `toml:"baud"`
	// Port is the periph.io SPI port name, e.g. "SPI0.0". Empty picks the
	// first port.
	Port string `toml:"port"`
	// Path is the file for the file sink.
	Path string `toml:"path"`
}

// ButtonsConfig is the configuration of the button lines. Line numbers are
// offsets on the GPIO chip.
type ButtonsConfig struct {
	Chip      string       `toml:"chip"`
	Increment int          `toml:"increment"`
	Decrement int          `toml:"decrement"`
	Reset     int          `toml:"reset"`
	Debounce  TOMLDuration `toml:"debounce"`
}

// HeartbeatConfig is the configuration of the heartbeat LED.
type HeartbeatConfig struct {
	// Line is the output line offset. A negative line disables the
	// heartbeat.
	Line     int          `toml:"line"`
	Interval TOMLDuration `toml:"interval"`
}

// UpdateConfig is the configuration of update mode.
type UpdateConfig struct {
	// Command replaces the daemon process when the reset button is pressed.
	Command []string `toml:"command"`
}

// DefaultConfig returns the configuration of the reference board: buttons on
// lines 5, 6 and 22, the heartbeat on line 13.
func DefaultConfig() *Config {
	return &Config{
		Poll: TOMLDuration(time.Millisecond),
		Sink: SinkConfig{
			Kind:   SerialSink,
			Device: "/dev/ttyACM0",
			Baud:   115200,
		},
		Buttons: ButtonsConfig{
			Chip:      "gpiochip0",
			Increment: 5,
			Decrement: 6,
			Reset:     22,
			Debounce:  TOMLDuration(state.DebounceInterval),
		},
		Heartbeat: HeartbeatConfig{
			Line:     13,
			Interval: TOMLDuration(render.HeartbeatInterval),
		},
		Update: UpdateConfig{
			Command: []string{"reboot"},
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Poll <= 0 {
		return errors.New("poll interval must be positive")
	}

	switch c.Sink.Kind {
	case SerialSink:
		if c.Sink.Device == "" {
			return errors.New("serial sink needs a device")
		}
		if c.Sink.Baud <= 0 {
			return fmt.Errorf("invalid baud rate %d", c.Sink.Baud)
		}
	case SPISink:
	case FileSink:
		if c.Sink.Path == "" {
			return errors.New("file sink needs a path")
		}
	default:
		return fmt.Errorf("unknown sink kind %q", c.Sink.Kind)
	}

	b := c.Buttons
	if b.Chip == "" {
		return errors.New("no GPIO chip configured")
	}
	if b.Increment < 0 || b.Decrement < 0 || b.Reset < 0 {
		return errors.New("button lines must not be negative")
	}
	if b.Increment == b.Decrement || b.Increment == b.Reset || b.Decrement == b.Reset {
		return errors.New("button lines must be distinct")
	}
	if b.Debounce < 0 {
		return errors.New("debounce interval must not be negative")
	}

	if c.Heartbeat.Line >= 0 {
		switch c.Heartbeat.Line {
		case b.Increment, b.Decrement, b.Reset:
			return fmt.Errorf("heartbeat line %d is also a button line", c.Heartbeat.Line)
		}
		if c.Heartbeat.Interval <= 0 {
			return errors.New("heartbeat interval must be positive")
		}
	}

	if len(c.Update.Command) == 0 {
		return errors.New("no update command configured")
	}

	return nil
}

// TOMLDuration is a duration that can be parsed from TOML.
type TOMLDuration time.Duration

var (
	_ encoding.TextUnmarshaler = (*TOMLDuration)(nil)
	_ encoding.TextMarshaler   = (*TOMLDuration)(nil)
)

func (d *TOMLDuration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = TOMLDuration(duration)
	return nil
}

func (d TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// ParseConfig parses a configuration from a reader. Fields missing from the
// document keep the values of DefaultConfig.
func ParseConfig(r io.Reader) (*Config, error) {
	config := DefaultConfig()
	if err := toml.NewDecoder(r).Decode(config); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	return config, nil
}
