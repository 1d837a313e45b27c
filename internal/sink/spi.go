package sink

import (
	"github.com/pkg/errors"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// SPIFrequency is the SPI clock used to generate the strip's 800 kHz
// signal: every data bit becomes three SPI bits of 416 ns each.
const SPIFrequency = 2400 * physic.KiloHertz

// SPI is a sink that bit-bangs the strip protocol through an SPI MOSI line.
// A 1 bit is sent as 110 and a 0 bit as 100, so each frame byte takes three
// SPI bytes. MOSI idles low between transfers, which provides the latch.
type SPI struct {
	idle
	conn conn.Conn
	port spi.PortCloser
	buf  []byte
}

// OpenSPI opens the named SPI port through periph.io. An empty name picks
// the first available port.
func OpenSPI(name string) (*SPI, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize periph host")
	}

	port, err := spireg.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open SPI port")
	}

	c, err := port.Connect(SPIFrequency, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, errors.Wrap(err, "failed to configure SPI port")
	}

	s := NewSPI(c)
	s.port = port
	return s, nil
}

// NewSPI creates a sink on an already configured connection.
func NewSPI(c conn.Conn) *SPI {
	return &SPI{conn: c}
}

func (s *SPI) Write(b []byte) (int, error) {
	s.buf = ExpandSPI(s.buf[:0], b)
	if err := s.conn.Tx(s.buf, nil); err != nil {
		return 0, errors.Wrap(err, "SPI transfer failed")
	}
	return len(b), nil
}

func (s *SPI) Close() error {
	if s.port == nil {
		return nil
	}
	return s.port.Close()
}

// ExpandSPI appends the SPI encoding of data to dst: three SPI bits per data
// bit, most significant bit first.
func ExpandSPI(dst, data []byte) []byte {
	for _, b := range data {
		var bits uint32
		for i := 7; i >= 0; i-- {
			bits <<= 3
			if b&(1<<i) != 0 {
				bits |= 0b110
			} else {
				bits |= 0b100
			}
		}
		dst = append(dst, byte(bits>>16), byte(bits>>8), byte(bits))
	}
	return dst
}
