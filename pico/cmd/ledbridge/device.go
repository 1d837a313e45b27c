package main

import (
	"fmt"
	"machine"

	"libdb.so/digitglow/led"
	"libdb.so/digitglow/ledserial"
	"libdb.so/digitglow/pico"
	"tinygo.org/x/drivers/ws2812"
)

// Device stores the current state of the bridge.
type Device struct {
	serial   SerialReadWriter
	strip    *led.Encoder
	activity pico.PinOutput

	numLEDs   uint16
	ledBuffer []byte
}

// NewDevice creates a new device.
func NewDevice(serial machine.Serialer, strip ws2812.Device, activity pico.PinOutput) *Device {
	return &Device{
		serial:   WrapSerial(serial),
		strip:    led.NewEncoder(pico.CriticalWriter{W: strip}),
		activity: activity,
	}
}

// Run runs the device loop forever.
func (d *Device) Run() {
	for {
		p, err := d.readPacket()
		if err != nil {
			d.logError(err)
			continue
		}

		if err := d.handlePacket(p); err != nil {
			d.logError(err)
		}
	}
}

func (d *Device) logError(err error) {
	d.sendPacket(ledserial.ErrorPacket{Message: err.Error()})
}

func (d *Device) sendPacket(p ledserial.OutgoingPacket) {
	ledserial.WriteOutgoingPacket(d.serial, p)
}

func (d *Device) readPacket() (ledserial.IncomingPacket, error) {
	d.activity.Set(true)

	p, err := ledserial.ReadIncomingPacket(d.serial, ledserial.ReadContext{
		NumLEDs:   d.numLEDs,
		LEDBuffer: d.ledBuffer,
	})

	d.activity.Set(false)
	return p, err
}

func (d *Device) handlePacket(p ledserial.IncomingPacket) error {
	switch p := p.(type) {
	case ledserial.InitializePacket:
		if p.NumLEDs < 1 {
			return fmt.Errorf("invalid number of LEDs: %d", p.NumLEDs)
		}
		d.numLEDs = p.NumLEDs
		d.ledBuffer = make([]byte, 3*int(p.NumLEDs))
		if err := d.clear(); err != nil {
			return err
		}

	case ledserial.ClearPacket:
		if err := d.clear(); err != nil {
			return err
		}

	case ledserial.SetPacket:
		if d.numLEDs == 0 {
			return fmt.Errorf("set packet before initialize")
		}
		if err := d.strip.FlushFrame(p.Pix); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}

	d.sendPacket(ledserial.AckPacket{
		IncomingPacketType: p.Type(),
	})
	return nil
}

func (d *Device) clear() error {
	for i := range d.ledBuffer {
		d.ledBuffer[i] = 0
	}
	return d.strip.FlushFrame(d.ledBuffer)
}
