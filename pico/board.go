// Package pico holds the pin assignments of the RP2040 board the matrix is
// mounted on, shared by the firmware programs.
package pico

import "machine"

const (
	// MatrixPin drives the data line of the 5x5 WS2812 matrix.
	MatrixPin = machine.GP7
	// ButtonA increments the digit.
	ButtonA = machine.GP5
	// ButtonB decrements the digit.
	ButtonB = machine.GP6
	// JoystickPress enters the USB bootloader.
	JoystickPress = machine.GP22
	// RedLED, GreenLED and BlueLED are the channels of the discrete RGB LED.
	RedLED   = machine.GP13
	GreenLED = machine.GP11
	BlueLED  = machine.GP12
)

// ConfigureOutputs sets up the matrix and the RGB LED pins as outputs, all
// driven low.
func ConfigureOutputs() {
	for _, pin := range []machine.Pin{MatrixPin, RedLED, GreenLED, BlueLED} {
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		pin.Low()
	}
}

// PinOutput adapts a pin to render.Output.
type PinOutput machine.Pin

// Set drives the pin.
func (p PinOutput) Set(on bool) error {
	machine.Pin(p).Set(on)
	return nil
}
