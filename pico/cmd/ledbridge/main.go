// Command ledbridge turns the board into a USB serial bridge for the
// digitglow daemon: frames received as ledserial packets are shifted out to
// the matrix.
package main

import (
	"machine"

	"libdb.so/digitglow/pico"
	"tinygo.org/x/drivers/ws2812"
)

func main() {
	pico.ConfigureOutputs()

	d := NewDevice(machine.Serial, ws2812.New(pico.MatrixPin), pico.PinOutput(pico.GreenLED))
	d.Run()
}
