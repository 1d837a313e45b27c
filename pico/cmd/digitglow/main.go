// Command digitglow is the standalone firmware: buttons are pin interrupts
// and the matrix is driven directly.
package main

import (
	"context"
	"machine"
	"time"

	"libdb.so/digitglow/button"
	"libdb.so/digitglow/led"
	"libdb.so/digitglow/pico"
	"libdb.so/digitglow/render"
	"libdb.so/digitglow/state"
	"tinygo.org/x/drivers/ws2812"
)

func main() {
	boot := time.Now()

	pico.ConfigureOutputs()
	strip := ws2812.New(pico.MatrixPin)

	shared := state.NewShared(state.DebounceInterval)
	dispatcher := button.NewDispatcher(shared, button.ResetterFunc(machine.EnterBootloader), nil)

	renderer := render.NewRenderer(shared, led.NewEncoder(pico.CriticalWriter{W: strip}))
	if err := renderer.Draw(); err != nil {
		panic(err)
	}

	buttons := map[machine.Pin]state.Button{
		pico.ButtonA:       state.ButtonA,
		pico.ButtonB:       state.ButtonB,
		pico.JoystickPress: state.ButtonReset,
	}
	for pin, b := range buttons {
		b := b
		pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
		err := pin.SetInterrupt(machine.PinFalling, func(machine.Pin) {
			dispatcher.Handle(b, uint32(time.Since(boot)/time.Millisecond))
		})
		if err != nil {
			panic(err)
		}
	}

	scheduler := render.NewScheduler(
		renderer,
		render.NewHeartbeat(pico.PinOutput(pico.RedLED), render.HeartbeatInterval),
	)
	if err := scheduler.Run(context.Background(), time.Millisecond); err != nil {
		panic(err)
	}
}
