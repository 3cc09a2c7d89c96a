//go:build rp2040

package board

import (
	"errors"
	"image/color"
	"machine"
	"time"

	"tinygo.org/x/drivers/ws2812"
)

// Kept as a value so SetRelay stays allocation-free on the MCU.
var errZoneRange = errors.New("set relay: zone out of range")

// RealBoard drives a Raspberry Pi Pico wired to the same peripherals.
// The status LED is a WS2812 on a plain GPIO instead of an SPI module.
type RealBoard struct {
	sensors [NumZones]machine.Pin
	button  machine.Pin
	relays  [NumZones]machine.Pin
	led     ws2812.Device
}

var _ Board = (*RealBoard)(nil)

// NewRealBoard configures the pins. Pin setup cannot fail on this
// target; the error return mirrors the Linux implementation.
func NewRealBoard(cfg Config) (*RealBoard, error) {
	b := &RealBoard{button: machine.Pin(cfg.ButtonPin)}

	for i, pin := range cfg.SensorPins {
		p := machine.Pin(pin)
		p.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
		b.sensors[i] = p
	}

	b.button.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	// Relay modules switch on a low input; park every zone de-energized.
	for i, pin := range cfg.RelayPins {
		p := machine.Pin(pin)
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.High()
		b.relays[i] = p
	}

	ledPin := machine.Pin(cfg.LEDPin)
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	b.led = ws2812.New(ledPin)

	return b, nil
}

func (b *RealBoard) ReadSensors() ([NumZones]bool, error) {
	var out [NumZones]bool
	for i, p := range b.sensors {
		out[i] = p.Get()
	}
	return out, nil
}

func (b *RealBoard) ReadButton() (bool, error) {
	// The pull-up inverts: low = pressed.
	return !b.button.Get(), nil
}

func (b *RealBoard) SetRelay(zone int, on bool) error {
	if zone < 0 || zone >= NumZones {
		return errZoneRange
	}
	if on {
		b.relays[zone].Low()
	} else {
		b.relays[zone].High()
	}
	return nil
}

func (b *RealBoard) SetIndicator(red, green, blue uint8) error {
	return b.led.WriteColors([]color.RGBA{{R: red, G: green, B: blue}})
}

func (b *RealBoard) Idle(d time.Duration) {
	time.Sleep(d)
}

// Close parks the relays de-energized. Pins need no release on this
// target.
func (b *RealBoard) Close() error {
	for _, p := range b.relays {
		p.High()
	}
	return nil
}
