// Package board abstracts the controller's hardware: motion sensor and
// button inputs, zone relay outputs, and the status LED.
// The real implementation uses the Linux GPIO character device plus an
// SPI LED module, with an RP2040 port behind a build tag.
// The fake implementation allows testing without hardware.
package board

import "time"

// NumZones is the number of lighting zones wired to the board.
const NumZones = 5

// Board is the seam between the control loop and the house wiring.
type Board interface {
	// ReadSensors samples every zone's motion sensor, indexed by zone
	// ordinal. true = motion reported on this sample.
	ReadSensors() ([NumZones]bool, error)

	// ReadButton returns true while the mode button is pressed.
	// The raw GPIO value is inverted: the line is pulled up and the
	// button shorts it to ground.
	ReadButton() (bool, error)

	// SetRelay drives the given zone's relay. true = energized.
	SetRelay(zone int, on bool) error

	// SetIndicator sets the status LED color.
	SetIndicator(red, green, blue uint8) error

	// Idle parks the caller for roughly d.
	Idle(d time.Duration)

	// Close releases hardware resources.
	Close() error
}

// Config selects the pins and buses the board is wired to.
// Pin numbers are BCM on the Pi and GP numbers on the RP2040.
type Config struct {
	SensorPins [NumZones]int
	ButtonPin  int
	RelayPins  [NumZones]int

	// SPIPort names the status LED's SPI port on Linux, e.g. "SPI0.0".
	// Empty selects the first available port.
	SPIPort string

	// LEDPin is the status LED data pin on the RP2040 build, where the
	// LED is a WS2812 instead of an SPI module.
	LEDPin int
}

// DefaultConfig returns the pin assignment of the reference wiring.
func DefaultConfig() Config {
	return Config{
		SensorPins: [NumZones]int{17, 27, 22, 5, 6},
		ButtonPin:  13,
		RelayPins:  [NumZones]int{23, 24, 25, 8, 7},
		SPIPort:    "",
		LEDPin:     16,
	}
}
