//go:build linux && !rp2040

package board

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// RealBoard drives actual hardware using the Linux GPIO character device
// for the sensors, the button and the relays, and SPI for the status LED.
type RealBoard struct {
	chip    *gpiocdev.Chip
	sensors [NumZones]*gpiocdev.Line
	button  *gpiocdev.Line
	relays  [NumZones]*gpiocdev.Line
	port    spi.PortCloser
	led     spi.Conn
}

var _ Board = (*RealBoard)(nil)

// NewRealBoard claims the configured GPIO lines and opens the LED's SPI
// port. On error any lines claimed so far are released.
func NewRealBoard(cfg Config) (*RealBoard, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	b := &RealBoard{chip: chip}

	// Sensors idle low and assert high on motion. Pull-down matches the
	// Pi boot defaults so a disconnected sensor reads as no motion.
	for i, pin := range cfg.SensorPins {
		line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullDown)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("request sensor pin %d: %w", pin, err)
		}
		b.sensors[i] = line
	}

	// The button shorts the line to ground when pressed.
	btn, err := chip.RequestLine(cfg.ButtonPin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("request button pin %d: %w", cfg.ButtonPin, err)
	}
	b.button = btn

	// Relay modules switch on a low input; start with every zone
	// de-energized.
	for i, pin := range cfg.RelayPins {
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(1))
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("request relay pin %d: %w", pin, err)
		}
		b.relays[i] = line
	}

	if _, err := host.Init(); err != nil {
		b.Close()
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	port, err := spireg.Open(cfg.SPIPort)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("open spi port %q: %w", cfg.SPIPort, err)
	}
	b.port = port
	led, err := port.Connect(2*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("connect status led: %w", err)
	}
	b.led = led

	return b, nil
}

// ReadSensors samples all zone sensors in pin order.
func (b *RealBoard) ReadSensors() ([NumZones]bool, error) {
	var out [NumZones]bool
	for i, line := range b.sensors {
		v, err := line.Value()
		if err != nil {
			return out, fmt.Errorf("read sensor %d: %w", i, err)
		}
		out[i] = v != 0
	}
	return out, nil
}

// ReadButton returns true while the button is pressed.
// Inverts the raw value: the pull-up keeps the line high until the
// button grounds it.
func (b *RealBoard) ReadButton() (bool, error) {
	v, err := b.button.Value()
	if err != nil {
		return false, fmt.Errorf("read button: %w", err)
	}
	return v == 0, nil
}

// SetRelay drives the given zone's relay, inverting for the active-low
// relay board.
func (b *RealBoard) SetRelay(zone int, on bool) error {
	if zone < 0 || zone >= NumZones {
		return fmt.Errorf("set relay: zone %d out of range", zone)
	}
	v := 1
	if on {
		v = 0
	}
	if err := b.relays[zone].SetValue(v); err != nil {
		return fmt.Errorf("set relay %d: %w", zone, err)
	}
	return nil
}

// SetIndicator pushes a single-LED APA102 frame: a zero start frame, one
// pixel at full global brightness, and an all-ones end frame.
func (b *RealBoard) SetIndicator(red, green, blue uint8) error {
	frame := []byte{
		0x00, 0x00, 0x00, 0x00,
		0xff, blue, green, red,
		0xff, 0xff, 0xff, 0xff,
	}
	if err := b.led.Tx(frame, nil); err != nil {
		return fmt.Errorf("write status led: %w", err)
	}
	return nil
}

// Idle parks the loop between samples.
func (b *RealBoard) Idle(d time.Duration) {
	time.Sleep(d)
}

// Close releases GPIO and SPI resources. Input lines are reconfigured to
// input with pull-down (matching Pi boot defaults) before closing so
// external sensor modules do not see odd levels across a restart, and
// relays are parked de-energized. Safe to call on a partially
// constructed board.
func (b *RealBoard) Close() error {
	var errs []error

	for i, line := range b.sensors {
		if line == nil {
			continue
		}
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure sensor %d: %w", i, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sensor %d: %w", i, err))
		}
	}
	if b.button != nil {
		if err := b.button.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure button: %w", err))
		}
		if err := b.button.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button: %w", err))
		}
	}
	for i, line := range b.relays {
		if line == nil {
			continue
		}
		if err := line.SetValue(1); err != nil {
			errs = append(errs, fmt.Errorf("park relay %d: %w", i, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close relay %d: %w", i, err))
		}
	}
	if b.port != nil {
		if err := b.port.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close spi port: %w", err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
