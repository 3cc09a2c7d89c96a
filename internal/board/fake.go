package board

import (
	"fmt"
	"sync"
	"time"
)

// FakeBoard is a test double with settable input levels and recorded
// outputs. It is safe to poke from a test goroutine while a control
// loop reads it, and Idle never actually sleeps.
type FakeBoard struct {
	mu       sync.Mutex
	sensors  [NumZones]bool
	button   bool
	relays   [NumZones]bool
	relayLog []string
	colors   [][3]uint8
	idled    time.Duration
	closed   bool

	// ReadError, if set, is returned by ReadSensors and ReadButton.
	ReadError error

	// OnIdle, if set, runs on every Idle call. Tests use it to script
	// input changes during the blocking actuation waits.
	OnIdle func(d time.Duration)
}

var _ Board = (*FakeBoard)(nil)

// NewFakeBoard creates a FakeBoard with all inputs released and all
// relays de-energized.
func NewFakeBoard() *FakeBoard {
	return &FakeBoard{}
}

// SetSensor sets one zone's motion level. Out-of-range zones are ignored.
func (f *FakeBoard) SetSensor(zone int, on bool) {
	if zone < 0 || zone >= NumZones {
		return
	}
	f.mu.Lock()
	f.sensors[zone] = on
	f.mu.Unlock()
}

// SetButton sets the button level. true = pressed.
func (f *FakeBoard) SetButton(pressed bool) {
	f.mu.Lock()
	f.button = pressed
	f.mu.Unlock()
}

func (f *FakeBoard) ReadSensors() ([NumZones]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadError != nil {
		return [NumZones]bool{}, f.ReadError
	}
	return f.sensors, nil
}

func (f *FakeBoard) ReadButton() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadError != nil {
		return false, f.ReadError
	}
	return f.button, nil
}

func (f *FakeBoard) SetRelay(zone int, on bool) error {
	if zone < 0 || zone >= NumZones {
		return fmt.Errorf("set relay: zone %d out of range", zone)
	}
	state := "off"
	if on {
		state = "on"
	}
	f.mu.Lock()
	f.relays[zone] = on
	f.relayLog = append(f.relayLog, fmt.Sprintf("%d:%s", zone, state))
	f.mu.Unlock()
	return nil
}

func (f *FakeBoard) SetIndicator(red, green, blue uint8) error {
	f.mu.Lock()
	f.colors = append(f.colors, [3]uint8{red, green, blue})
	f.mu.Unlock()
	return nil
}

// Idle records the requested duration and runs the OnIdle hook instead
// of sleeping, so scripted tests drive waits in zero wall time.
func (f *FakeBoard) Idle(d time.Duration) {
	f.mu.Lock()
	f.idled += d
	hook := f.OnIdle
	f.mu.Unlock()
	if hook != nil {
		hook(d)
	}
}

// Close marks the board as closed.
func (f *FakeBoard) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// RelayState reports the last level written to one zone's relay.
func (f *FakeBoard) RelayState(zone int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if zone < 0 || zone >= NumZones {
		return false
	}
	return f.relays[zone]
}

// RelayLog returns a copy of every relay write, as "zone:on" / "zone:off".
func (f *FakeBoard) RelayLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.relayLog...)
}

// Colors returns a copy of every indicator write.
func (f *FakeBoard) Colors() [][3]uint8 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][3]uint8(nil), f.colors...)
}

// IdleTotal reports the accumulated Idle time.
func (f *FakeBoard) IdleTotal() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.idled
}

// IsClosed reports whether Close was called.
func (f *FakeBoard) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
