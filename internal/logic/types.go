// Package logic contains the pure decision engine for the lighting
// controller. This package has NO hardware access (no GPIO, SPI, OS, or
// time.Sleep). Time advances only through the step passed into each tick.
package logic

import "time"

// Zone identifies one lighting zone. The ordinal doubles as the index into
// the sensor and relay tables, so the values are load-bearing.
type Zone int

const (
	// NoZone means no zone is energized (house dark).
	NoZone Zone = -1

	ZoneHall    Zone = 0
	ZoneDining  Zone = 1
	ZoneKitchen Zone = 2
	ZoneBath    Zone = 3
	ZoneBed     Zone = 4

	// ZoneCount is the number of real zones (NoZone excluded).
	ZoneCount = 5
)

// GateZone is the hallway: every walk between rooms passes its sensor, so
// motion there opens the transition window and starts a fresh arbitration
// episode. Its ordinal is also the no-winner sentinel for the leader.
const GateZone = ZoneHall

// String returns the zone name used in logs and payloads.
func (z Zone) String() string {
	switch z {
	case NoZone:
		return "none"
	case ZoneHall:
		return "hall"
	case ZoneDining:
		return "dining"
	case ZoneKitchen:
		return "kitchen"
	case ZoneBath:
		return "bath"
	case ZoneBed:
		return "bed"
	}
	return "invalid"
}

// Valid reports whether z names a real zone. NoZone is not valid.
func (z Zone) Valid() bool {
	return z >= 0 && z < ZoneCount
}

// Mode is the operating mode of the controller. Ordinals are load-bearing:
// the selection UI cycles candidates by ordinal and lights the indicator
// with the matching palette slot.
type Mode int

const (
	ModeSwitching Mode = 0 // mode-selection UI; every completed hold lands here
	ModeSleep     Mode = 1 // staged shutdown into a deep idle wait
	ModeLowPower  Mode = 2 // lights out, blocked on a button press
	ModeManual    Mode = 3 // button clicks walk the light around the house
	ModeSensing   Mode = 4 // normal operation: arbitration drives the light

	// ModeCount is the number of modes.
	ModeCount = 5
)

// String returns the mode name. The same names are the state IDs in the
// mode graph.
func (m Mode) String() string {
	switch m {
	case ModeSwitching:
		return "switching"
	case ModeSleep:
		return "sleep"
	case ModeLowPower:
		return "low_power"
	case ModeManual:
		return "manual"
	case ModeSensing:
		return "sensing"
	}
	return "invalid"
}

// ParseMode maps a mode name back to its ordinal.
func ParseMode(s string) (Mode, bool) {
	for m := ModeSwitching; m < ModeCount; m++ {
		if m.String() == s {
			return m, true
		}
	}
	return ModeSwitching, false
}

// ButtonState classifies the push button for one tick.
type ButtonState int

const (
	ButtonUnpressed ButtonState = iota
	ButtonClicked               // one-tick pulse on the release edge
	ButtonHeld                  // every tick once the press passes HoldThreshold
)

// String returns the button signal name.
func (s ButtonState) String() string {
	switch s {
	case ButtonUnpressed:
		return "unpressed"
	case ButtonClicked:
		return "clicked"
	case ButtonHeld:
		return "held"
	}
	return "invalid"
}

// Timing and policy constants. Every countdown decays in per-tick steps, so
// wall-clock accuracy is only as good as the loop cadence.
const (
	// TickPeriod is the control-loop cadence. 5ms oversamples the PIR
	// sensors comfortably and keeps button edges within a single tick.
	TickPeriod = 5 * time.Millisecond

	// TransitionWindow is how long after hallway motion a zone commit is
	// allowed. A walk from the hall into any room fits inside a second.
	TransitionWindow = 1000 * time.Millisecond

	// ZoneCooldown keeps a just-vacated zone from re-winning while its
	// sensor retriggers on residual motion.
	ZoneCooldown = 7000 * time.Millisecond

	// SelectWindow is the quiet period that commits the candidate mode
	// during selection.
	SelectWindow = 2000 * time.Millisecond

	// HoldThreshold separates a click from a hold.
	HoldThreshold = 2000 * time.Millisecond

	// SleepTimeout keeps the hall lit on the way to bed before the
	// controller goes fully dark.
	SleepTimeout = 30000 * time.Millisecond

	// LikelihoodBar is the accumulated sense count a zone must strictly
	// exceed before it may win arbitration: about 20ms of sustained
	// motion at the nominal tick rate.
	LikelihoodBar = 3

	// LeadMargin is how far past the current leader a challenger must
	// climb to take over. Breaks scan-order ties between equal zones.
	LeadMargin = 1
)

// Indicator palette slots with a fixed meaning. Candidate modes light their
// own ordinal; these cover the remaining cues. The palette itself lives in
// the lights package.
const (
	ColorResume    = 0 // low-power wake acknowledgement flash
	ColorSleep     = 5 // sleep staging countdown
	ColorSelecting = 6 // hold acknowledged, selection window armed
)

// Config carries the engine's timing and policy parameters. Defaults mirror
// the package constants; tests shrink them to keep tick counts small.
type Config struct {
	Tick             time.Duration
	TransitionWindow time.Duration
	ZoneCooldown     time.Duration
	SelectWindow     time.Duration
	HoldThreshold    time.Duration
	SleepTimeout     time.Duration
	LikelihoodBar    int
	LeadMargin       int
}

// DefaultConfig returns the production parameters.
func DefaultConfig() Config {
	return Config{
		Tick:             TickPeriod,
		TransitionWindow: TransitionWindow,
		ZoneCooldown:     ZoneCooldown,
		SelectWindow:     SelectWindow,
		HoldThreshold:    HoldThreshold,
		SleepTimeout:     SleepTimeout,
		LikelihoodBar:    LikelihoodBar,
		LeadMargin:       LeadMargin,
	}
}

// Input is one sampled frame of the physical inputs.
type Input struct {
	// Sensors holds the logical motion level per zone, indexed by ordinal.
	Sensors [ZoneCount]bool
	// Pressed is the logical button level (active-low already inverted).
	Pressed bool
	// Step is the time credited to this tick's countdowns.
	Step time.Duration
}

// EventType classifies a decision event.
type EventType string

const (
	EventZoneChanged EventType = "ZONE_CHANGED"
	EventModeChanged EventType = "MODE_CHANGED"
	EventClick       EventType = "CLICK"
	EventHoldStart   EventType = "HOLD_START"
)

// Event records one externally visible decision from a tick.
type Event struct {
	Type   EventType
	Uptime time.Duration // tick time accumulated since the engine started

	// Mode and Zone are the values after the tick.
	Mode Mode
	Zone Zone

	// FromMode and FromZone are the values before the tick, set on the
	// change events.
	FromMode Mode
	FromZone Zone
}

// Counts tracks decision-event totals since startup.
type Counts struct {
	ZoneSwitches int
	ModeChanges  int
	Clicks       int
	Holds        int
}

// Actuator is everything the engine may do to the outside world. The lights
// package provides the hardware-backed implementation; tests substitute a
// recording fake. None of the methods report errors: an actuation that
// cannot be performed degrades into no change.
type Actuator interface {
	// Energize turns a zone's light on. Out-of-range zones are ignored.
	Energize(z Zone)
	// DeEnergize turns a zone's light off. Out-of-range zones are ignored.
	DeEnergize(z Zone)
	// SetColor lights the indicator with the given palette slot.
	SetColor(slot int)
	// Clear blanks the indicator.
	Clear()
	// Flash blinks the indicator count times in the given palette slot.
	Flash(slot, count int)
	// RestUntilButtonPressed blocks until the button is pressed and
	// released again. The whole control loop stalls while it waits.
	RestUntilButtonPressed()
	// IdleUntilGateAsserted blocks until the gate sensor reads motion.
	// The whole control loop stalls while it waits.
	IdleUntilGateAsserted()
}
