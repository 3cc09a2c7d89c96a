package logic

import "time"

// ButtonTracker classifies the push button into per-tick signals.
//
// The classification is edge-based: Clicked fires for exactly one tick on
// the release edge, Held fires on every tick once the press accumulator
// passes the hold threshold. While a short press is still in progress the
// previously computed signal stands. The switch is assumed mechanically
// clean; there is no debounce stage in front of this.
type ButtonTracker struct {
	holdThreshold time.Duration
	pressedFor    time.Duration
	wasPressed    bool
	state         ButtonState
}

// NewButtonTracker creates a tracker with the given hold threshold.
func NewButtonTracker(holdThreshold time.Duration) *ButtonTracker {
	return &ButtonTracker{holdThreshold: holdThreshold}
}

// Update folds one sampled level into the tracker and returns the signal
// for this tick.
func (b *ButtonTracker) Update(pressed bool, step time.Duration) ButtonState {
	if !pressed {
		b.pressedFor = 0
		if b.wasPressed {
			b.state = ButtonClicked
		} else {
			b.state = ButtonUnpressed
		}
	} else {
		b.pressedFor += step
		if b.pressedFor > b.holdThreshold {
			b.state = ButtonHeld
		}
		// Below the threshold the previous signal stands.
	}
	b.wasPressed = pressed
	return b.state
}

// State returns the signal computed by the most recent Update.
func (b *ButtonTracker) State() ButtonState {
	return b.state
}
