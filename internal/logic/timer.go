package logic

import "time"

// Countdown advances a saturating countdown by one step, clamping at zero.
// Every timer in the engine decays through this.
func Countdown(remaining, step time.Duration) time.Duration {
	if remaining <= step {
		return 0
	}
	return remaining - step
}
