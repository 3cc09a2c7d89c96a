package logic

import "time"

// zoneState is the per-zone arbitration bookkeeping.
type zoneState struct {
	sensed     bool          // this tick's sample
	lastSensed bool          // previous tick's sample
	cooldown   time.Duration // win-suppression countdown
	likelihood int           // accumulated sense count this episode
}

// Arbiter decides when sensed motion justifies moving the light to another
// zone. Evidence accumulates per zone within an arbitration episode; an
// episode runs from one gate edge (or the active zone going quiet) to the
// next. A commit needs all three at once: a leader with convincing
// evidence, that leader out of cooldown, and the transition window still
// open from recent gate motion.
type Arbiter struct {
	cfg    Config
	zones  [ZoneCount]zoneState
	window time.Duration // transition window remaining
	leader Zone          // best candidate this episode; GateZone = none yet
}

// NewArbiter creates an arbiter with no accumulated evidence.
func NewArbiter(cfg Config) *Arbiter {
	return &Arbiter{cfg: cfg, leader: GateZone}
}

// Observe folds one sensor frame into the arbitration state and reports
// whether the light should move, and where to. active is the currently
// energized zone; NoZone is allowed.
func (a *Arbiter) Observe(sensors [ZoneCount]bool, active Zone, step time.Duration) (Zone, bool) {
	// Shift the edge snapshot, take the new samples, age the cooldowns.
	for z := range a.zones {
		a.zones[z].lastSensed = a.zones[z].sensed
		a.zones[z].sensed = sensors[z]
		a.zones[z].cooldown = Countdown(a.zones[z].cooldown, step)
	}

	// A rising gate edge or a falling edge on the active zone starts a new
	// episode: the old evidence no longer describes the same walk.
	gateRose := a.zones[GateZone].sensed && !a.zones[GateZone].lastSensed
	activeFell := active.Valid() && !a.zones[active].sensed && a.zones[active].lastSensed
	if gateRose || activeFell {
		for z := GateZone + 1; z < ZoneCount; z++ {
			a.zones[z].likelihood = 0
		}
		a.leader = GateZone
	}

	// Accumulate evidence for sensed, cooled-down zones. A challenger must
	// clear the leader by more than the margin to take over, so two zones
	// tripping together don't flap on scan order.
	for z := GateZone + 1; z < ZoneCount; z++ {
		if a.zones[z].sensed && a.zones[z].cooldown == 0 {
			a.zones[z].likelihood++
		}
		if a.zones[z].likelihood > a.zones[a.leader].likelihood+a.cfg.LeadMargin {
			a.leader = z
		}
	}

	// Gate motion holds the transition window open; silence drains it.
	if a.zones[GateZone].sensed {
		a.window = a.cfg.TransitionWindow
	} else {
		a.window = Countdown(a.window, step)
	}

	// Commit when the leader has convincing, fresh evidence inside the
	// window. The gate sentinel never accumulates, so it never wins.
	if a.zones[a.leader].likelihood > a.cfg.LikelihoodBar &&
		a.zones[a.leader].cooldown == 0 &&
		a.window > 0 {
		return a.leader, true
	}
	return active, false
}

// Penalize puts z into cooldown so it cannot immediately win again.
// Invalid zones are ignored.
func (a *Arbiter) Penalize(z Zone) {
	if z.Valid() {
		a.zones[z].cooldown = a.cfg.ZoneCooldown
	}
}

// Leader returns the current episode's front-runner. GateZone means no zone
// has pulled ahead yet.
func (a *Arbiter) Leader() Zone {
	return a.leader
}

// WindowOpen reports whether the transition window still has time left.
func (a *Arbiter) WindowOpen() bool {
	return a.window > 0
}
