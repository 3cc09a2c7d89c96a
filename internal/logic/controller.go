package logic

import "time"

// Controller is the five-mode engine at the heart of the daemon. One
// instance owns all mutable control state; Tick is the only entry point.
type Controller struct {
	cfg    Config
	acts   Actuator
	modes  *modeMachine
	arb    *Arbiter
	button *ButtonTracker

	active      Zone
	candidate   Mode // mode the selection UI would commit
	selectTimer time.Duration
	sleepTimer  time.Duration

	uptime time.Duration
	counts Counts
}

// NewController wires the engine and drives it to the power-on state:
// dining room lit, selection mode idle with no candidate.
func NewController(cfg Config, acts Actuator) *Controller {
	c := &Controller{
		cfg:    cfg,
		acts:   acts,
		modes:  newModeMachine(),
		arb:    NewArbiter(cfg),
		button: NewButtonTracker(cfg.HoldThreshold),
		active: NoZone,
	}
	c.switchToZone(ZoneDining)
	return c
}

// Tick runs one control cycle over a sampled input frame and returns the
// decision events it produced. The mode handler consumes the button signal
// computed on the previous tick; the fresh sample is folded in afterwards,
// so a completed hold always lands in switching regardless of what the
// handler just did.
func (c *Controller) Tick(in Input) []Event {
	prevMode := c.Mode()
	prevZone := c.active
	prevButton := c.button.State()

	switch prevMode {
	case ModeSwitching:
		c.handleSwitching(in.Step)
	case ModeSleep:
		c.handleSleep(in)
	case ModeLowPower:
		c.handleLowPower()
	case ModeManual:
		c.handleManual()
	case ModeSensing:
		c.handleSensing(in)
	}

	if c.button.Update(in.Pressed, in.Step) == ButtonHeld {
		c.modes.Hold()
	}

	c.uptime += in.Step
	return c.collectEvents(prevMode, prevZone, prevButton)
}

// handleSwitching runs the mode-selection UI. A hold arms the window, each
// click advances the candidate, and a quiet SelectWindow commits it.
func (c *Controller) handleSwitching(step time.Duration) {
	switch c.button.State() {
	case ButtonHeld:
		c.acts.SetColor(ColorSelecting)
		c.selectTimer = c.cfg.SelectWindow
		c.candidate = ModeSwitching // back to "no selection"
	case ButtonClicked:
		c.candidate++
		if c.candidate >= ModeCount {
			// Wraps past sensing to the first selectable mode;
			// switching itself is never a candidate.
			c.candidate = ModeSleep
		}
		c.acts.SetColor(int(c.candidate))
		c.selectTimer = c.cfg.SelectWindow
	default:
		if c.selectTimer > 0 {
			c.selectTimer = Countdown(c.selectTimer, step)
		}
		if c.selectTimer == 0 {
			c.modes.Commit(c.candidate)
			c.acts.Clear()
		}
	}
}

// handleSleep stages the shutdown: park the light in the hall for a grace
// period, then go dark and wait for corroborated motion at the gate.
func (c *Controller) handleSleep(in Input) {
	switch {
	case c.active != ZoneHall && c.active != NoZone:
		// First tick after entering: light the way out.
		c.sleepTimer = c.cfg.SleepTimeout
		c.acts.SetColor(ColorSleep)
		c.switchToZone(ZoneHall)
	case c.active == ZoneHall:
		if c.sleepTimer > 0 {
			c.sleepTimer = Countdown(c.sleepTimer, in.Step)
		}
		if c.sleepTimer == 0 {
			c.acts.Clear()
			c.switchToZone(NoZone)
		}
	default:
		// True sleep. A lone gate report is treated as sensor noise;
		// only with a second zone corroborating do we camp on the gate
		// and wake into sensing.
		corroborated := false
		for z := GateZone + 1; z < ZoneCount; z++ {
			if in.Sensors[z] {
				corroborated = true
				break
			}
		}
		if corroborated {
			c.acts.IdleUntilGateAsserted()
			c.modes.Wake()
		}
	}
}

// handleLowPower blacks the house out and camps on the button. The press
// is acknowledged with a flash and normal sensing resumes.
func (c *Controller) handleLowPower() {
	for z := Zone(0); z < ZoneCount; z++ {
		c.acts.DeEnergize(z)
	}
	c.active = NoZone
	c.acts.RestUntilButtonPressed()
	c.acts.Flash(ColorResume, 2)
	c.acts.Clear()
	c.modes.Resume()
}

// handleManual steps the light around the house one click at a time.
func (c *Controller) handleManual() {
	if c.button.State() == ButtonClicked {
		c.switchToZone((c.active + 1) % ZoneCount)
	}
}

// handleSensing delegates the tick to the arbiter. On a commit the vacated
// zone is penalized so it cannot immediately win the light back.
func (c *Controller) handleSensing(in Input) {
	if next, ok := c.arb.Observe(in.Sensors, c.active, in.Step); ok {
		c.arb.Penalize(c.active)
		c.switchToZone(next)
	}
}

// switchToZone moves the single energized relay as a de-energize/energize
// pair. Same-zone requests are dropped so the relays never chatter.
func (c *Controller) switchToZone(z Zone) {
	if z == c.active {
		return
	}
	c.acts.DeEnergize(c.active)
	c.active = z
	c.acts.Energize(z)
}

// collectEvents diffs the tick's outcome against its starting point.
func (c *Controller) collectEvents(prevMode Mode, prevZone Zone, prevButton ButtonState) []Event {
	var events []Event

	if m := c.Mode(); m != prevMode {
		c.counts.ModeChanges++
		events = append(events, Event{
			Type:     EventModeChanged,
			Uptime:   c.uptime,
			Mode:     m,
			Zone:     c.active,
			FromMode: prevMode,
			FromZone: prevZone,
		})
	}
	if c.active != prevZone {
		c.counts.ZoneSwitches++
		events = append(events, Event{
			Type:     EventZoneChanged,
			Uptime:   c.uptime,
			Mode:     c.Mode(),
			Zone:     c.active,
			FromMode: prevMode,
			FromZone: prevZone,
		})
	}
	switch s := c.button.State(); {
	case s == ButtonClicked && prevButton != ButtonClicked:
		c.counts.Clicks++
		events = append(events, Event{Type: EventClick, Uptime: c.uptime, Mode: c.Mode(), Zone: c.active})
	case s == ButtonHeld && prevButton != ButtonHeld:
		c.counts.Holds++
		events = append(events, Event{Type: EventHoldStart, Uptime: c.uptime, Mode: c.Mode(), Zone: c.active})
	}

	return events
}

// Mode returns the current operating mode.
func (c *Controller) Mode() Mode {
	return c.modes.Current()
}

// ActiveZone returns the currently energized zone, or NoZone.
func (c *Controller) ActiveZone() Zone {
	return c.active
}

// Candidate returns the mode the selection UI would commit.
func (c *Controller) Candidate() Mode {
	return c.candidate
}

// ButtonSignal returns the most recent button classification.
func (c *Controller) ButtonSignal() ButtonState {
	return c.button.State()
}

// CountsSnapshot returns a copy of the decision-event totals.
func (c *Controller) CountsSnapshot() Counts {
	return c.counts
}

// Uptime returns the tick time accumulated since the engine started.
func (c *Controller) Uptime() time.Duration {
	return c.uptime
}
