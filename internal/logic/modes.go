package logic

import "github.com/anggasct/fluo"

// Mode-graph event names.
const (
	eventHold   = "hold"   // completed button hold, from any mode
	eventCommit = "commit" // selection window expired, candidate in event data
	eventWake   = "wake"   // corroborated gate motion during true sleep
	eventResume = "resume" // button press during low power
)

// newModeGraph declares the legal mode transitions. The handlers do the
// actual work each tick; the graph only polices which mode changes are
// reachable from where.
func newModeGraph() fluo.MachineDefinition {
	b := fluo.NewMachine()

	b.State(ModeSwitching.String()).Initial().
		To(ModeSleep.String()).On(eventCommit).When(candidateIs(ModeSleep)).
		To(ModeLowPower.String()).On(eventCommit).When(candidateIs(ModeLowPower)).
		To(ModeManual.String()).On(eventCommit).When(candidateIs(ModeManual)).
		To(ModeSensing.String()).On(eventCommit).When(candidateIs(ModeSensing)).
		ToSelf().On(eventHold)

	b.State(ModeSleep.String()).
		To(ModeSensing.String()).On(eventWake).
		To(ModeSwitching.String()).On(eventHold)

	b.State(ModeLowPower.String()).
		To(ModeSensing.String()).On(eventResume).
		To(ModeSwitching.String()).On(eventHold)

	b.State(ModeManual.String()).
		To(ModeSwitching.String()).On(eventHold)

	b.State(ModeSensing.String()).
		To(ModeSwitching.String()).On(eventHold)

	return b.Build()
}

// candidateIs guards a commit transition on the candidate ordinal carried
// as event data.
func candidateIs(m Mode) fluo.GuardFunc {
	return func(ctx fluo.Context) bool {
		var ordinal int
		return ctx.GetEventDataAs(&ordinal) && Mode(ordinal) == m
	}
}

// modeMachine adapts the fluo machine to the engine's Mode vocabulary.
// Rejected events leave the mode unchanged; nothing here can panic or
// return an error to the tick path.
type modeMachine struct {
	m fluo.Machine
}

func newModeMachine() *modeMachine {
	mm := &modeMachine{m: newModeGraph().CreateInstance()}
	// Start cannot fail: the graph always has an initial state.
	_ = mm.m.Start()
	return mm
}

// Current returns the mode the machine is in.
func (mm *modeMachine) Current() Mode {
	m, _ := ParseMode(mm.m.CurrentState())
	return m
}

// Hold forces the machine into switching, from any mode.
func (mm *modeMachine) Hold() {
	mm.m.HandleEvent(eventHold, nil)
}

// Commit applies a selection-window result. Candidate 0 is a no-op: every
// guard rejects it and the machine stays in switching.
func (mm *modeMachine) Commit(candidate Mode) {
	mm.m.HandleEvent(eventCommit, int(candidate))
}

// Wake leaves sleep for sensing after corroborated gate motion.
func (mm *modeMachine) Wake() {
	mm.m.HandleEvent(eventWake, nil)
}

// Resume leaves low power for sensing after the button press.
func (mm *modeMachine) Resume() {
	mm.m.HandleEvent(eventResume, nil)
}
