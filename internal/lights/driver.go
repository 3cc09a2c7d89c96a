// Package lights turns the decision engine's actuation requests into
// board writes: zone relays and the status LED. A failed write is
// logged and dropped so a flaky output can never stall the tick loop.
package lights

import (
	"time"

	"go.uber.org/zap"

	"github.com/mfreith1/MotionSensingLighting/internal/board"
	"github.com/mfreith1/MotionSensingLighting/internal/logic"
)

// Brightness caps the status LED drive. Full output is blinding in a
// dark hallway.
const Brightness = 42

const (
	flashOn  = 120 * time.Millisecond
	flashOff = 120 * time.Millisecond
	restPoll = 25 * time.Millisecond
	gatePoll = 100 * time.Millisecond

	// maxReadFaults bounds the blocking waits when the input bus dies,
	// so the controller cannot be parked forever.
	maxReadFaults = 200
)

// palette maps indicator slots to colors. Slots 1..4 are the selection
// candidates, 0 and 5..6 the engine's fixed cues.
var palette = [8][3]uint8{
	{255, 255, 255}, // 0: resume flash
	{255, 0, 0},     // 1: sleep candidate
	{255, 160, 0},   // 2: low power candidate
	{0, 255, 0},     // 3: manual candidate
	{0, 255, 255},   // 4: sensing candidate
	{0, 0, 255},     // 5: sleep funnel cue
	{255, 0, 255},   // 6: selection-in-progress cue
	{255, 80, 0},    // 7: spare
}

// Driver implements the engine's actuation surface over a Board.
type Driver struct {
	brd board.Board
	log *zap.Logger
}

var _ logic.Actuator = (*Driver)(nil)

// NewDriver wires the actuation facade to a board.
func NewDriver(brd board.Board, log *zap.Logger) *Driver {
	return &Driver{brd: brd, log: log}
}

// Energize switches one zone's lights on. Invalid zones are ignored:
// the engine hands over its no-zone sentinel on the first switch.
func (d *Driver) Energize(z logic.Zone) {
	if !z.Valid() {
		return
	}
	if err := d.brd.SetRelay(int(z), true); err != nil {
		d.log.Warn("relay write failed", zap.Stringer("zone", z), zap.Error(err))
	}
}

// DeEnergize switches one zone's lights off.
func (d *Driver) DeEnergize(z logic.Zone) {
	if !z.Valid() {
		return
	}
	if err := d.brd.SetRelay(int(z), false); err != nil {
		d.log.Warn("relay write failed", zap.Stringer("zone", z), zap.Error(err))
	}
}

// SetColor shows one palette slot on the status LED, scaled down to the
// configured brightness. Slots wrap around the palette.
func (d *Driver) SetColor(slot int) {
	c := palette[((slot%len(palette))+len(palette))%len(palette)]
	if err := d.brd.SetIndicator(scale(c[0]), scale(c[1]), scale(c[2])); err != nil {
		d.log.Warn("indicator write failed", zap.Int("slot", slot), zap.Error(err))
	}
}

// Clear switches the status LED off.
func (d *Driver) Clear() {
	if err := d.brd.SetIndicator(0, 0, 0); err != nil {
		d.log.Warn("indicator write failed", zap.Error(err))
	}
}

// Flash blinks one palette slot. The count wraps to 1..8 so a bad
// caller cannot strobe the LED for minutes.
func (d *Driver) Flash(slot, count int) {
	n := count % len(palette)
	if n <= 0 {
		n += len(palette)
	}
	for i := 0; i < n; i++ {
		d.SetColor(slot)
		d.brd.Idle(flashOn)
		d.Clear()
		d.brd.Idle(flashOff)
	}
}

// RestUntilButtonPressed blocks until a full press and release of the
// mode button. Read errors count as released; enough of them in a row
// abandons the wait.
func (d *Driver) RestUntilButtonPressed() {
	if !d.waitButton(true) {
		return
	}
	d.waitButton(false)
}

func (d *Driver) waitButton(want bool) bool {
	faults := 0
	for {
		pressed, err := d.brd.ReadButton()
		if err != nil {
			faults++
			if faults >= maxReadFaults {
				d.log.Warn("giving up on button wait", zap.Error(err))
				return false
			}
			d.brd.Idle(restPoll)
			continue
		}
		faults = 0
		if pressed == want {
			return true
		}
		d.brd.Idle(restPoll)
	}
}

// IdleUntilGateAsserted blocks until the gate zone's sensor reports
// motion, polling slowly to keep the sleeping house quiet.
func (d *Driver) IdleUntilGateAsserted() {
	faults := 0
	for {
		sensors, err := d.brd.ReadSensors()
		if err != nil {
			faults++
			if faults >= maxReadFaults {
				d.log.Warn("giving up on gate wait", zap.Error(err))
				return
			}
			d.brd.Idle(gatePoll)
			continue
		}
		faults = 0
		if sensors[logic.GateZone] {
			return
		}
		d.brd.Idle(gatePoll)
	}
}

func scale(v uint8) uint8 {
	return uint8(int(v) * Brightness / 255)
}
