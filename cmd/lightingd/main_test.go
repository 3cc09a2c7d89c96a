package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mfreith1/MotionSensingLighting/internal/board"
	"github.com/mfreith1/MotionSensingLighting/internal/events"
	"github.com/mfreith1/MotionSensingLighting/internal/lights"
	"github.com/mfreith1/MotionSensingLighting/internal/logic"
	"github.com/mfreith1/MotionSensingLighting/internal/stats"
)

func TestParsePins(t *testing.T) {
	got, err := parsePins("17,27,22,5,6")
	if err != nil {
		t.Fatalf("parsePins: %v", err)
	}
	want := [board.NumZones]int{17, 27, 22, 5, 6}
	if got != want {
		t.Errorf("pins: got %v, want %v", got, want)
	}

	// Spaces around entries are tolerated.
	got, err = parsePins(" 1, 2 ,3,4 , 5")
	if err != nil {
		t.Fatalf("parsePins with spaces: %v", err)
	}
	if got != ([board.NumZones]int{1, 2, 3, 4, 5}) {
		t.Errorf("pins with spaces: got %v", got)
	}
}

func TestParsePinsRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "1,2,3,4", "1,2,3,4,5,6", "1,2,3,4,x"} {
		if _, err := parsePins(in); err == nil {
			t.Errorf("parsePins(%q): expected error", in)
		}
	}
}

func TestPinListRoundTrip(t *testing.T) {
	cfg := board.DefaultConfig()

	s := pinList(cfg.SensorPins)
	if s != "17,27,22,5,6" {
		t.Errorf("pinList: got %q, want %q", s, "17,27,22,5,6")
	}

	back, err := parsePins(s)
	if err != nil {
		t.Fatalf("parsePins(pinList): %v", err)
	}
	if back != cfg.SensorPins {
		t.Errorf("round trip: got %v, want %v", back, cfg.SensorPins)
	}
}

func TestSignalName(t *testing.T) {
	if got := signalName(syscall.SIGINT); got != "SIGINT" {
		t.Errorf("SIGINT: got %q", got)
	}
	if got := signalName(syscall.SIGTERM); got != "SIGTERM" {
		t.Errorf("SIGTERM: got %q", got)
	}
	if got := signalName(syscall.SIGHUP); got != "UNKNOWN" {
		t.Errorf("SIGHUP: got %q, want UNKNOWN", got)
	}
}

func TestDumpStatus(t *testing.T) {
	tr := stats.NewTracker(time.Now(), stats.Config{TickMs: 5, Zones: 5})
	tr.Update(logic.ModeSensing, logic.ZoneBath, logic.ButtonUnpressed, logic.Counts{Clicks: 2}, 10*time.Second)

	var buf bytes.Buffer
	dumpStatus(&buf, tr, zap.NewNop())

	out := buf.String()
	if !strings.Contains(out, "mode:     sensing") {
		t.Errorf("dump missing mode line:\n%s", out)
	}
	if !strings.Contains(out, "zone:     bath") {
		t.Errorf("dump missing zone line:\n%s", out)
	}
	if !strings.Contains(out, "lighting_ticks_total") {
		t.Errorf("dump missing metrics section:\n%s", out)
	}
}

// failWriter rejects every write, standing in for a closed console pipe.
type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, errors.New("pipe gone") }

func TestDumpStatusWriteFailureIsLogged(t *testing.T) {
	core, logged := observer.New(zapcore.WarnLevel)
	tr := stats.NewTracker(time.Now(), stats.Config{TickMs: 5, Zones: 5})

	// Must not panic, must log the failed render, and must still attempt
	// the metrics section on the same writer.
	dumpStatus(failWriter{}, tr, zap.New(core))

	entries := logged.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 warn entry, got %d", len(entries))
	}
	if entries[0].Message != "status render failed" {
		t.Errorf("message: got %q, want %q", entries[0].Message, "status render failed")
	}
}

// --- runLoop tests ---

// fakeClock returns a function that yields start, start+step, start+2*step, ...
// on successive calls. Not safe for concurrent use (only called from runLoop's goroutine).
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * step)
		n++
		return t
	}
}

// frame is one tick's worth of scripted input levels.
type frame struct {
	sensors [board.NumZones]bool
	pressed bool
}

// scriptBoard serves pre-scripted input frames over a FakeBoard, advancing
// one frame per tick. The last frame repeats once the script runs out.
type scriptBoard struct {
	*board.FakeBoard
	frames []frame
	i      int
}

func newScriptBoard(frames []frame) *scriptBoard {
	return &scriptBoard{FakeBoard: board.NewFakeBoard(), frames: frames}
}

func (b *scriptBoard) ReadSensors() ([board.NumZones]bool, error) {
	return b.current().sensors, nil
}

// ReadButton is the second read of each tick, so it advances the script.
func (b *scriptBoard) ReadButton() (bool, error) {
	f := b.current()
	if b.i < len(b.frames) {
		b.i++
	}
	return f.pressed, nil
}

func (b *scriptBoard) current() frame {
	if b.i >= len(b.frames) {
		return b.frames[len(b.frames)-1]
	}
	return b.frames[b.i]
}

// repeat returns n copies of f.
func repeat(f frame, n int) []frame {
	out := make([]frame, n)
	for i := range out {
		out[i] = f
	}
	return out
}

// clickFrames is one short press, the release, and the tick that consumes
// the click signal.
func clickFrames() []frame {
	return []frame{{pressed: true}, {}, {}}
}

// runRunLoop drives runLoop with the given board for nTicks, then delivers
// the signals in order, returning runLoop's error.
func runRunLoop(t *testing.T, brd board.Board, acts logic.Actuator, rep *events.FakeReporter, tracker *stats.Tracker, heartbeat time.Duration, clock func() time.Time, dumpW io.Writer, nTicks int, sigs ...os.Signal) error {
	t.Helper()
	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)

	errCh := make(chan error, 1)
	go func() {
		errCh <- runLoop(brd, acts, rep, tracker, zap.NewNop(), heartbeat, clock, dumpW, tick, sig)
	}()

	for i := 0; i < nTicks; i++ {
		tick <- time.Time{}
	}
	for _, s := range sigs {
		sig <- s
	}

	return <-errCh
}

func newLoopFixture() (*board.FakeBoard, logic.Actuator, *events.FakeReporter, *stats.Tracker) {
	fb := board.NewFakeBoard()
	driver := lights.NewDriver(fb, zap.NewNop())
	rep := events.NewFakeReporter()
	tracker := stats.NewTracker(time.Now(), stats.Config{TickMs: 5, Zones: 5})
	return fb, driver, rep, tracker
}

func TestRunLoopQuietBoardShutsDownCleanly(t *testing.T) {
	fb, driver, rep, tracker := newLoopFixture()
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 5*time.Millisecond)

	err := runRunLoop(t, fb, driver, rep, tracker, 0, clock, io.Discard, 4, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	// A quiet board produces no decision events.
	if len(rep.Events) != 0 {
		t.Errorf("expected 0 decision events, got %d", len(rep.Events))
	}

	// Should have exactly one system event: SHUTDOWN
	if len(rep.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(rep.SystemEvents))
	}
	se := rep.SystemEvents[0]
	if se.Event != "SHUTDOWN" {
		t.Errorf("expected SHUTDOWN event, got %q", se.Event)
	}
	if se.Reason != "SIGTERM" {
		t.Errorf("expected reason SIGTERM, got %q", se.Reason)
	}
	if !strings.Contains(string(rep.SystemPayloads[0]), `"event":"SHUTDOWN"`) {
		t.Errorf("shutdown payload missing status snapshot: %s", rep.SystemPayloads[0])
	}

	// The power-on state reached the relays and the tracker.
	if log := fb.RelayLog(); len(log) != 1 || log[0] != "1:on" {
		t.Errorf("relay log: got %v, want [1:on]", log)
	}
	snap := tracker.Snapshot()
	if snap.Mode != logic.ModeSwitching {
		t.Errorf("tracker mode: got %v, want switching", snap.Mode)
	}
	if snap.Zone != logic.ZoneDining {
		t.Errorf("tracker zone: got %v, want dining", snap.Zone)
	}
	if snap.EngineUptime != 4*logic.TickPeriod {
		t.Errorf("tracker engine uptime: got %v, want %v", snap.EngineUptime, 4*logic.TickPeriod)
	}
}

func TestRunLoopZoneSwitchPipeline(t *testing.T) {
	// Four clicks walk the candidate to sensing, a quiet select window
	// commits it, then hall+kitchen motion moves the light.
	var frames []frame
	for i := 0; i < 4; i++ {
		frames = append(frames, clickFrames()...)
	}
	frames = append(frames, repeat(frame{}, int(logic.SelectWindow/logic.TickPeriod))...)

	motion := frame{}
	motion.sensors[logic.ZoneHall] = true
	motion.sensors[logic.ZoneKitchen] = true
	frames = append(frames, repeat(motion, 10)...)

	sb := newScriptBoard(frames)
	driver := lights.NewDriver(sb, zap.NewNop())
	rep := events.NewFakeReporter()
	tracker := stats.NewTracker(time.Now(), stats.Config{TickMs: 5, Zones: 5})
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 5*time.Millisecond)

	err := runRunLoop(t, sb, driver, rep, tracker, 0, clock, io.Discard, len(frames), syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	want := []logic.EventType{
		logic.EventClick, logic.EventClick, logic.EventClick, logic.EventClick,
		logic.EventModeChanged, logic.EventZoneChanged,
	}
	got := rep.TypesSeen()
	if len(got) != len(want) {
		t.Fatalf("event sequence: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event sequence: got %v, want %v", got, want)
		}
	}

	if log := sb.RelayLog(); len(log) != 3 || log[0] != "1:on" || log[1] != "1:off" || log[2] != "2:on" {
		t.Errorf("relay log: got %v, want [1:on 1:off 2:on]", log)
	}

	snap := tracker.Snapshot()
	if snap.Mode != logic.ModeSensing {
		t.Errorf("tracker mode: got %v, want sensing", snap.Mode)
	}
	if snap.Zone != logic.ZoneKitchen {
		t.Errorf("tracker zone: got %v, want kitchen", snap.Zone)
	}
	if snap.Counts != (logic.Counts{ZoneSwitches: 1, ModeChanges: 1, Clicks: 4}) {
		t.Errorf("tracker counts: got %+v", snap.Counts)
	}
	if wantUp := time.Duration(len(frames)) * logic.TickPeriod; snap.EngineUptime != wantUp {
		t.Errorf("tracker engine uptime: got %v, want %v", snap.EngineUptime, wantUp)
	}
	if len(snap.Recent) != len(want) {
		t.Errorf("recent history: got %d events, want %d", len(snap.Recent), len(want))
	}
}

func TestRunLoopReadErrorSkipsTick(t *testing.T) {
	fb, driver, rep, tracker := newLoopFixture()
	fb.ReadError = errors.New("sensor bus dead")
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 5*time.Millisecond)

	err := runRunLoop(t, fb, driver, rep, tracker, 0, clock, io.Discard, 3, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	// Every tick was skipped: the engine never ran, but shutdown still works.
	if len(rep.Events) != 0 {
		t.Errorf("expected 0 decision events, got %d", len(rep.Events))
	}
	if len(rep.SystemEvents) != 1 || rep.SystemEvents[0].Event != "SHUTDOWN" {
		t.Fatalf("expected a single SHUTDOWN system event, got %+v", rep.SystemEvents)
	}
	if snap := tracker.Snapshot(); snap.EngineUptime != 0 {
		t.Errorf("tracker should not advance on skipped ticks, engine uptime %v", snap.EngineUptime)
	}
}

func TestRunLoopHeartbeat(t *testing.T) {
	// 5-minute clock steps against a 15-minute interval: the third tick
	// crosses the threshold, the fourth does not reach the next one.
	fb, driver, rep, tracker := newLoopFixture()
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 5*time.Minute)

	err := runRunLoop(t, fb, driver, rep, tracker, 15*time.Minute, clock, io.Discard, 4, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(rep.SystemEvents) != 2 {
		t.Fatalf("expected HEARTBEAT and SHUTDOWN, got %+v", rep.SystemEvents)
	}
	hb := rep.SystemEvents[0]
	if hb.Event != "HEARTBEAT" {
		t.Fatalf("expected HEARTBEAT first, got %q", hb.Event)
	}
	if hb.Heartbeat == nil {
		t.Fatal("HEARTBEAT event missing heartbeat info")
	}
	if hb.Heartbeat.UptimeSeconds != 900 {
		t.Errorf("heartbeat uptime: got %d, want 900", hb.Heartbeat.UptimeSeconds)
	}
	if hb.Heartbeat.EventCounts != (events.HeartbeatCounts{}) {
		t.Errorf("heartbeat counts: got %+v, want zeroes", hb.Heartbeat.EventCounts)
	}
	if rep.SystemEvents[1].Event != "SHUTDOWN" {
		t.Errorf("expected SHUTDOWN last, got %q", rep.SystemEvents[1].Event)
	}
}

func TestRunLoopHeartbeatDisabled(t *testing.T) {
	fb, driver, rep, tracker := newLoopFixture()
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 5*time.Minute)

	err := runRunLoop(t, fb, driver, rep, tracker, 0, clock, io.Discard, 4, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(rep.SystemEvents) != 1 || rep.SystemEvents[0].Event != "SHUTDOWN" {
		t.Errorf("expected only SHUTDOWN with heartbeat disabled, got %+v", rep.SystemEvents)
	}
}

func TestRunLoopShutdownSIGINT(t *testing.T) {
	fb, driver, rep, tracker := newLoopFixture()
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 5*time.Millisecond)

	err := runRunLoop(t, fb, driver, rep, tracker, 0, clock, io.Discard, 2, syscall.SIGINT)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(rep.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(rep.SystemEvents))
	}
	if rep.SystemEvents[0].Reason != "SIGINT" {
		t.Errorf("expected reason SIGINT, got %q", rep.SystemEvents[0].Reason)
	}
}

func TestRunLoopStatusDumpSignal(t *testing.T) {
	fb, driver, rep, tracker := newLoopFixture()
	clock := fakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 5*time.Millisecond)

	var dump bytes.Buffer
	err := runRunLoop(t, fb, driver, rep, tracker, 0, clock, &dump, 2, syscall.SIGUSR1, syscall.SIGTERM)
	if err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	// The dump signal must not end the loop or produce a system event.
	if len(rep.SystemEvents) != 1 || rep.SystemEvents[0].Event != "SHUTDOWN" {
		t.Fatalf("expected only the final SHUTDOWN, got %+v", rep.SystemEvents)
	}

	out := dump.String()
	// One block for SIGUSR1, one for the shutdown dump.
	if got := strings.Count(out, "mode:     switching"); got != 2 {
		t.Errorf("expected 2 status blocks, found %d:\n%s", got, out)
	}
	if !strings.Contains(out, "lighting_ticks_total") {
		t.Errorf("dump missing metrics section:\n%s", out)
	}
}
