// Package stats provides a thread-safe status tracker for the lighting
// controller daemon. The controller has no network listener, so the tracker
// is read on demand: signal handlers render it to the console and the
// shutdown path attaches it to the final system event.
package stats

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"

	"github.com/mfreith1/MotionSensingLighting/internal/logic"
)

// recentCapacity bounds the decision-event history kept for dumps.
const recentCapacity = 32

// Config contains daemon configuration for display.
type Config struct {
	TickMs         int64
	SleepTimeoutMs int64
	HeartbeatMs    int64
	Zones          int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Mode         logic.Mode
	Zone         logic.Zone
	Button       logic.ButtonState
	Counts       logic.Counts
	EngineUptime time.Duration // tick time accumulated by the decision engine
	StartTime    time.Time
	Now          time.Time
	Recent       []logic.Event // oldest first
	Config       Config
}

// Uptime returns the wall-clock duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu     sync.RWMutex
	snap   Snapshot
	recent *eventRing

	// Counters live in the package-global metrics registry; GetOrCreate
	// keeps repeated Tracker construction in tests from double-registering.
	ticks  *metrics.Counter
	events map[logic.EventType]*metrics.Counter
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	t := &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		recent: newEventRing(recentCapacity),
		ticks:  metrics.GetOrCreateCounter("lighting_ticks_total"),
		events: make(map[logic.EventType]*metrics.Counter),
	}
	for _, et := range []logic.EventType{
		logic.EventZoneChanged,
		logic.EventModeChanged,
		logic.EventClick,
		logic.EventHoldStart,
	} {
		t.events[et] = metrics.GetOrCreateCounter(fmt.Sprintf(`lighting_events_total{event=%q}`, et))
	}
	return t
}

// Update sets mode, zone, button signal, event counts, and engine uptime.
// Called from runLoop on every tick.
func (t *Tracker) Update(mode logic.Mode, zone logic.Zone, button logic.ButtonState, counts logic.Counts, engineUptime time.Duration) {
	t.ticks.Inc()
	t.mu.Lock()
	t.snap.Mode = mode
	t.snap.Zone = zone
	t.snap.Button = button
	t.snap.Counts = counts
	t.snap.EngineUptime = engineUptime
	t.mu.Unlock()
}

// Record appends a decision event to the recent-event history and bumps
// its Prometheus counter.
func (t *Tracker) Record(e logic.Event) {
	if c, ok := t.events[e.Type]; ok {
		c.Inc()
	}
	t.mu.Lock()
	t.recent.push(e)
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Recent = t.recent.list()
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}

// WritePrometheus dumps the global metrics registry in Prometheus text
// format. Nothing scrapes the daemon; the dump rides the same console
// surface as the status block.
func WritePrometheus(w io.Writer) {
	metrics.WritePrometheus(w, false)
}
