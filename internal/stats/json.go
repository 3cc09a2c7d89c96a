package stats

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event          string       `json:"event,omitempty"`
	Reason         string       `json:"reason,omitempty"`
	Mode           string       `json:"mode"`
	Zone           string       `json:"zone"`
	Button         string       `json:"button"`
	UptimeSeconds  int64        `json:"uptime_seconds"`
	EngineUptimeMs int64        `json:"engine_uptime_ms"`
	StartTime      string       `json:"start_time"`
	Timestamp      string       `json:"timestamp"`
	Counts         CountsJSON   `json:"event_counts"`
	Recent         []RecentJSON `json:"recent_events,omitempty"`
	Config         ConfigJSON   `json:"config"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	ZoneSwitches int `json:"zone_switches"`
	ModeChanges  int `json:"mode_changes"`
	Clicks       int `json:"clicks"`
	Holds        int `json:"holds"`
}

// RecentJSON is the JSON representation of one recent decision event.
type RecentJSON struct {
	UptimeMs int64  `json:"uptime_ms"`
	Event    string `json:"event"`
	Mode     string `json:"mode"`
	Zone     string `json:"zone"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs         int64 `json:"tick_ms"`
	SleepTimeoutMs int64 `json:"sleep_timeout_ms"`
	HeartbeatMs    int64 `json:"heartbeat_ms"`
	Zones          int   `json:"zones"`
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		Mode:           snap.Mode.String(),
		Zone:           snap.Zone.String(),
		Button:         snap.Button.String(),
		UptimeSeconds:  int64(snap.Uptime().Truncate(time.Second).Seconds()),
		EngineUptimeMs: snap.EngineUptime.Milliseconds(),
		StartTime:      snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:      snap.Now.UTC().Format(time.RFC3339),
		Counts: CountsJSON{
			ZoneSwitches: snap.Counts.ZoneSwitches,
			ModeChanges:  snap.Counts.ModeChanges,
			Clicks:       snap.Counts.Clicks,
			Holds:        snap.Counts.Holds,
		},
		Config: ConfigJSON{
			TickMs:         snap.Config.TickMs,
			SleepTimeoutMs: snap.Config.SleepTimeoutMs,
			HeartbeatMs:    snap.Config.HeartbeatMs,
			Zones:          snap.Config.Zones,
		},
	}
}

func buildRecent(snap Snapshot, inner *StatusInner) {
	for _, e := range snap.Recent {
		inner.Recent = append(inner.Recent, RecentJSON{
			UptimeMs: e.Uptime.Milliseconds(),
			Event:    string(e.Type),
			Mode:     e.Mode.String(),
			Zone:     e.Zone.String(),
		})
	}
}

// FormatJSON returns the indented JSON status for the console dump
// (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildRecent(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the compact JSON status attached to a system
// event, such as the shutdown report.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildRecent(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
