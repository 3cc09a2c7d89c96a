// Package events reports controller decisions and lifecycle changes to
// the operator. The deployed controller has no network, so the journal
// on the console is the reporting surface; the payload formats here are
// the canonical single-line records an operator greps for.
package events

import (
	"encoding/json"
	"time"

	"github.com/mfreith1/MotionSensingLighting/internal/logic"
)

// Reporter emits decision and lifecycle events.
type Reporter interface {
	// Report emits a decision event. An error means the event was
	// dropped; the control loop carries on regardless.
	Report(event logic.Event) error

	// ReportSystem emits a lifecycle event.
	ReportSystem(event SystemEvent) error

	// Close flushes the reporter.
	Close() error
}

// SystemEvent represents a controller lifecycle event.
type SystemEvent struct {
	Timestamp time.Time
	Event     string // e.g. "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason    string // e.g. "SIGTERM", "SIGINT" (shutdown only)

	// Config is attached to STARTUP events.
	Config *SystemConfig

	// Heartbeat is attached to HEARTBEAT events.
	Heartbeat *HeartbeatInfo

	// RawPayload, if set, is emitted verbatim instead of the formatted
	// payload. Used for full status snapshots at shutdown.
	RawPayload []byte
}

// SystemConfig is the configuration snapshot attached to startup events.
type SystemConfig struct {
	TickMs         int64 `json:"tick_ms"`
	SleepTimeoutMs int64 `json:"sleep_timeout_ms"`
	HeartbeatMs    int64 `json:"heartbeat_ms"`
	Zones          int   `json:"zones"`
}

// HeartbeatInfo carries the periodic liveness summary.
type HeartbeatInfo struct {
	UptimeSeconds int64           `json:"uptime_seconds"`
	EventCounts   HeartbeatCounts `json:"event_counts"`
}

// HeartbeatCounts mirrors the engine's decision counters.
type HeartbeatCounts struct {
	ZoneSwitches int `json:"zone_switches"`
	ModeChanges  int `json:"mode_changes"`
	Clicks       int `json:"clicks"`
	Holds        int `json:"holds"`
}

// Payload is the record for a decision event.
type Payload struct {
	Lighting LightingPayload `json:"lighting"`
}

// LightingPayload contains the decision event details. Uptime is engine
// tick time, not wall time: the two drift apart across blocking waits.
type LightingPayload struct {
	UptimeMs int64  `json:"uptime_ms"`
	Event    string `json:"event"`
	Mode     string `json:"mode"`
	Zone     string `json:"zone"`
	FromMode string `json:"from_mode,omitempty"`
	FromZone string `json:"from_zone,omitempty"`
}

// FormatPayload creates the JSON record for a decision event.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Lighting: LightingPayload{
			UptimeMs: event.Uptime.Milliseconds(),
			Event:    string(event.Type),
			Mode:     event.Mode.String(),
			Zone:     event.Zone.String(),
		},
	}
	switch event.Type {
	case logic.EventModeChanged:
		payload.Lighting.FromMode = event.FromMode.String()
	case logic.EventZoneChanged:
		payload.Lighting.FromZone = event.FromZone.String()
	}
	return json.Marshal(payload)
}

// SystemPayload is the record for a lifecycle event.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the lifecycle event details.
type SystemPayloadInner struct {
	Timestamp string         `json:"timestamp"`
	Event     string         `json:"event"`
	Reason    string         `json:"reason,omitempty"`
	Config    *SystemConfig  `json:"config,omitempty"`
	Heartbeat *HeartbeatInfo `json:"heartbeat,omitempty"`
}

// FormatSystemPayload creates the JSON record for a lifecycle event.
// If event.RawPayload is set, it is returned directly (used for full
// status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
			Config:    event.Config,
			Heartbeat: event.Heartbeat,
		},
	}
	return json.Marshal(payload)
}
