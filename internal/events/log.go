package events

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mfreith1/MotionSensingLighting/internal/logic"
)

// LogReporter writes events to the process log.
type LogReporter struct {
	log *zap.Logger
}

var _ Reporter = (*LogReporter)(nil)

// NewLogReporter creates a reporter over the given logger.
func NewLogReporter(log *zap.Logger) *LogReporter {
	return &LogReporter{log: log}
}

// Report logs one decision event with the canonical payload attached.
func (r *LogReporter) Report(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format event payload: %w", err)
	}
	r.log.Info(string(event.Type),
		zap.Stringer("mode", event.Mode),
		zap.Stringer("zone", event.Zone),
		zap.Int64("uptime_ms", event.Uptime.Milliseconds()),
		zap.ByteString("payload", payload),
	)
	return nil
}

// ReportSystem logs one lifecycle event.
func (r *LogReporter) ReportSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	r.log.Info(event.Event, zap.ByteString("payload", payload))
	return nil
}

// Close flushes the log. Sync errors on console outputs are routine and
// dropped.
func (r *LogReporter) Close() error {
	_ = r.log.Sync()
	return nil
}
