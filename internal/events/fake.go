package events

import (
	"github.com/mfreith1/MotionSensingLighting/internal/logic"
)

// FakeReporter records reported events for test assertions. It is not
// safe for concurrent use; tests inspect it after the loop under test
// has stopped.
type FakeReporter struct {
	// Events contains all decision events that were reported.
	Events []logic.Event

	// Payloads contains the formatted records for those events.
	Payloads [][]byte

	// SystemEvents contains all lifecycle events that were reported.
	SystemEvents []SystemEvent

	// SystemPayloads contains the formatted records for those events.
	SystemPayloads [][]byte

	// ReportError, if set, will be returned by Report.
	ReportError error

	// ReportSystemError, if set, will be returned by ReportSystem.
	ReportSystemError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeReporter creates a FakeReporter for testing.
func NewFakeReporter() *FakeReporter {
	return &FakeReporter{}
}

// Report records the decision event.
func (f *FakeReporter) Report(event logic.Event) error {
	if f.ReportError != nil {
		return f.ReportError
	}

	f.Events = append(f.Events, event)

	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Payloads = append(f.Payloads, payload)

	return nil
}

// ReportSystem records the lifecycle event.
func (f *FakeReporter) ReportSystem(event SystemEvent) error {
	if f.ReportSystemError != nil {
		return f.ReportSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// Close marks the reporter as closed.
func (f *FakeReporter) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded events.
func (f *FakeReporter) Reset() {
	f.Events = nil
	f.Payloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.ReportError = nil
	f.ReportSystemError = nil
}

// TypesSeen returns the decision event types in report order.
func (f *FakeReporter) TypesSeen() []logic.EventType {
	out := make([]logic.EventType, len(f.Events))
	for i, e := range f.Events {
		out[i] = e.Type
	}
	return out
}
