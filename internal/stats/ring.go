package stats

import "github.com/mfreith1/MotionSensingLighting/internal/logic"

// eventRing is a fixed-capacity FIFO holding the most recent decision
// events. Overwriting the oldest entry is normal operation, not loss.
// Not safe for concurrent use — the Tracker's lock covers it.
type eventRing struct {
	buf      []logic.Event
	capacity int
	head     int // next write position
	count    int
}

func newEventRing(capacity int) *eventRing {
	return &eventRing{
		buf:      make([]logic.Event, capacity),
		capacity: capacity,
	}
}

func (r *eventRing) push(e logic.Event) {
	// Once full, head already points at the oldest entry.
	r.buf[r.head] = e
	r.head = (r.head + 1) % r.capacity
	if r.count < r.capacity {
		r.count++
	}
}

// list returns the buffered events oldest-first without consuming them,
// so back-to-back dumps show the same history.
func (r *eventRing) list() []logic.Event {
	if r.count == 0 {
		return nil
	}

	result := make([]logic.Event, r.count)
	// Oldest item is at (head - count) mod capacity
	start := (r.head - r.count + r.capacity) % r.capacity
	for i := 0; i < r.count; i++ {
		result[i] = r.buf[(start+i)%r.capacity]
	}
	return result
}

func (r *eventRing) len() int {
	return r.count
}
