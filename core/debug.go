package core

import (
	"strconv"
	"sync"
	"time"
)

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Event captures a control-loop decision for post-mortem analysis
type Event struct {
	Type    uint8         // Event type code
	Channel uint8         // Velocity channel or wheel
	At      time.Duration // Clock time of the event
	Value1  float64       // Context-dependent value
	Value2  float64       // Context-dependent value
}

// Event type codes
const (
	EvtCommand       = 1 // Velocity command accepted
	EvtGovernorClamp = 2 // Commanded wheel speed over the limit
	EvtAccelLimit    = 3 // Output held back by the acceleration limit
	EvtFrameError    = 4 // Malformed frame discarded
	EvtOdometryReset = 5 // Odometry zeroed on request
	EvtDisabled      = 6 // Motors disabled
)

// Channel identifiers for Event.Channel
const (
	ChanLinear  = 0
	ChanAngular = 1
	ChanLeft    = 2
	ChanRight   = 3
)

// EventRingSize is the number of events kept for post-mortem dumps
const EventRingSize = 32

// EventRing is a fixed-size ring of the most recent events.
// Recording never blocks on I/O and never allocates.
type EventRing struct {
	mu   sync.Mutex
	ring [EventRingSize]Event
	head uint8
	n    uint8
}

// Record appends an event, overwriting the oldest once the ring is full
func (r *EventRing) Record(typ, channel uint8, at time.Duration, v1, v2 float64) {
	r.mu.Lock()
	r.ring[r.head] = Event{Type: typ, Channel: channel, At: at, Value1: v1, Value2: v2}
	r.head = (r.head + 1) % EventRingSize
	if r.n < EventRingSize {
		r.n++
	}
	r.mu.Unlock()
}

// Events returns the recorded events, oldest first
func (r *EventRing) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, 0, r.n)
	start := (r.head + EventRingSize - r.n) % EventRingSize
	for i := uint8(0); i < r.n; i++ {
		out = append(out, r.ring[(start+i)%EventRingSize])
	}
	return out
}

// Count returns the number of events of the given type currently held
func (r *EventRing) Count(typ uint8) int {
	n := 0
	for _, evt := range r.Events() {
		if evt.Type == typ {
			n++
		}
	}
	return n
}

// Clear empties the ring
func (r *EventRing) Clear() {
	r.mu.Lock()
	r.ring = [EventRingSize]Event{}
	r.head = 0
	r.n = 0
	r.mu.Unlock()
}

// Dump writes the ring through w, oldest first
func (r *EventRing) Dump(w DebugWriter) {
	if w == nil {
		return
	}

	w("[EVENTS] === Event Ring Dump ===")
	for _, evt := range r.Events() {
		w("[EVENTS] " + EventName(evt.Type) +
			" ch=" + strconv.Itoa(int(evt.Channel)) +
			" at=" + evt.At.String() +
			" v1=" + strconv.FormatFloat(evt.Value1, 'g', 6, 64) +
			" v2=" + strconv.FormatFloat(evt.Value2, 'g', 6, 64))
	}
	w("[EVENTS] === End Dump ===")
}

// EventName returns the log name of an event type
func EventName(typ uint8) string {
	switch typ {
	case EvtCommand:
		return "COMMAND"
	case EvtGovernorClamp:
		return "GOV_CLAMP"
	case EvtAccelLimit:
		return "ACCEL_LIMIT"
	case EvtFrameError:
		return "FRAME_ERR!"
	case EvtOdometryReset:
		return "ODOM_RESET"
	case EvtDisabled:
		return "DISABLED"
	default:
		return "UNKNOWN"
	}
}
