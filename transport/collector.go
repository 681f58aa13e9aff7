package transport

// EventType identifies the kind of a collected event.
type EventType int

const (
	// EventTransport signals that transport or negotiation state changed.
	EventTransport EventType = iota
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTransport:
		return "Transport"
	default:
		return "Unknown"
	}
}

// Event is a single collected occurrence.
type Event struct {
	Type      EventType
	Transport *Transport
}

// Collector accumulates events for the application to drain. Duplicate
// events are harmless; consumers treat them as hints to re-inspect state.
type Collector struct {
	events []Event
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Put appends an event.
func (c *Collector) Put(e Event) {
	c.events = append(c.events, e)
}

// Next removes and returns the oldest event. ok is false when the
// collector is empty.
func (c *Collector) Next() (e Event, ok bool) {
	if len(c.events) == 0 {
		return Event{}, false
	}
	e = c.events[0]
	c.events = c.events[1:]
	return e, true
}

// Len returns the number of pending events.
func (c *Collector) Len() int {
	return len(c.events)
}
