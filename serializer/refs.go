package serializer

import "github.com/wippyai/crossval/value"

// State is the visit state of a reference entry.
type State uint8

const (
	// StateVisiting marks a value whose children are being parsed.
	StateVisiting State = iota
	// StateDone marks a fully parsed value.
	StateDone
)

func (s State) String() string {
	if s == StateVisiting {
		return "visiting"
	}
	return "done"
}

// Entry tracks one object-like value in a reference table.
type Entry struct {
	node  *Node
	ID    uint32
	Seen  int
	State State
	Bound bool
}

// EventType identifies a reference table event.
type EventType uint8

const (
	EventCreated EventType = iota
	EventReferenced
	EventCycle
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventReferenced:
		return "referenced"
	case EventCycle:
		return "cycle"
	}
	return "unknown"
}

// Event describes a reference table lookup.
type Event struct {
	Value any
	Type  EventType
	ID    uint32
}

// Observer receives reference table events.
type Observer interface {
	OnRefEvent(e Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(e Event)

func (f ObserverFunc) OnRefEvent(e Event) { f(e) }

// Refs maps value identity to reference entries. IDs are assigned in visit
// order starting at 0 and are never reused.
type Refs struct {
	entries   map[any]*Entry
	observers []Observer
	next      uint32
}

// NewRefs creates an empty reference table.
func NewRefs() *Refs {
	return &Refs{entries: make(map[any]*Entry)}
}

// GetOrCreate returns the entry for v, creating it on the first visit.
// A repeat visit increments Seen. The second result reports creation.
// Values without identity get a fresh, untracked entry every time.
func (t *Refs) GetOrCreate(v any) (*Entry, bool) {
	key, ok := value.Identity(v)
	if !ok {
		return &Entry{ID: t.alloc(), Seen: 1}, true
	}
	if e, exists := t.entries[key]; exists {
		e.Seen++
		typ := EventReferenced
		if e.State == StateVisiting {
			typ = EventCycle
		}
		t.notify(Event{Type: typ, ID: e.ID, Value: v})
		return e, false
	}
	e := &Entry{ID: t.alloc(), Seen: 1}
	t.entries[key] = e
	t.notify(Event{Type: EventCreated, ID: e.ID, Value: v})
	return e, true
}

// Lookup returns the entry for v without recording a visit.
func (t *Refs) Lookup(v any) (*Entry, bool) {
	key, ok := value.Identity(v)
	if !ok {
		return nil, false
	}
	e, exists := t.entries[key]
	return e, exists
}

// Len returns the number of tracked values.
func (t *Refs) Len() int {
	return len(t.entries)
}

// Subscribe adds an observer for table events.
func (t *Refs) Subscribe(o Observer) {
	t.observers = append(t.observers, o)
}

func (t *Refs) alloc() uint32 {
	id := t.next
	t.next++
	return id
}

func (t *Refs) notify(e Event) {
	for _, o := range t.observers {
		o.OnRefEvent(e)
	}
}
