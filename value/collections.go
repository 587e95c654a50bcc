package value

// Map is a JS Map with insertion-ordered entries and SameValueZero keys.
// Dates are time.Time values without identity, so two Date keys holding the
// same instant are the same key.
type Map struct {
	index map[any]int
	keys  []any
	vals  []any
}

// NewMap creates an empty Map.
func NewMap() *Map {
	return &Map{index: make(map[any]int)}
}

// Set stores v under k.
func (m *Map) Set(k, v any) {
	key := sameValueZero(k)
	if i, ok := m.index[key]; ok {
		m.vals[i] = v
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
}

// Get returns the value stored under k.
func (m *Map) Get(k any) (any, bool) {
	i, ok := m.index[sameValueZero(k)]
	if !ok {
		return Undefined, false
	}
	return m.vals[i], true
}

// Has reports whether k is present.
func (m *Map) Has(k any) bool {
	_, ok := m.index[sameValueZero(k)]
	return ok
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.keys)
}

// Each calls fn for every entry in insertion order until fn returns false.
func (m *Map) Each(fn func(k, v any) bool) {
	for i := range m.keys {
		if !fn(m.keys[i], m.vals[i]) {
			return
		}
	}
}

// Set is a JS Set with insertion-ordered members and SameValueZero equality.
// Dates compare by instant, as for Map keys.
type Set struct {
	index   map[any]struct{}
	members []any
}

// NewSet creates a Set holding the distinct members of items.
func NewSet(items ...any) *Set {
	s := &Set{index: make(map[any]struct{})}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// Add inserts v if absent.
func (s *Set) Add(v any) {
	key := sameValueZero(v)
	if _, ok := s.index[key]; ok {
		return
	}
	s.index[key] = struct{}{}
	s.members = append(s.members, v)
}

// Has reports whether v is a member.
func (s *Set) Has(v any) bool {
	_, ok := s.index[sameValueZero(v)]
	return ok
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.members)
}

// Each calls fn for every member in insertion order until fn returns false.
func (s *Set) Each(fn func(v any) bool) {
	for _, m := range s.members {
		if !fn(m) {
			return
		}
	}
}
