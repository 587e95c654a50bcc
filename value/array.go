package value

// Array is a JS array. Elements never assigned hold Hole.
type Array struct {
	elems []any
}

// NewArray creates an array holding elems.
func NewArray(elems ...any) *Array {
	a := &Array{elems: make([]any, len(elems))}
	copy(a.elems, elems)
	return a
}

// Len returns the array length.
func (a *Array) Len() int {
	return len(a.elems)
}

// At returns the element at i. Holes and out-of-range indices read as
// Undefined, as they do in JS.
func (a *Array) At(i int) any {
	if i < 0 || i >= len(a.elems) {
		return Undefined
	}
	if _, hole := a.elems[i].(HoleType); hole {
		return Undefined
	}
	return a.elems[i]
}

// IsHole reports whether index i was never assigned.
func (a *Array) IsHole(i int) bool {
	if i < 0 || i >= len(a.elems) {
		return false
	}
	_, hole := a.elems[i].(HoleType)
	return hole
}

// Set assigns index i, growing the array with holes when needed.
func (a *Array) Set(i int, v any) {
	for len(a.elems) <= i {
		a.elems = append(a.elems, Hole)
	}
	a.elems[i] = v
}

// SetLen truncates the array or extends it with holes.
func (a *Array) SetLen(n int) {
	if n < 0 {
		n = 0
	}
	for len(a.elems) < n {
		a.elems = append(a.elems, Hole)
	}
	a.elems = a.elems[:n]
}

// Append pushes values at the end.
func (a *Array) Append(vs ...any) {
	a.elems = append(a.elems, vs...)
}

// Elems returns a copy of the raw elements, holes included.
func (a *Array) Elems() []any {
	out := make([]any, len(a.elems))
	copy(out, a.elems)
	return out
}
