package serializer

import (
	"github.com/wippyai/crossval/plugin"
	"github.com/wippyai/crossval/value"
)

// Node is the parsed form of one value occurrence.
type Node struct {
	Desc   any           // plugin description
	Plugin plugin.Plugin // plugin that claimed the value
	Entry  *Entry        // nil for values without identity

	Code    string   // literal code for primitives and leaf objects
	Name    string   // error constructor name
	Message string   // error message
	Keys    []string // object keys, parallel to Items
	Items   []*Node  // children; a nil item is an array hole

	// Split is the index of the first child that refers back to this node.
	// Children from Split on are assigned after the shell is bound.
	// -1 when no child does.
	Split int
	slot  int
	path  []string // plugin nodes keep their path for generate errors

	Kind     Kind
	Ref      bool // repeat occurrence of Entry
	Rejected bool // settled promise state in sync modes
	Async    bool // placeholder for a pending part
}

// Async is a pending part discovered by a Cross pass. Exactly one of
// Promise and Iterable is set.
type Async struct {
	Promise  *value.Promise
	Iterable value.AsyncIterable
	ID       uint32
}
