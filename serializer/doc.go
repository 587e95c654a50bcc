// Package serializer converts value graphs into JavaScript source that
// rebuilds an equal graph when evaluated.
//
// # Modes
//
// Serialize produces one self-contained program. A tree serializes to a
// bare literal. When a value is shared or cyclic the program starts with
// CrossReferenceHeader and only the shared values are bound to $R slots.
//
// CrossSerialize binds every object-like value to a $R slot and leaves the
// header to the caller, so several outputs can share one reference array.
//
// Cross is the incremental form used by the stream package: its reference
// table survives across passes, Promises and async iterables become $P()
// and $I() placeholders, and Patch renders the code that settles them.
//
// # Pipeline
//
// Each pass runs in two phases:
//
//	value ──parse──▶ Node tree ──generate──▶ code
//
// Parse classifies every value, records it in the reference table and
// reports unsupported values with their property path. Generate decides
// bindings from the visit counts collected by parse.
//
// A container that one of its descendants refers back to is written
// shell-first: the shell is bound, then the remaining children are
// assigned, so no reference ever precedes the binding it reads:
//
//	($R[0]={},$R[0].self=$R[0],$R[0])
//
// Nothing in this package is safe for concurrent use.
package serializer
