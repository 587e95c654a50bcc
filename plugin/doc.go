// Package plugin defines the extension point for host-specific value types.
//
// A Plugin claims values with Test, turns a claimed value into an
// intermediate description with Encode, and renders that description as a
// JS expression with Generate:
//
//	value ──Test──▶ claimed ──Encode──▶ description ──Generate──▶ code
//
// Child values inside a description (a File's bytes, a FormData entry) are
// encoded through the Encoder the serializer passes in, which returns an
// opaque Node. Generate hands each Node back to the Generator to render it,
// so children keep reference identity with the rest of the graph.
//
// Plugins are tried in registration order, after primitives and before the
// built-in object handlers. A plugin that claims a value must either produce
// code or return an error; the serializer reports the failure as a plugin
// error and never falls back to the built-in handlers.
//
// The web and wasm subpackages provide plugins for common host types.
package plugin
