package plugin

import (
	"github.com/wippyai/crossval/errors"
)

// Plugin handles one family of host values.
type Plugin interface {
	// Tag names the plugin. Tags are unique within a Registry.
	Tag() string

	// Test reports whether the plugin claims v.
	Test(v any) bool

	// Encode converts a claimed value into a description for Generate.
	Encode(v any, enc Encoder) (any, error)

	// Generate renders a description produced by Encode as a JS expression.
	Generate(desc any, gen Generator) (string, error)
}

// Node is an encoded child value. It is opaque to plugins.
type Node struct {
	impl any
}

// WrapNode is used by serializers to hand their node type to plugins.
func WrapNode(impl any) Node {
	return Node{impl: impl}
}

// Impl returns the serializer's node.
func (n Node) Impl() any {
	return n.impl
}

// Encoder encodes child values during Encode.
type Encoder interface {
	// Encode visits v as a child of the value being encoded.
	Encode(key string, v any) (Node, error)
}

// Generator renders child nodes during Generate.
type Generator interface {
	// Generate renders a node produced by the matching Encoder.
	Generate(n Node) (string, error)
}

// Registry is an ordered, immutable plugin set.
type Registry struct {
	byTag   map[string]Plugin
	plugins []Plugin
}

// NewRegistry builds a registry. Tags must be non-empty and unique.
func NewRegistry(plugins ...Plugin) (*Registry, error) {
	r := &Registry{byTag: make(map[string]Plugin, len(plugins))}
	for _, p := range plugins {
		if p == nil {
			return nil, errors.Registration(errors.PhasePlugin, "<nil>", "nil plugin")
		}
		tag := p.Tag()
		if tag == "" {
			return nil, errors.Registration(errors.PhasePlugin, tag, "empty tag")
		}
		if _, exists := r.byTag[tag]; exists {
			return nil, errors.Registration(errors.PhasePlugin, tag, "duplicate tag")
		}
		r.byTag[tag] = p
		r.plugins = append(r.plugins, p)
	}
	Logger().Debug("plugin registry built", zapTags(r.plugins))
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error.
func MustRegistry(plugins ...Plugin) *Registry {
	r, err := NewRegistry(plugins...)
	if err != nil {
		panic(err)
	}
	return r
}

// Match returns the first plugin that claims v.
func (r *Registry) Match(v any) (Plugin, bool) {
	if r == nil {
		return nil, false
	}
	for _, p := range r.plugins {
		if p.Test(v) {
			return p, true
		}
	}
	return nil, false
}

// Lookup returns the plugin registered under tag.
func (r *Registry) Lookup(tag string) (Plugin, bool) {
	if r == nil {
		return nil, false
	}
	p, ok := r.byTag[tag]
	return p, ok
}

// Plugins returns the plugins in registration order.
func (r *Registry) Plugins() []Plugin {
	if r == nil {
		return nil
	}
	out := make([]Plugin, len(r.plugins))
	copy(out, r.plugins)
	return out
}

// Len returns the number of plugins.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.plugins)
}
