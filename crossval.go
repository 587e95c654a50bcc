package crossval

import (
	"context"

	"github.com/wippyai/crossval/plugin"
	"github.com/wippyai/crossval/script"
	"github.com/wippyai/crossval/serializer"
	"github.com/wippyai/crossval/stream"
)

// StreamOptions configures CrossSerializeStream.
type StreamOptions = stream.StreamOptions

// Serialize renders v as one self-contained expression.
func Serialize(v any, plugins ...plugin.Plugin) (string, error) {
	return serializer.Serialize(v, serializer.WithPlugins(plugins...))
}

// CrossSerialize renders v binding every object to $R. The output expects
// CrossReferenceHeader to have run first.
func CrossSerialize(v any, plugins ...plugin.Plugin) (string, error) {
	return serializer.CrossSerialize(v, serializer.WithPlugins(plugins...))
}

// CrossSerializeStream streams v through callbacks and returns a function
// that cancels the session.
func CrossSerializeStream(v any, opts StreamOptions) (cancel func()) {
	return stream.CrossSerializeStream(v, opts)
}

// CrossReferenceHeader returns the prelude that defines $R, $P and $I.
func CrossReferenceHeader() string {
	return serializer.CrossReferenceHeader()
}

// Deserialize evaluates JavaScript source into a value. Code produced by
// Serialize reads back into an equivalent graph.
func Deserialize(ctx context.Context, src string, globals ...map[string]any) (any, error) {
	var opts []script.Option
	for _, g := range globals {
		opts = append(opts, script.WithGlobals(g))
	}
	return script.Eval(ctx, src, opts...)
}
