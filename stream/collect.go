package stream

import "context"

// Collect runs a session to completion and returns every snippet. When the
// session ends with an error the snippets emitted before it are returned
// with the error.
func Collect(ctx context.Context, v any, opts ...Option) ([]Snippet, error) {
	s, err := Start(ctx, v, opts...)
	if err != nil {
		return nil, err
	}
	var out []Snippet
	for snip := range s.Snippets() {
		out = append(out, snip)
	}
	return out, s.Err()
}
