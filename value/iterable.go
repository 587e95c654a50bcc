package value

import (
	"context"
	"sync"
)

// IterResult is one step of an async iteration. When Done is true, Value is
// the iterator's return value.
type IterResult struct {
	Value any
	Done  bool
}

// AsyncIterable is the capability the serializer recognizes as a JS async
// iterable. Next blocks until the next step is available or ctx is done.
// A non-context error means the iteration threw; ReasonOf extracts the
// thrown value.
type AsyncIterable interface {
	Next(ctx context.Context) (IterResult, error)
}

type streamState uint8

const (
	streamOpen streamState = iota
	streamDone
	streamFailed
)

// Stream is a push-driven AsyncIterable. Producers call Push, then Close or
// Fail; consumers call Next.
type Stream struct {
	final  any
	signal chan struct{}
	queue  []any
	mu     sync.Mutex
	state  streamState
}

// NewStream creates an open stream.
func NewStream() *Stream {
	return &Stream{signal: make(chan struct{}), final: Undefined}
}

// StreamOf creates a stream that yields items then completes.
func StreamOf(items ...any) *Stream {
	s := NewStream()
	for _, it := range items {
		s.Push(it)
	}
	s.Close(Undefined)
	return s
}

// Push appends v. It reports false once the stream is closed or failed.
func (s *Stream) Push(v any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != streamOpen {
		return false
	}
	s.queue = append(s.queue, v)
	s.wakeLocked()
	return true
}

// Close completes the stream with a return value.
func (s *Stream) Close(ret any) {
	s.finish(streamDone, ret)
}

// Fail terminates the stream with a thrown reason.
func (s *Stream) Fail(reason any) {
	s.finish(streamFailed, reason)
}

func (s *Stream) finish(state streamState, final any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != streamOpen {
		return
	}
	s.state = state
	s.final = final
	s.wakeLocked()
}

func (s *Stream) wakeLocked() {
	close(s.signal)
	s.signal = make(chan struct{})
}

// Buffered returns the items pushed but not yet consumed.
func (s *Stream) Buffered() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]any, len(s.queue))
	copy(out, s.queue)
	return out
}

// Next implements AsyncIterable. Buffered items are delivered before the
// completion or failure.
func (s *Stream) Next(ctx context.Context) (IterResult, error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			v := s.queue[0]
			s.queue[0] = nil
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return IterResult{Value: v}, nil
		}
		switch s.state {
		case streamDone:
			final := s.final
			s.mu.Unlock()
			return IterResult{Value: final, Done: true}, nil
		case streamFailed:
			final := s.final
			s.mu.Unlock()
			return IterResult{}, &Rejection{Reason: final}
		}
		wait := s.signal
		s.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return IterResult{}, ctx.Err()
		}
	}
}

type genStep struct {
	err error
	res IterResult
}

// Generator is a lazy AsyncIterable driven by a Go function, mirroring an
// async generator: the body starts on the first Next and each yield blocks
// until the consumer asks for the following value.
type Generator struct {
	ctx    context.Context
	fn     func(ctx context.Context, yield func(any) error) (any, error)
	cancel context.CancelFunc
	steps  chan genStep
	once   sync.Once
	mu     sync.Mutex
	ended  bool
}

// Generate creates a Generator. The body's return value becomes the final
// IterResult (nil reads as undefined); a returned error is thrown to the
// consumer. Yielding a
// *Promise awaits it first, as yield does inside an async generator.
func Generate(fn func(ctx context.Context, yield func(any) error) (any, error)) *Generator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Generator{
		ctx:    ctx,
		cancel: cancel,
		fn:     fn,
		steps:  make(chan genStep),
	}
}

func (g *Generator) run() {
	yield := func(v any) error {
		if p, ok := v.(*Promise); ok {
			resolved, err := p.Await(g.ctx)
			if err != nil {
				return err
			}
			v = resolved
		}
		select {
		case g.steps <- genStep{res: IterResult{Value: v}}:
			return nil
		case <-g.ctx.Done():
			return g.ctx.Err()
		}
	}

	ret, err := g.fn(g.ctx, yield)
	if ret == nil {
		ret = Undefined
	}
	last := genStep{res: IterResult{Value: ret, Done: true}}
	if err != nil {
		last = genStep{err: err}
	}
	select {
	case g.steps <- last:
	case <-g.ctx.Done():
	}
}

// Next implements AsyncIterable.
func (g *Generator) Next(ctx context.Context) (IterResult, error) {
	g.once.Do(func() { go g.run() })

	g.mu.Lock()
	if g.ended {
		g.mu.Unlock()
		return IterResult{Value: Undefined, Done: true}, nil
	}
	g.mu.Unlock()

	select {
	case step := <-g.steps:
		if step.err != nil || step.res.Done {
			g.mu.Lock()
			g.ended = true
			g.mu.Unlock()
			g.cancel()
		}
		return step.res, step.err
	case <-ctx.Done():
		return IterResult{}, ctx.Err()
	}
}

// Close stops the generator body. Later Next calls report done.
func (g *Generator) Close() {
	g.mu.Lock()
	g.ended = true
	g.mu.Unlock()
	g.cancel()
}
