package stream

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/crossval/errors"
	"github.com/wippyai/crossval/plugin"
	"github.com/wippyai/crossval/serializer"
	"github.com/wippyai/crossval/value"
)

const defaultBuffer = 16

type config struct {
	serializer []serializer.Option
	buffer     int
}

// Option configures a session.
type Option func(*config)

// WithPlugins sets the plugins tried for host values, in order.
func WithPlugins(plugins ...plugin.Plugin) Option {
	return func(c *config) {
		c.serializer = append(c.serializer, serializer.WithPlugins(plugins...))
	}
}

// WithRegistry uses a prebuilt plugin registry.
func WithRegistry(r *plugin.Registry) Option {
	return func(c *config) {
		c.serializer = append(c.serializer, serializer.WithRegistry(r))
	}
}

// WithObserver subscribes o to the session's reference table events.
func WithObserver(o serializer.Observer) Option {
	return func(c *config) {
		c.serializer = append(c.serializer, serializer.WithObserver(o))
	}
}

// WithBuffer sets the capacity of the snippet channel. Zero makes every
// emission wait for the reader.
func WithBuffer(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.buffer = n
		}
	}
}

// Snippet is one emitted piece of code.
type Snippet struct {
	Code    string
	Index   int
	Initial bool
}

// event is a settlement reported by a watcher.
type event struct {
	value any
	id    uint32
	op    serializer.Op
	final bool
}

// Session is one streaming serialization. It lives until every pending part
// has settled, until it is cancelled, or until a fatal error occurs.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
	cross  *serializer.Cross
	out    chan Snippet
	events chan event
	done   chan struct{}
	err    error

	index   int
	pending int
	stopped atomic.Bool
	once    sync.Once
}

// Start serializes v and begins following its pending parts. When the
// initial value cannot be serialized the error is returned and nothing is
// emitted. Cancelling ctx cancels the session.
func Start(ctx context.Context, v any, opts ...Option) (*Session, error) {
	cfg := &config{buffer: defaultBuffer}
	for _, opt := range opts {
		opt(cfg)
	}

	so := append([]serializer.Option{serializer.WithObserver(serializer.ObserverFunc(logRefEvent))}, cfg.serializer...)
	cross, err := serializer.NewCross(so...)
	if err != nil {
		return nil, err
	}
	code, parts, err := cross.Initial(v)
	if err != nil {
		Logger().Debug("initial serialization failed", zap.Error(err))
		return nil, err
	}

	sctx, cancel := context.WithCancel(ctx)
	s := &Session{
		ctx:    sctx,
		cancel: cancel,
		cross:  cross,
		out:    make(chan Snippet, cfg.buffer),
		events: make(chan event),
		done:   make(chan struct{}),
	}
	Logger().Debug("session started",
		zap.Int("pending", len(parts)),
		zap.Int("refs", cross.Refs().Len()))
	go s.run(code, parts)
	return s, nil
}

// Snippets returns the channel snippets are delivered on. It is closed when
// the session ends.
func (s *Session) Snippets() <-chan Snippet {
	return s.out
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err reports why the session ended. It is nil after a normal completion
// and only valid once Done is closed.
func (s *Session) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Cancel stops the session. No new snippet is produced once Cancel
// returns, though one the loop was already handing over may still arrive on
// the channel. Snippets already delivered stay valid.
func (s *Session) Cancel() {
	s.once.Do(func() {
		s.stopped.Store(true)
		s.cancel()
		Logger().Debug("session cancelled")
	})
}

// Stopped reports whether Cancel was called.
func (s *Session) Stopped() bool {
	return s.stopped.Load()
}

func (s *Session) run(initial string, parts []serializer.Async) {
	defer s.finish()

	if !s.emit(initial, true) {
		return
	}
	s.watch(parts)

	for s.pending > 0 {
		var ev event
		select {
		case <-s.ctx.Done():
			s.err = errors.Cancelled(s.ctx.Err())
			return
		case ev = <-s.events:
		}
		if ev.final {
			s.pending--
		}

		code, more, err := s.cross.Patch(ev.id, ev.op, ev.value)
		if err != nil {
			Logger().Debug("patch failed",
				zap.Uint32("ref", ev.id),
				zap.Stringer("op", ev.op),
				zap.Error(err))
			s.err = err
			return
		}
		if !s.emit(code, false) {
			return
		}
		s.watch(more)
	}
}

func (s *Session) finish() {
	if s.err == nil && s.stopped.Load() {
		s.err = errors.Cancelled(context.Canceled)
	}
	s.cancel()
	close(s.out)
	close(s.done)
	Logger().Debug("session finished",
		zap.Int("snippets", s.index),
		zap.Int("pending", s.pending),
		zap.Error(s.err))
}

func (s *Session) emit(code string, initial bool) bool {
	if s.stopped.Load() {
		return false
	}
	if s.ctx.Err() != nil {
		s.err = errors.Cancelled(s.ctx.Err())
		return false
	}
	snip := Snippet{Code: code, Index: s.index, Initial: initial}
	select {
	case s.out <- snip:
	case <-s.ctx.Done():
		s.err = errors.Cancelled(s.ctx.Err())
		return false
	}
	s.index++
	if !initial {
		Logger().Debug("patch emitted", zap.Int("index", snip.Index), zap.Int("pending", s.pending))
	}
	return true
}

func (s *Session) watch(parts []serializer.Async) {
	for _, part := range parts {
		s.pending++
		switch {
		case part.Promise != nil:
			go s.watchPromise(part.ID, part.Promise)
		case part.Iterable != nil:
			go s.watchIterable(part.ID, part.Iterable)
		default:
			s.pending--
		}
	}
}

func (s *Session) send(ev event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *Session) watchPromise(id uint32, p *value.Promise) {
	select {
	case <-p.Done():
	case <-s.ctx.Done():
		return
	}
	state, result := p.State()
	op := serializer.OpResolve
	if state == value.PromiseRejected {
		op = serializer.OpReject
	}
	s.send(event{id: id, op: op, value: result, final: true})
}

func (s *Session) watchIterable(id uint32, it value.AsyncIterable) {
	for {
		res, err := it.Next(s.ctx)
		if err != nil {
			if s.ctx.Err() != nil {
				if c, ok := it.(interface{ Close() }); ok {
					c.Close()
				}
				return
			}
			s.send(event{id: id, op: serializer.OpThrow, value: value.ReasonOf(err), final: true})
			return
		}
		if res.Done {
			s.send(event{id: id, op: serializer.OpReturn, value: res.Value, final: true})
			return
		}
		if !s.send(event{id: id, op: serializer.OpNext, value: res.Value}) {
			return
		}
	}
}

func logRefEvent(e serializer.Event) {
	if ce := Logger().Check(zap.DebugLevel, "ref event"); ce != nil {
		ce.Write(zap.Stringer("type", e.Type), zap.Uint32("ref", e.ID), zap.String("value", value.Describe(e.Value)))
	}
}
