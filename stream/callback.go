package stream

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"

	"github.com/wippyai/crossval/errors"
	"github.com/wippyai/crossval/plugin"
)

// StreamOptions configures CrossSerializeStream.
type StreamOptions struct {
	// OnSerialize receives every snippet in order. The initial snippet is
	// delivered before CrossSerializeStream returns.
	OnSerialize func(code string, initial bool)
	// OnError receives the fatal error that ended the session. It is never
	// called for cancellation.
	OnError func(err error)
	// OnDone runs once when the session ends without being cancelled.
	OnDone  func()
	Plugins []plugin.Plugin
}

// CrossSerializeStream serializes v and reports snippets through callbacks.
// The returned function cancels the session. Once it returns no callback
// starts again; a callback already running on another goroutine may still be
// finishing. It is safe to call from inside a callback.
func CrossSerializeStream(v any, opts StreamOptions) (cancel func()) {
	s, err := Start(context.Background(), v, WithPlugins(opts.Plugins...))
	if err != nil {
		if opts.OnError != nil {
			opts.OnError(err)
		}
		if opts.OnDone != nil {
			opts.OnDone()
		}
		return func() {}
	}

	d := &dispatcher{session: s}
	if first, ok := <-s.Snippets(); ok {
		d.call(func() { deliver(opts, first) })
	}

	go func() {
		for snip := range s.Snippets() {
			d.call(func() { deliver(opts, snip) })
		}
		err := s.Err()
		if stderrors.Is(err, errors.ErrCancelled) {
			return
		}
		d.call(func() {
			if err != nil && opts.OnError != nil {
				opts.OnError(err)
			}
			if opts.OnDone != nil {
				opts.OnDone()
			}
		})
	}()
	return d.cancel
}

func deliver(opts StreamOptions, snip Snippet) {
	if opts.OnSerialize != nil {
		opts.OnSerialize(snip.Code, snip.Initial)
	}
}

// dispatcher runs callbacks one at a time and never after cancellation.
type dispatcher struct {
	session *Session
	mu      sync.Mutex
	// set while a callback runs; a cancel seeing it comes from that callback
	// or races one that started before the cancel.
	running atomic.Bool
}

func (d *dispatcher) call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session.Stopped() {
		return
	}
	d.running.Store(true)
	defer d.running.Store(false)
	fn()
}

func (d *dispatcher) cancel() {
	d.session.Cancel()
	if d.running.Load() {
		return
	}
	// wait out a call that passed its check but has not started yet
	d.mu.Lock()
	d.mu.Unlock()
}
