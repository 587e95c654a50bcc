package value

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// PromiseState represents the state of a Promise
type PromiseState uint8

const (
	PromisePending PromiseState = iota
	PromiseFulfilled
	PromiseRejected
)

func (s PromiseState) String() string {
	switch s {
	case PromisePending:
		return "pending"
	case PromiseFulfilled:
		return "fulfilled"
	case PromiseRejected:
		return "rejected"
	}
	return "unknown"
}

// Promise is a JS promise: a value that settles once, later.
type Promise struct {
	result any
	done   chan struct{}
	mu     sync.Mutex
	state  PromiseState
	locked bool // resolved with another promise, waiting for it
}

// NewPromise creates a pending promise.
func NewPromise() *Promise {
	return &Promise{done: make(chan struct{}), result: Undefined}
}

// Resolved creates a promise fulfilled with v.
func Resolved(v any) *Promise {
	p := NewPromise()
	p.Resolve(v)
	return p
}

// Rejected creates a promise rejected with reason.
func Rejected(reason any) *Promise {
	p := NewPromise()
	p.Reject(reason)
	return p
}

// Delay creates a promise fulfilled with v after d.
func Delay(v any, d time.Duration) *Promise {
	p := NewPromise()
	time.AfterFunc(d, func() { p.Resolve(v) })
	return p
}

// DelayReject creates a promise rejected with reason after d.
func DelayReject(reason any, d time.Duration) *Promise {
	p := NewPromise()
	time.AfterFunc(d, func() { p.Reject(reason) })
	return p
}

// Resolve fulfills the promise. Resolving with another promise adopts its
// eventual state. Calls after the first are ignored.
func (p *Promise) Resolve(v any) {
	p.mu.Lock()
	if p.state != PromisePending || p.locked {
		p.mu.Unlock()
		return
	}
	other, ok := v.(*Promise)
	if !ok {
		p.settleLocked(PromiseFulfilled, v)
		p.mu.Unlock()
		return
	}
	if other == p {
		p.settleLocked(PromiseRejected, NewError("TypeError", "Chaining cycle detected for promise"))
		p.mu.Unlock()
		return
	}
	p.locked = true
	p.mu.Unlock()

	go func() {
		<-other.Done()
		state, result := other.State()
		p.mu.Lock()
		p.settleLocked(state, result)
		p.mu.Unlock()
	}()
}

// Reject rejects the promise. Calls after the first are ignored.
func (p *Promise) Reject(reason any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != PromisePending || p.locked {
		return
	}
	p.settleLocked(PromiseRejected, reason)
}

func (p *Promise) settleLocked(state PromiseState, result any) {
	if p.state != PromisePending {
		return
	}
	p.state = state
	p.result = result
	close(p.done)
}

// State returns the current state and, once settled, the result.
func (p *Promise) State() (PromiseState, any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state, p.result
}

// Done is closed once the promise settles.
func (p *Promise) Done() <-chan struct{} {
	return p.done
}

// Await blocks until the promise settles or ctx is done. A rejection is
// returned as a *Rejection error.
func (p *Promise) Await(ctx context.Context) (any, error) {
	select {
	case <-p.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	state, result := p.State()
	if state == PromiseRejected {
		return nil, &Rejection{Reason: result}
	}
	return result, nil
}

// Rejection is the Go error for a rejected promise or a throwing iterator.
type Rejection struct {
	Reason any
}

func (r *Rejection) Error() string {
	if err, ok := r.Reason.(error); ok {
		return "rejected: " + err.Error()
	}
	return fmt.Sprintf("rejected: %s", Describe(r.Reason))
}

// ReasonOf converts a Go error into the JS value a rejection carries.
func ReasonOf(err error) any {
	switch e := err.(type) {
	case *Rejection:
		return e.Reason
	case *Error:
		return e
	}
	return NewError("Error", err.Error())
}
