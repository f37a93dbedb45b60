package router

import (
	"context"
	"fmt"
)

// Outcome is what dispatching a message produced. It is one of Immediate,
// Deferred or FireAndForget.
type Outcome interface {
	outcome()
}

// Immediate carries a response that is ready now.
type Immediate struct {
	Response Response
}

// Deferred carries a response that arrives once background work finishes.
type Deferred struct {
	Future *Future
}

// FireAndForget means the message gets no response at all.
type FireAndForget struct{}

func (Immediate) outcome()     {}
func (Deferred) outcome()      {}
func (FireAndForget) outcome() {}

// Future resolves exactly once.
type Future struct {
	done chan struct{}
	resp Response
}

// Go runs fn on its own goroutine. A panic in fn resolves the future with
// an error response so no caller is left waiting.
func Go(fn func() Response) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if p := recover(); p != nil {
				f.resp = Failure(fmt.Errorf("internal error: %v", p))
			}
		}()
		f.resp = fn()
	}()
	return f
}

// Resolved returns a future that is already complete.
func Resolved(resp Response) *Future {
	f := &Future{done: make(chan struct{}), resp: resp}
	close(f.done)
	return f
}

func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the response is ready or ctx ends.
func (f *Future) Wait(ctx context.Context) (Response, error) {
	select {
	case <-f.done:
		return f.resp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}
