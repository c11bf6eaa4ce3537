// Package poll provides the cooperative polling primitives that drive the
// stream and connection adapters. Every adapter operation is non-blocking:
// it either completes immediately, fails, or returns ErrWouldBlock after
// registering the caller's Waker so the caller can park until progress is
// possible and try again.
package poll

import (
	"context"
	"errors"
)

// ErrWouldBlock is returned by a poll that made no progress. The operation
// stays in flight and the registered Waker fires once it is worth retrying.
var ErrWouldBlock = errors.New("poll: operation would block")

// A Waker is notified when a previously blocked operation can make progress.
type Waker interface {
	Wake()
}

// WakerFunc adapts a plain function to the Waker interface.
type WakerFunc func()

func (f WakerFunc) Wake() { f() }

// ChanWaker is a Waker backed by a buffered channel. Wakes between two polls
// coalesce into a single token, so a caller loop never processes stale wakes.
type ChanWaker chan struct{}

func NewChanWaker() ChanWaker {
	return make(chan struct{}, 1)
}

func (w ChanWaker) Wake() {
	select {
	case w <- struct{}{}:
	default:
	}
}

// Context carries the caller's Waker through a poll call tree.
type Context struct {
	waker Waker
}

func NewContext(w Waker) *Context {
	return &Context{waker: w}
}

func (c *Context) Waker() Waker {
	return c.waker
}

// Wait drives fn until it stops reporting ErrWouldBlock, parking on a
// ChanWaker between attempts. It returns ctx.Err() if the context ends
// before the operation resolves.
func Wait[T any](ctx context.Context, fn func(*Context) (T, error)) (T, error) {
	w := NewChanWaker()
	cx := NewContext(w)
	for {
		v, err := fn(cx)
		if !errors.Is(err, ErrWouldBlock) {
			return v, err
		}
		select {
		case <-w:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// WaitReady is Wait for polls that yield no value, such as readiness and
// finish polls.
func WaitReady(ctx context.Context, fn func(*Context) error) error {
	_, err := Wait(ctx, func(cx *Context) (struct{}, error) {
		return struct{}{}, fn(cx)
	})
	return err
}
