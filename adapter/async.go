package adapter

import (
	"sync"

	"github.com/quicpoll/quicpoll/poll"
)

// asyncOp tracks a single in-flight transport primitive. The primitive runs
// on its own goroutine and publishes its result by closing done; the most
// recently registered waker is notified afterwards. Each handle keeps at
// most one asyncOp per kind of operation, which is what guarantees the
// at-most-one-in-flight contract towards the transport.
type asyncOp[T any] struct {
	done chan struct{}
	val  T
	err  error

	mu    sync.Mutex
	waker poll.Waker
}

func startOp[T any](fn func() (T, error)) *asyncOp[T] {
	op := &asyncOp[T]{done: make(chan struct{})}
	go func() {
		op.val, op.err = fn()
		close(op.done)
		op.mu.Lock()
		w := op.waker
		op.mu.Unlock()
		if w != nil {
			w.Wake()
		}
	}()
	return op
}

// poll returns the operation's result once it has completed and
// poll.ErrWouldBlock otherwise. On would-block the context's waker replaces
// any previously registered one, then completion is re-checked so a wake
// landing between the two checks is never lost.
func (op *asyncOp[T]) poll(cx *poll.Context) (T, error) {
	select {
	case <-op.done:
		return op.val, op.err
	default:
	}

	op.mu.Lock()
	op.waker = cx.Waker()
	op.mu.Unlock()

	select {
	case <-op.done:
		return op.val, op.err
	default:
		var zero T
		return zero, poll.ErrWouldBlock
	}
}
