package adapter

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quicpoll/quicpoll/poll"
	"github.com/quicpoll/quicpoll/transport"
)

// stubRecv scripts chunk deliveries through a channel. Closing the channel
// ends the stream with readErr, or io.EOF when readErr is nil.
type stubRecv struct {
	chunks  chan transport.Chunk
	readErr error
	reads   atomic.Int32

	mu      sync.Mutex
	stops   []transport.ErrorCode
	stopErr error
}

func newStubRecv(buffer int) *stubRecv {
	return &stubRecv{chunks: make(chan transport.Chunk, buffer)}
}

func (s *stubRecv) ReadChunk(ctx context.Context) (transport.Chunk, error) {
	s.reads.Add(1)
	select {
	case c, ok := <-s.chunks:
		if !ok {
			if s.readErr != nil {
				return transport.Chunk{}, s.readErr
			}
			return transport.Chunk{}, io.EOF
		}
		return c, nil
	case <-ctx.Done():
		return transport.Chunk{}, ctx.Err()
	}
}

func (s *stubRecv) Stop(code transport.ErrorCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops = append(s.stops, code)
	return s.stopErr
}

func (s *stubRecv) stopCodes() []transport.ErrorCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]transport.ErrorCode(nil), s.stops...)
}

// stubSend records writes. A non-nil release channel makes Write block
// until the channel is closed.
type stubSend struct {
	release   chan struct{}
	writeErr  error
	finishErr error
	resetErr  error

	writes   atomic.Int32
	finished atomic.Bool

	mu      sync.Mutex
	written [][]byte
	resets  []transport.ErrorCode
}

func (s *stubSend) Write(ctx context.Context, p []byte) error {
	s.writes.Add(1)
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if s.writeErr != nil {
		return s.writeErr
	}
	s.mu.Lock()
	s.written = append(s.written, append([]byte(nil), p...))
	s.mu.Unlock()
	return nil
}

func (s *stubSend) Finish(ctx context.Context) error {
	s.finished.Store(true)
	return s.finishErr
}

func (s *stubSend) Reset(code transport.ErrorCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets = append(s.resets, code)
	return s.resetErr
}

func (s *stubSend) writtenBytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []byte
	for _, w := range s.written {
		out = append(out, w...)
	}
	return out
}

// stubConn delegates to per-operation functions; unset operations block
// until the context ends.
type stubConn struct {
	acceptBidiFn func(context.Context) (transport.SendStream, transport.RecvStream, error)
	acceptUniFn  func(context.Context) (transport.RecvStream, error)
	openBidiFn   func(context.Context) (transport.SendStream, transport.RecvStream, error)
	openUniFn    func(context.Context) (transport.SendStream, error)
	closeFn      func(transport.ErrorCode, string) error
}

func (c *stubConn) AcceptBidi(ctx context.Context) (transport.SendStream, transport.RecvStream, error) {
	if c.acceptBidiFn == nil {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
	return c.acceptBidiFn(ctx)
}

func (c *stubConn) AcceptUni(ctx context.Context) (transport.RecvStream, error) {
	if c.acceptUniFn == nil {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return c.acceptUniFn(ctx)
}

func (c *stubConn) OpenBidi(ctx context.Context) (transport.SendStream, transport.RecvStream, error) {
	if c.openBidiFn == nil {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
	return c.openBidiFn(ctx)
}

func (c *stubConn) OpenUni(ctx context.Context) (transport.SendStream, error) {
	if c.openUniFn == nil {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return c.openUniFn(ctx)
}

func (c *stubConn) Close(code transport.ErrorCode, reason string) error {
	if c.closeFn == nil {
		return nil
	}
	return c.closeFn(code, reason)
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func waitWake(t *testing.T, w poll.ChanWaker) {
	t.Helper()
	select {
	case <-w:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a wake")
	}
}

// drain polls the stream to completion, concatenating everything it yields.
func drain(t *testing.T, rs *RecvStream) ([]byte, error) {
	t.Helper()
	var out []byte
	for {
		data, err := poll.Wait(testContext(t), rs.PollData)
		if err != nil {
			return out, err
		}
		out = append(out, data...)
	}
}
