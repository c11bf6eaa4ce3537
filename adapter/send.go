package adapter

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/quicpoll/quicpoll/poll"
	"github.com/quicpoll/quicpoll/transport"
)

// SendStream serializes writes to the send half of a transport stream. It
// is a strict single-slot queue: one buffer may be pending at a time, and
// the caller must observe PollReady before submitting the next one.
type SendStream struct {
	stream transport.SendStream
	ctx    context.Context

	writing  []byte
	write    *asyncOp[struct{}]
	finish   *asyncOp[struct{}]
	terminal error

	metrics *Metrics
}

// NewSendStream wraps the send half of a transport stream. The context
// bounds the in-flight writes; cancelling it abandons the stream.
func NewSendStream(ctx context.Context, stream transport.SendStream) *SendStream {
	return newSendStream(ctx, stream, nil)
}

func newSendStream(ctx context.Context, stream transport.SendStream, m *Metrics) *SendStream {
	return &SendStream{stream: stream, ctx: ctx, metrics: m}
}

// SendData accepts a buffer for transmission. It returns ErrNotReady if a
// previous buffer has not been fully flushed yet; the transport is not
// touched in that case. An empty buffer is a no-op.
func (s *SendStream) SendData(buf []byte) error {
	if s.terminal != nil {
		return s.terminal
	}
	if s.writing != nil {
		return ErrNotReady
	}
	if len(buf) == 0 {
		return nil
	}
	s.writing = buf
	return nil
}

// PollReady drives the pending buffer into the transport. It reports ready
// once no buffer is pending, and poll.ErrWouldBlock while bytes remain in
// flight.
func (s *SendStream) PollReady(cx *poll.Context) error {
	if s.terminal != nil {
		return s.terminal
	}
	if s.writing == nil {
		return nil
	}

	if s.write == nil {
		buf := s.writing
		s.write = startOp(func() (struct{}, error) {
			return struct{}{}, s.stream.Write(s.ctx, buf)
		})
	}

	if _, err := s.write.poll(cx); err != nil {
		if errors.Is(err, poll.ErrWouldBlock) {
			return err
		}
		s.write, s.writing = nil, nil
		s.terminal = &WriteError{Cause: err}
		return s.terminal
	}

	s.metrics.bytesSent(len(s.writing))
	s.write, s.writing = nil, nil
	return nil
}

// PollFinish signals that no more data will be sent and waits for the
// transport to accept the stream finalization. A still-pending buffer is
// flushed first, so skipping the final PollReady does not drop bytes.
func (s *SendStream) PollFinish(cx *poll.Context) error {
	if err := s.PollReady(cx); err != nil {
		return err
	}

	if s.finish == nil {
		s.finish = startOp(func() (struct{}, error) {
			return struct{}{}, s.stream.Finish(s.ctx)
		})
	}

	if _, err := s.finish.poll(cx); err != nil {
		if errors.Is(err, poll.ErrWouldBlock) {
			return err
		}
		s.terminal = &WriteError{Cause: err}
		return s.terminal
	}
	return nil
}

// Reset abruptly terminates the stream with an application error code.
// Fire and forget: delivery failures are logged and swallowed, and
// out-of-range codes are clamped.
func (s *SendStream) Reset(code transport.ErrorCode) {
	if err := s.stream.Reset(transport.ClampCode(code)); err != nil {
		log.Debug().Err(err).Msg("reset signal not delivered")
	}
}
