package adapter

import (
	"context"

	"github.com/quicpoll/quicpoll/poll"
	"github.com/quicpoll/quicpoll/transport"
)

// BidiStream pairs a SendStream and a RecvStream over the same transport
// stream and exposes the union of both contracts.
type BidiStream struct {
	send *SendStream
	recv *RecvStream
}

// NewBidiStream composes the two halves of a bidirectional transport
// stream.
func NewBidiStream(ctx context.Context, send transport.SendStream, recv transport.RecvStream) *BidiStream {
	return &BidiStream{
		send: NewSendStream(ctx, send),
		recv: NewRecvStream(ctx, recv),
	}
}

// Split consumes the composite and yields its independent halves. After a
// split their lifetimes and failures are fully decoupled; the composite
// must not be used again.
func (s *BidiStream) Split() (*SendStream, *RecvStream) {
	send, recv := s.send, s.recv
	s.send, s.recv = nil, nil
	return send, recv
}

func (s *BidiStream) PollData(cx *poll.Context) ([]byte, error) {
	return s.recv.PollData(cx)
}

func (s *BidiStream) StopSending(code transport.ErrorCode) {
	s.recv.StopSending(code)
}

func (s *BidiStream) SendData(buf []byte) error {
	return s.send.SendData(buf)
}

func (s *BidiStream) PollReady(cx *poll.Context) error {
	return s.send.PollReady(cx)
}

func (s *BidiStream) PollFinish(cx *poll.Context) error {
	return s.send.PollFinish(cx)
}

func (s *BidiStream) Reset(code transport.ErrorCode) {
	s.send.Reset(code)
}
