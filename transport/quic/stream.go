package quic

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/quicpoll/quicpoll/transport"
)

const readChunkSize = 32 * 1024

type recvStream struct {
	stream quic.ReceiveStream
	offset uint64
	buf    []byte
}

var _ transport.RecvStream = (*recvStream)(nil)

func newRecvStream(stream quic.ReceiveStream) *recvStream {
	return &recvStream{
		stream: stream,
		buf:    make([]byte, readChunkSize),
	}
}

func (s *recvStream) ReadChunk(ctx context.Context) (transport.Chunk, error) {
	// quic-go reads have no context; a deadline in the past unblocks them
	// when the caller gives up.
	stop := context.AfterFunc(ctx, func() {
		s.stream.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		n, err := s.stream.Read(s.buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, s.buf[:n])
			chunk := transport.Chunk{Offset: s.offset, Data: data}
			s.offset += uint64(n)
			return chunk, nil
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			return transport.Chunk{}, io.EOF
		}
		if ctx.Err() != nil {
			return transport.Chunk{}, ctx.Err()
		}
		return transport.Chunk{}, mapStreamError(err)
	}
}

func (s *recvStream) Stop(code transport.ErrorCode) error {
	s.stream.CancelRead(quic.StreamErrorCode(code))
	return nil
}

type sendStream struct {
	stream quic.SendStream
}

var _ transport.SendStream = (*sendStream)(nil)

func newSendStream(stream quic.SendStream) *sendStream {
	return &sendStream{stream: stream}
}

func (s *sendStream) Write(ctx context.Context, p []byte) error {
	stop := context.AfterFunc(ctx, func() {
		s.stream.SetWriteDeadline(time.Now())
	})
	defer stop()

	for len(p) > 0 {
		n, err := s.stream.Write(p)
		p = p[n:]
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return mapStreamError(err)
		}
	}
	return nil
}

func (s *sendStream) Finish(ctx context.Context) error {
	if err := s.stream.Close(); err != nil {
		return mapStreamError(err)
	}
	return nil
}

func (s *sendStream) Reset(code transport.ErrorCode) error {
	s.stream.CancelWrite(quic.StreamErrorCode(code))
	return nil
}

// mapStreamError converts quic-go stream failures into the transport's
// error types, preserving the application error code for resets.
func mapStreamError(err error) error {
	var streamErr *quic.StreamError
	if errors.As(err, &streamErr) {
		return &transport.StreamError{
			Code:   transport.ErrorCode(streamErr.ErrorCode),
			Remote: streamErr.Remote,
		}
	}
	return mapConnError(err)
}
