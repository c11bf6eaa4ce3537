package adapter

import (
	"context"
	"errors"
	"io"

	"github.com/google/btree"
	"github.com/rs/zerolog/log"

	"github.com/quicpoll/quicpoll/poll"
	"github.com/quicpoll/quicpoll/transport"
)

// RecvStream turns the transport's unordered chunk delivery into a strictly
// ordered, contiguous byte sequence. Chunks arriving at the cursor are
// yielded immediately; chunks arriving ahead of it are parked in an
// offset-ordered buffer until the cursor catches up.
type RecvStream struct {
	stream transport.RecvStream
	ctx    context.Context

	read     *asyncOp[transport.Chunk]
	finished bool
	terminal error

	// offset is the byte position up to which data has been yielded.
	offset uint64
	chunks *btree.BTreeG[transport.Chunk]

	metrics *Metrics
}

// NewRecvStream wraps the receive half of a transport stream. The context
// bounds the in-flight unordered reads; cancelling it abandons the stream.
func NewRecvStream(ctx context.Context, stream transport.RecvStream) *RecvStream {
	return newRecvStream(ctx, stream, nil)
}

func newRecvStream(ctx context.Context, stream transport.RecvStream, m *Metrics) *RecvStream {
	return &RecvStream{
		stream:  stream,
		ctx:     ctx,
		chunks:  btree.NewG(2, func(a, b transport.Chunk) bool { return a.Offset < b.Offset }),
		metrics: m,
	}
}

// PollData yields the next contiguous run of bytes starting exactly at the
// stream cursor. It returns io.EOF once the sender has finished the stream
// and all buffered data has been drained, and poll.ErrWouldBlock when no
// eligible data is available yet. A nil, nil result is a fully duplicated
// chunk that contributed no new bytes; poll again.
func (s *RecvStream) PollData(cx *poll.Context) ([]byte, error) {
	if s.terminal != nil {
		return nil, s.terminal
	}

	ret := poll.ErrWouldBlock
	if s.finished {
		ret = io.EOF
	}

readLoop:
	for !s.finished {
		if s.read == nil {
			s.read = startOp(func() (transport.Chunk, error) {
				return s.stream.ReadChunk(s.ctx)
			})
		}

		chunk, err := s.read.poll(cx)
		switch {
		case errors.Is(err, poll.ErrWouldBlock):
			break readLoop
		case errors.Is(err, io.EOF):
			s.read = nil
			s.finished = true
			ret = io.EOF
		case err != nil:
			s.read = nil
			s.chunks.Clear(false)
			s.terminal = &ReadError{Cause: err}
			return nil, s.terminal
		case chunk.Offset <= s.offset:
			// The chunk the cursor is waiting for: trim what has already
			// been yielded and hand it out without buffering.
			s.read = nil
			return s.trim(chunk), nil
		default:
			// Ahead of the cursor. Park it and rearm the read so that a
			// would-block return always has a wakeup registered.
			s.read = nil
			s.chunks.ReplaceOrInsert(chunk)
			s.metrics.chunkReordered(s.chunks.Len())
		}
	}

	// The fresh read made no progress, but an earlier out-of-order chunk
	// may have become eligible at the cursor.
	if min, ok := s.chunks.Min(); ok && min.Offset <= s.offset {
		s.chunks.Delete(min)
		s.metrics.chunkDrained(s.chunks.Len())
		return s.trim(min), nil
	}

	return nil, ret
}

// trim discards the prefix of chunk that the cursor has already passed and
// advances the cursor past the remainder. A chunk starting ahead of the
// cursor must never reach this point.
func (s *RecvStream) trim(chunk transport.Chunk) []byte {
	if chunk.Offset > s.offset {
		panic("adapter: trimming a chunk ahead of the cursor")
	}
	skip := s.offset - chunk.Offset
	if skip >= uint64(len(chunk.Data)) {
		// Fully duplicated delivery, nothing new.
		return nil
	}
	data := chunk.Data[skip:]
	s.offset += uint64(len(data))
	s.metrics.bytesYielded(len(data))
	return data
}

// StopSending asks the peer to abort delivery on this stream with the given
// application error code. Fire and forget: delivery failures are logged and
// swallowed, and out-of-range codes are clamped.
func (s *RecvStream) StopSending(code transport.ErrorCode) {
	if err := s.stream.Stop(transport.ClampCode(code)); err != nil {
		log.Debug().Err(err).Msg("stop_sending signal not delivered")
	}
}
