// Package transport defines the capability surface the adapters consume
// from an underlying multi-stream transport such as QUIC. The primitives
// block on a context; the adapter layer turns each of them into a single
// in-flight pollable operation.
package transport

import "context"

// Chunk is a contiguous run of stream bytes tagged with its starting byte
// offset within the stream. Chunks may be delivered out of offset order.
type Chunk struct {
	Offset uint64
	Data   []byte
}

// End returns the byte offset one past the last byte of the chunk.
func (c Chunk) End() uint64 {
	return c.Offset + uint64(len(c.Data))
}

// ErrorCode is an application-level error code carried by reset, stop and
// connection close signals.
type ErrorCode uint64

// NoError is the conventional "clean shutdown" application code.
const NoError ErrorCode = 0x0

// RecvStream is the receive half of a transport stream.
type RecvStream interface {
	// ReadChunk blocks until the next chunk arrives off the wire. Chunks are
	// delivered in arrival order, which may differ from offset order. It
	// returns io.EOF once the peer has finished the stream and all chunks
	// have been delivered.
	ReadChunk(ctx context.Context) (Chunk, error)

	// Stop asks the peer to stop sending on this stream. Best effort.
	Stop(code ErrorCode) error
}

// SendStream is the send half of a transport stream.
type SendStream interface {
	// Write blocks until all of p has been handed to the transport.
	Write(ctx context.Context, p []byte) error

	// Finish signals that no further bytes will be written and blocks until
	// the transport has accepted the stream finalization.
	Finish(ctx context.Context) error

	// Reset abruptly terminates the stream with an application error code.
	// Best effort.
	Reset(code ErrorCode) error
}

// Connection is an established transport connection from which streams are
// accepted and opened. Accept methods return io.EOF once the connection is
// closing and no further streams will arrive.
type Connection interface {
	AcceptBidi(ctx context.Context) (SendStream, RecvStream, error)
	AcceptUni(ctx context.Context) (RecvStream, error)
	OpenBidi(ctx context.Context) (SendStream, RecvStream, error)
	OpenUni(ctx context.Context) (SendStream, error)
	Close(code ErrorCode, reason string) error
}
