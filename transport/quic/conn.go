package quic

import (
	"context"
	"errors"
	"io"

	"github.com/quic-go/quic-go"

	"github.com/quicpoll/quicpoll/transport"
)

// Conn adapts a quic-go connection to the transport.Connection capability
// surface.
type Conn struct {
	conn quic.Connection
}

var _ transport.Connection = (*Conn)(nil)

func NewConn(conn quic.Connection) *Conn {
	return &Conn{conn: conn}
}

func (c *Conn) AcceptBidi(ctx context.Context) (transport.SendStream, transport.RecvStream, error) {
	str, err := c.conn.AcceptStream(ctx)
	if err != nil {
		return nil, nil, mapAcceptError(err)
	}
	return newSendStream(str), newRecvStream(str), nil
}

func (c *Conn) AcceptUni(ctx context.Context) (transport.RecvStream, error) {
	str, err := c.conn.AcceptUniStream(ctx)
	if err != nil {
		return nil, mapAcceptError(err)
	}
	return newRecvStream(str), nil
}

func (c *Conn) OpenBidi(ctx context.Context) (transport.SendStream, transport.RecvStream, error) {
	str, err := c.conn.OpenStreamSync(ctx)
	if err != nil {
		return nil, nil, mapConnError(err)
	}
	return newSendStream(str), newRecvStream(str), nil
}

func (c *Conn) OpenUni(ctx context.Context) (transport.SendStream, error) {
	str, err := c.conn.OpenUniStreamSync(ctx)
	if err != nil {
		return nil, mapConnError(err)
	}
	return newSendStream(str), nil
}

func (c *Conn) Close(code transport.ErrorCode, reason string) error {
	return c.conn.CloseWithError(quic.ApplicationErrorCode(code), reason)
}

// mapAcceptError maps failures of the incoming stream sources. A clean
// application close of the connection means the source is permanently
// exhausted, which the adapter layer expects as io.EOF.
func mapAcceptError(err error) error {
	var appErr *quic.ApplicationError
	if errors.As(err, &appErr) && appErr.ErrorCode == quic.ApplicationErrorCode(transport.NoError) {
		return io.EOF
	}
	if errors.Is(err, context.Canceled) {
		return io.EOF
	}
	return mapConnError(err)
}

func mapConnError(err error) error {
	var appErr *quic.ApplicationError
	if errors.As(err, &appErr) {
		return &transport.ConnectionError{
			Code:   transport.ErrorCode(appErr.ErrorCode),
			Remote: appErr.Remote,
			Reason: appErr.ErrorMessage,
		}
	}
	return err
}
