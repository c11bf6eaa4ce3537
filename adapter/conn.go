// Package adapter turns a multi-stream transport connection into the
// pollable stream and connection abstractions a request/response protocol
// layer drives. All operations are non-blocking polls: they complete
// immediately, fail, or report poll.ErrWouldBlock after registering the
// caller's waker.
package adapter

import (
	"context"
	"errors"
	"io"

	"github.com/lithammer/shortuuid/v4"
	"github.com/rs/zerolog/log"

	"github.com/quicpoll/quicpoll/poll"
	"github.com/quicpoll/quicpoll/transport"
)

// Connection multiplexes incoming stream acceptance against at most one
// in-flight outgoing open operation per direction. A Pending poll resumes
// the same underlying operation; a new one is only issued once the previous
// has resolved.
type Connection struct {
	tr     transport.Connection
	ctx    context.Context
	cancel context.CancelFunc
	id     string

	acceptBidi *asyncOp[bidiPair]
	acceptUni  *asyncOp[transport.RecvStream]
	openBidi   *asyncOp[bidiPair]
	openUni    *asyncOp[transport.SendStream]

	metrics *Metrics
}

type bidiPair struct {
	send transport.SendStream
	recv transport.RecvStream
}

// Option configures a Connection.
type Option func(*Connection)

// WithMetrics attaches prometheus metrics to the connection and every
// stream it produces.
func WithMetrics(m *Metrics) Option {
	return func(c *Connection) { c.metrics = m }
}

// NewConnection wraps an established transport connection.
func NewConnection(tr transport.Connection, opts ...Option) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		tr:     tr,
		ctx:    ctx,
		cancel: cancel,
		id:     shortuuid.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PollAcceptBidiStream yields the next incoming bidirectional stream. It
// returns nil, io.EOF once the connection is closing and no further streams
// will arrive.
func (c *Connection) PollAcceptBidiStream(cx *poll.Context) (*BidiStream, error) {
	if c.acceptBidi == nil {
		c.acceptBidi = startOp(func() (bidiPair, error) {
			send, recv, err := c.tr.AcceptBidi(c.ctx)
			return bidiPair{send: send, recv: recv}, err
		})
	}

	pair, err := c.acceptBidi.poll(cx)
	if errors.Is(err, poll.ErrWouldBlock) {
		return nil, err
	}
	c.acceptBidi = nil
	if err != nil {
		return nil, c.connErr(err)
	}

	c.metrics.streamAccepted(directionBidi)
	log.Trace().Str("conn", c.id).Msg("accepted bidirectional stream")
	return c.newBidi(pair), nil
}

// PollOpenBidiStream opens a new outgoing bidirectional stream, resuming
// the in-flight open operation if one is already pending.
func (c *Connection) PollOpenBidiStream(cx *poll.Context) (*BidiStream, error) {
	if c.openBidi == nil {
		c.openBidi = startOp(func() (bidiPair, error) {
			send, recv, err := c.tr.OpenBidi(c.ctx)
			return bidiPair{send: send, recv: recv}, err
		})
	}

	pair, err := c.openBidi.poll(cx)
	if errors.Is(err, poll.ErrWouldBlock) {
		return nil, err
	}
	c.openBidi = nil
	if err != nil {
		return nil, &ConnError{Cause: err}
	}

	c.metrics.streamOpened(directionBidi)
	log.Trace().Str("conn", c.id).Msg("opened bidirectional stream")
	return c.newBidi(pair), nil
}

// PollAcceptRecvStream yields the next incoming unidirectional stream. It
// returns nil, io.EOF once the connection is closing and no further streams
// will arrive.
func (c *Connection) PollAcceptRecvStream(cx *poll.Context) (*RecvStream, error) {
	if c.acceptUni == nil {
		c.acceptUni = startOp(func() (transport.RecvStream, error) {
			return c.tr.AcceptUni(c.ctx)
		})
	}

	recv, err := c.acceptUni.poll(cx)
	if errors.Is(err, poll.ErrWouldBlock) {
		return nil, err
	}
	c.acceptUni = nil
	if err != nil {
		return nil, c.connErr(err)
	}

	c.metrics.streamAccepted(directionUni)
	log.Trace().Str("conn", c.id).Msg("accepted unidirectional stream")
	return newRecvStream(c.ctx, recv, c.metrics), nil
}

// PollOpenSendStream opens a new outgoing unidirectional stream, resuming
// the in-flight open operation if one is already pending.
func (c *Connection) PollOpenSendStream(cx *poll.Context) (*SendStream, error) {
	if c.openUni == nil {
		c.openUni = startOp(func() (transport.SendStream, error) {
			return c.tr.OpenUni(c.ctx)
		})
	}

	send, err := c.openUni.poll(cx)
	if errors.Is(err, poll.ErrWouldBlock) {
		return nil, err
	}
	c.openUni = nil
	if err != nil {
		return nil, &ConnError{Cause: err}
	}

	c.metrics.streamOpened(directionUni)
	log.Trace().Str("conn", c.id).Msg("opened unidirectional stream")
	return newSendStream(c.ctx, send, c.metrics), nil
}

// Close abandons all in-flight operations and closes the transport
// connection with an application error code.
func (c *Connection) Close(code transport.ErrorCode, reason string) error {
	c.cancel()
	return c.tr.Close(transport.ClampCode(code), reason)
}

func (c *Connection) newBidi(pair bidiPair) *BidiStream {
	return &BidiStream{
		send: newSendStream(c.ctx, pair.send, c.metrics),
		recv: newRecvStream(c.ctx, pair.recv, c.metrics),
	}
}

// connErr maps transport accept failures: clean exhaustion of the incoming
// stream source passes through as io.EOF, everything else is wrapped.
func (c *Connection) connErr(err error) error {
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	return &ConnError{Cause: err}
}
