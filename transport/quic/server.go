package quic

import (
	"context"
	"fmt"
	"net"

	"github.com/quic-go/quic-go"
	"github.com/rs/zerolog/log"

	"github.com/quicpoll/quicpoll/config"
)

// Listener accepts transport connections on a QUIC endpoint.
type Listener struct {
	listener *quic.Listener
}

func Listen(conf *config.Server) (*Listener, error) {
	tlsConf := conf.TLSConfig.Clone()
	tlsConf.NextProtos = []string{config.ALPN}

	quicListener, err := quic.ListenAddr(conf.Address, tlsConf, qConf)
	if err != nil {
		return nil, fmt.Errorf("could not listen on QUIC address: %w", err)
	}

	log.Info().Str("addr", fmt.Sprintf("%s/%s", quicListener.Addr().Network(), quicListener.Addr().String())).Msg("listener started")
	return &Listener{listener: quicListener}, nil
}

func (l *Listener) Accept(ctx context.Context) (*Conn, error) {
	conn, err := l.listener.Accept(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("accepted connection")
	return NewConn(conn), nil
}

func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}

func (l *Listener) Close() error {
	return l.listener.Close()
}
