package quic

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"github.com/quic-go/quic-go"
	"github.com/rs/zerolog/log"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/quicpoll/quicpoll/config"
)

// DefaultBackoff is the default backoff used when dialing a server.
var DefaultBackoff = wait.Backoff{
	Steps:    5,
	Duration: 100 * time.Millisecond,
	Factor:   2.0,
	Jitter:   0.1,
}

func clientTLSConfig(conf *config.Dialer) (*tls.Config, error) {
	tlsConf := &tls.Config{
		MinVersion:         tls.VersionTLS13,
		NextProtos:         []string{config.ALPN},
		ServerName:         conf.TLSConfig.ServerName,
		InsecureSkipVerify: conf.TLSConfig.InsecureSkipVerify,
	}

	tlsConf.RootCAs, _ = x509.SystemCertPool()
	if tlsConf.RootCAs == nil {
		tlsConf.RootCAs = x509.NewCertPool()
	}

	if conf.TLSConfig.CertFile != "" {
		caCertRaw, err := os.ReadFile(conf.TLSConfig.CertFile)
		if err != nil {
			return nil, fmt.Errorf("could not read cert file: %w", err)
		}
		if !tlsConf.RootCAs.AppendCertsFromPEM(caCertRaw) {
			return nil, fmt.Errorf("could not append cert at %s", conf.TLSConfig.CertFile)
		}
	}

	return tlsConf, nil
}

// Dial establishes a connection to addr, retrying with exponential backoff
// until the context ends or the backoff is exhausted.
func Dial(ctx context.Context, conf *config.Dialer) (*Conn, error) {
	tlsConf, err := clientTLSConfig(conf)
	if err != nil {
		return nil, err
	}

	var conn quic.Connection
	err = wait.ExponentialBackoffWithContext(ctx, DefaultBackoff, func(ctx context.Context) (bool, error) {
		c, err := quic.DialAddr(ctx, conf.Address, tlsConf, qConf)
		if err != nil {
			log.Debug().Err(err).Str("addr", conf.Address).Msg("dial attempt failed")
			return false, nil
		}
		conn = c
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not dial %s: %w", conf.Address, err)
	}

	log.Info().Str("addr", conf.Address).Msg("connection established")
	return NewConn(conn), nil
}
