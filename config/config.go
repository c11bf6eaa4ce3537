package config

import (
	"crypto/tls"
	"time"
)

var (
	ShutdownTimeout = 2 * time.Second
)

// ALPN is the application protocol identifier negotiated during the TLS
// handshake.
const ALPN = "quicpoll"

// TLSConfig carries the client-side trust settings for a dialer.
type TLSConfig struct {
	ServerName         string
	CertFile           string
	InsecureSkipVerify bool
}

// Server configures a listening endpoint.
type Server struct {
	Address   string
	TLSConfig *tls.Config
}

// Dialer configures an outgoing connection.
type Dialer struct {
	Address   string
	TLSConfig TLSConfig
}
