// Package quic implements the transport capabilities on top of quic-go.
//
// quic-go exposes no unordered read primitive, so chunks are synthesized
// from the ordinary read path with a running offset and always arrive in
// offset order; the reorder buffer above degenerates to a pass-through.
// Transports that do deliver out of order implement the same interfaces.
package quic

import (
	"time"

	"github.com/quic-go/quic-go"
)

var qConf = &quic.Config{
	HandshakeIdleTimeout:       5 * time.Second,
	MaxIdleTimeout:             30 * time.Second,
	KeepAlivePeriod:            1 * time.Second,
	MaxIncomingStreams:         1 << 60,
	MaxIncomingUniStreams:      1 << 60,
	DisablePathMTUDiscovery:    false,
	MaxConnectionReceiveWindow: 30 * (1 << 20), // 30 MB
	MaxStreamReceiveWindow:     6 * (1 << 20),  // 6 MB
	Versions:                   []quic.Version{quic.Version2},
}
