package quic

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/quic-go/quic-go"
)

// UseOfClosedNetworkConnection is a special string some parts of the go
// standard lib are using that is the only way to identify some errors.
const UseOfClosedNetworkConnection = "use of closed network connection"

// IsClosedError returns true if the error indicates a listener or
// connection that shut down normally, as opposed to an I/O failure.
func IsClosedError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, quic.ErrServerClosed) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		strings.Contains(err.Error(), UseOfClosedNetworkConnection)
}

// IsIdleTimeout returns true if the peer went silent past the configured
// idle timeout.
func IsIdleTimeout(err error) bool {
	if err == nil {
		return false
	}
	var idleErr *quic.IdleTimeoutError
	return errors.As(err, &idleErr)
}
