package transport

import "fmt"

// StreamError reports a stream that was aborted with an application error
// code, either by the peer (reset/stop) or locally.
type StreamError struct {
	Code   ErrorCode
	Remote bool
}

func (e *StreamError) Error() string {
	side := "local"
	if e.Remote {
		side = "remote"
	}
	return fmt.Sprintf("stream aborted by %s side with code %d", side, e.Code)
}

// ConnectionError reports a transport connection that was closed with an
// application error code.
type ConnectionError struct {
	Code   ErrorCode
	Remote bool
	Reason string
}

func (e *ConnectionError) Error() string {
	side := "local"
	if e.Remote {
		side = "remote"
	}
	if e.Reason == "" {
		return fmt.Sprintf("connection closed by %s side with code %d", side, e.Code)
	}
	return fmt.Sprintf("connection closed by %s side with code %d: %s", side, e.Code, e.Reason)
}
