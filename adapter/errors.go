package adapter

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned by SendStream.SendData while a previously
// submitted buffer has not been fully flushed. It signals caller misuse,
// not a transport fault: wait for PollReady and retry.
var ErrNotReady = errors.New("adapter: write already pending")

// ConnError wraps a transport failure surfaced by a connection-level
// accept or open operation.
type ConnError struct {
	Cause error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("connection: %v", e.Cause)
}

func (e *ConnError) Unwrap() error {
	return e.Cause
}

// ReadError wraps a transport read failure. The stream is terminal once a
// ReadError has been surfaced and any buffered chunks are discarded.
type ReadError struct {
	Cause error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read: %v", e.Cause)
}

func (e *ReadError) Unwrap() error {
	return e.Cause
}

// WriteError wraps a transport write or finish failure. The pending buffer
// is considered lost and the stream terminal.
type WriteError struct {
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write: %v", e.Cause)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}
