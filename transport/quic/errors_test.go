package quic

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"

	"github.com/quic-go/quic-go"

	"github.com/quicpoll/quicpoll/transport"
)

func TestIsClosedError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "server closed",
			err:  quic.ErrServerClosed,
			want: true,
		},
		{
			name: "context canceled",
			err:  context.Canceled,
			want: true,
		},
		{
			name: "EOF",
			err:  io.EOF,
			want: true,
		},
		{
			name: "network closed",
			err:  net.ErrClosed,
			want: true,
		},
		{
			name: "closed network connection string",
			err:  errors.New("use of closed network connection"),
			want: true,
		},
		{
			name: "other error",
			err:  errors.New("some other error"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsClosedError(tt.err); got != tt.want {
				t.Errorf("IsClosedError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsIdleTimeout(t *testing.T) {
	if IsIdleTimeout(nil) {
		t.Error("IsIdleTimeout(nil) = true, want false")
	}
	if !IsIdleTimeout(&quic.IdleTimeoutError{}) {
		t.Error("IsIdleTimeout(IdleTimeoutError) = false, want true")
	}
	if IsIdleTimeout(errors.New("other")) {
		t.Error("IsIdleTimeout(other) = true, want false")
	}
}

func TestMapAcceptError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantEOF bool
	}{
		{
			name:    "clean application close",
			err:     &quic.ApplicationError{ErrorCode: 0, Remote: true},
			wantEOF: true,
		},
		{
			name:    "local cancellation",
			err:     context.Canceled,
			wantEOF: true,
		},
		{
			name:    "application failure code",
			err:     &quic.ApplicationError{ErrorCode: 0x10c, Remote: true, ErrorMessage: "bad session"},
			wantEOF: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapAcceptError(tt.err)
			if tt.wantEOF {
				if !errors.Is(got, io.EOF) {
					t.Errorf("mapAcceptError() = %v, want io.EOF", got)
				}
				return
			}
			var connErr *transport.ConnectionError
			if !errors.As(got, &connErr) {
				t.Fatalf("mapAcceptError() = %v, want *transport.ConnectionError", got)
			}
			if connErr.Code != 0x10c || !connErr.Remote {
				t.Errorf("mapped error = %+v, want code 0x10c from remote", connErr)
			}
		})
	}
}

func TestMapStreamError(t *testing.T) {
	got := mapStreamError(&quic.StreamError{ErrorCode: 7, Remote: true})
	var streamErr *transport.StreamError
	if !errors.As(got, &streamErr) {
		t.Fatalf("mapStreamError() = %v, want *transport.StreamError", got)
	}
	if streamErr.Code != 7 || !streamErr.Remote {
		t.Errorf("mapped error = %+v, want code 7 from remote", streamErr)
	}

	plain := errors.New("something else")
	if got := mapStreamError(plain); !errors.Is(got, plain) {
		t.Errorf("mapStreamError(plain) = %v, want the error unchanged", got)
	}
}
