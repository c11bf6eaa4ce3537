package poll

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestChanWakerCoalesces(t *testing.T) {
	w := NewChanWaker()
	w.Wake()
	w.Wake()
	w.Wake()

	select {
	case <-w:
	default:
		t.Fatal("expected a pending wake token")
	}

	select {
	case <-w:
		t.Fatal("wakes must coalesce into a single token")
	default:
	}
}

func TestWakerFunc(t *testing.T) {
	called := false
	WakerFunc(func() { called = true }).Wake()
	if !called {
		t.Fatal("WakerFunc did not invoke the wrapped function")
	}
}

func TestWaitDrivesToCompletion(t *testing.T) {
	attempts := 0
	got, err := Wait(context.Background(), func(cx *Context) (int, error) {
		attempts++
		if attempts < 3 {
			go cx.Waker().Wake()
			return 0, ErrWouldBlock
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if got != 42 {
		t.Fatalf("Wait() = %d, want 42", got)
	}
	if attempts != 3 {
		t.Fatalf("Wait() polled %d times, want 3", attempts)
	}
}

func TestWaitPropagatesErrors(t *testing.T) {
	wantErr := errors.New("broken")
	_, err := Wait(context.Background(), func(*Context) (int, error) {
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Wait() error = %v, want %v", err, wantErr)
	}
}

func TestWaitHonorsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := Wait(ctx, func(*Context) (int, error) {
		return 0, ErrWouldBlock
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait() error = %v, want deadline exceeded", err)
	}
}

func TestWaitReady(t *testing.T) {
	ready := false
	err := WaitReady(context.Background(), func(cx *Context) error {
		if !ready {
			ready = true
			go cx.Waker().Wake()
			return ErrWouldBlock
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WaitReady() error = %v", err)
	}
}
