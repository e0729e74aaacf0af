package eventloop

import (
	"sync/atomic"
	"testing"
	"time"

	"nimbus/internal/object"
)

func countingCaller(n *atomic.Int64) Caller {
	return func(callee object.Value, args []object.Value) (object.Value, error) {
		n.Add(1)
		return nil, nil
	}
}

func TestSetTimeoutRunsOnce(t *testing.T) {
	l := NewLoop()
	var calls atomic.Int64
	l.SetTimeout(object.NewString("cb"), 10)

	if err := l.Run(countingCaller(&calls)); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 call, got %d", calls.Load())
	}
}

func TestSetIntervalStopsAtClearInterval(t *testing.T) {
	l := NewLoop()
	var calls atomic.Int64
	id := l.SetInterval(object.NewString("cb"), 10)

	go func() {
		time.Sleep(35 * time.Millisecond)
		l.ClearInterval(id)
	}()

	if err := l.Run(countingCaller(&calls)); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if calls.Load() == 0 {
		t.Fatal("expected the interval to fire at least once")
	}
}

func TestRunWithNothingScheduledReturnsImmediately(t *testing.T) {
	l := NewLoop()
	var calls atomic.Int64
	done := make(chan error, 1)
	go func() { done <- l.Run(countingCaller(&calls)) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return for an empty loop")
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no calls, got %d", calls.Load())
	}
}

func TestPropagatesCallbackError(t *testing.T) {
	l := NewLoop()
	l.SetTimeout(object.NewString("cb"), 5)

	boom := func(callee object.Value, args []object.Value) (object.Value, error) {
		return nil, errBoom
	}
	if err := l.Run(boom); err != errBoom {
		t.Fatalf("expected errBoom, got %v", err)
	}
}

var errBoom = &testError{"boom"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }
