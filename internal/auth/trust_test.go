package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTrustMaterial_ConcurrentColdStart(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	release := make(chan struct{})
	tm := NewTrustMaterial(func(ctx context.Context) error {
		calls.Add(1)
		<-release
		return nil
	})

	const callers = 16
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- tm.Ensure(context.Background())
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("Expected init to run once, ran %d times", got)
	}
	if got := tm.Initializations(); got != 1 {
		t.Errorf("Expected 1 initialization, got %d", got)
	}
}

func TestTrustMaterial_SecondEnsureIsNoop(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	tm := NewTrustMaterial(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	for i := 0; i < 3; i++ {
		if err := tm.Ensure(context.Background()); err != nil {
			t.Fatalf("Ensure %d failed: %v", i, err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("Expected 1 init call, got %d", got)
	}
}

func TestTrustMaterial_FailureIsFinal(t *testing.T) {
	t.Parallel()

	boom := errors.New("key file unreadable")
	var calls atomic.Int32
	tm := NewTrustMaterial(func(ctx context.Context) error {
		calls.Add(1)
		return boom
	})

	for i := 0; i < 2; i++ {
		if err := tm.Ensure(context.Background()); !errors.Is(err, boom) {
			t.Fatalf("Expected init error, got %v", err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("Expected 1 init call, got %d", got)
	}
}

func TestTrustMaterial_CancelledCallerDoesNotPoisonInit(t *testing.T) {
	t.Parallel()

	tm := NewTrustMaterial(func(ctx context.Context) error {
		return ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tm.Ensure(ctx); err != nil {
		t.Errorf("Expected init to ignore caller cancellation, got %v", err)
	}
}
