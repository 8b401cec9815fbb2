package auth

import (
	"context"
	"sync"
	"sync/atomic"
)

// TrustMaterial guards the one-time initialization of the identity
// provider's signing material. Concurrent callers observe a single
// initialization; the result, success or failure, is final.
type TrustMaterial struct {
	init  func(ctx context.Context) error
	once  sync.Once
	ready atomic.Bool
	err   error
	runs  atomic.Int32
}

// NewTrustMaterial wraps init, typically identity.Provider.Init.
func NewTrustMaterial(init func(ctx context.Context) error) *TrustMaterial {
	return &TrustMaterial{init: init}
}

// Ensure initializes the trust material if nobody has yet. Callers arriving
// during initialization wait for it to finish. After a successful
// initialization it is a lock-free no-op.
func (t *TrustMaterial) Ensure(ctx context.Context) error {
	if t.ready.Load() {
		return nil
	}
	t.once.Do(func() {
		t.runs.Add(1)
		// A cancelled request must not poison process-wide state.
		t.err = t.init(context.WithoutCancel(ctx))
		if t.err == nil {
			t.ready.Store(true)
		}
	})
	return t.err
}

// Initializations reports how many times the init function ran.
func (t *TrustMaterial) Initializations() int {
	return int(t.runs.Load())
}
