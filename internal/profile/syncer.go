package profile

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const defaultSyncTimeout = 2 * time.Second

// Syncer ensures a profile exists after each successful authentication.
type Syncer struct {
	store   Store
	logger  *zap.Logger
	timeout time.Duration
}

// NewSyncer creates a Syncer. timeout <= 0 uses a two second default.
func NewSyncer(store Store, logger *zap.Logger, timeout time.Duration) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultSyncTimeout
	}
	return &Syncer{store: store, logger: logger, timeout: timeout}
}

// EnsureProfile creates or touches the profile for uid.
func (s *Syncer) EnsureProfile(ctx context.Context, uid, email string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.EnsureProfile(ctx, uid, email); err != nil {
		return fmt.Errorf("sync profile: %w", err)
	}
	return nil
}
