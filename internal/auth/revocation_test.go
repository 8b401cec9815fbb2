package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestSessionRevoker_Idempotent(t *testing.T) {
	t.Parallel()

	p := new(MockProvider)
	p.On("RevokeRefreshTokens", mock.Anything, "u1").Return(nil).Times(3)

	r := NewSessionRevoker(p, zap.NewNop(), 0)
	for i := 0; i < 3; i++ {
		assert.NoError(t, r.RevokeAllSessions(context.Background(), "u1"))
	}
	p.AssertExpectations(t)
}

func TestSessionRevoker_EmptySubject(t *testing.T) {
	t.Parallel()

	p := new(MockProvider)
	r := NewSessionRevoker(p, zap.NewNop(), 0)

	err := r.RevokeAllSessions(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidSignatureOrClaims)
	p.AssertNotCalled(t, "RevokeRefreshTokens", mock.Anything, mock.Anything)
}

func TestSessionRevoker_ProviderFailureNotRetried(t *testing.T) {
	t.Parallel()

	p := new(MockProvider)
	p.On("RevokeRefreshTokens", mock.Anything, "u1").Return(errors.New("503")).Once()

	r := NewSessionRevoker(p, zap.NewNop(), 0)
	err := r.RevokeAllSessions(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	p.AssertNumberOfCalls(t, "RevokeRefreshTokens", 1)
}

func TestSessionRevoker_Timeout(t *testing.T) {
	t.Parallel()

	p := new(MockProvider)
	p.On("RevokeRefreshTokens", mock.Anything, "u1").
		Return(func(ctx context.Context, _ string) error {
			<-ctx.Done()
			return ctx.Err()
		})

	r := NewSessionRevoker(p, zap.NewNop(), 10*time.Millisecond)
	err := r.RevokeAllSessions(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}
