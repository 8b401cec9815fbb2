package auth

import (
	"context"
	"errors"
	"time"

	"github.com/nexusquery/auth-gateway/internal/logger"
	"go.uber.org/zap"
)

// DefaultRevokeTimeout bounds a single revocation call.
const DefaultRevokeTimeout = 10 * time.Second

// RefreshTokenRevoker is the provider operation behind logout.
type RefreshTokenRevoker interface {
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// SessionRevoker invalidates every refresh token of a subject.
//
// Access tokens issued before the revocation remain valid until their own
// expiry; the provider does not invalidate them retroactively.
type SessionRevoker struct {
	provider RefreshTokenRevoker
	logger   *zap.Logger
	timeout  time.Duration
}

// NewSessionRevoker creates a revoker. timeout <= 0 selects
// DefaultRevokeTimeout.
func NewSessionRevoker(provider RefreshTokenRevoker, logger *zap.Logger, timeout time.Duration) *SessionRevoker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultRevokeTimeout
	}
	return &SessionRevoker{provider: provider, logger: logger, timeout: timeout}
}

// RevokeAllSessions revokes subjectID's refresh tokens. The caller must have
// passed the Gate for the same subject. Revoking an already revoked subject
// succeeds. Any provider error, a timeout included, is reported as
// ProviderUnavailable and is not retried: the effect is unknown.
func (r *SessionRevoker) RevokeAllSessions(ctx context.Context, subjectID string) error {
	if subjectID == "" {
		return newFailure(InvalidSignatureOrClaims, errMissingSubject)
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.provider.RevokeRefreshTokens(callCtx, subjectID); err != nil {
		r.logger.Error("session_revocation_failed",
			zap.String("subject_id", logger.SanitizeUserID(subjectID)),
			zap.Bool("timed_out", errors.Is(err, context.DeadlineExceeded) || callCtx.Err() != nil),
			zap.Error(err),
		)
		return newFailure(ProviderUnavailable, err)
	}

	r.logger.Info("sessions_revoked",
		zap.String("subject_id", logger.SanitizeUserID(subjectID)),
	)
	return nil
}
