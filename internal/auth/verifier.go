package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nexusquery/auth-gateway/internal/identity"
	"go.uber.org/zap"
)

// DefaultVerifyTimeout bounds a single provider verification call.
const DefaultVerifyTimeout = 10 * time.Second

// TokenVerifier turns a credential into verified claims.
type TokenVerifier interface {
	Verify(ctx context.Context, cred BearerCredential) (*VerifiedClaims, error)
}

// Verifier implements TokenVerifier on top of an identity.Provider.
type Verifier struct {
	provider identity.Provider
	trust    *TrustMaterial
	logger   *zap.Logger
	timeout  time.Duration
	now      func() time.Time
}

// VerifierOption customizes a Verifier.
type VerifierOption func(*Verifier)

// WithVerifyTimeout sets the per-call provider timeout.
func WithVerifyTimeout(d time.Duration) VerifierOption {
	return func(v *Verifier) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// WithClock overrides the time source used for the expiry cross-check.
func WithClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		v.now = now
	}
}

// NewVerifier creates a verifier. trust is shared by every verifier of the
// process; pass the same instance that cmd/server initialized at startup.
func NewVerifier(provider identity.Provider, trust *TrustMaterial, logger *zap.Logger, opts ...VerifierOption) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &Verifier{
		provider: provider,
		trust:    trust,
		logger:   logger,
		timeout:  DefaultVerifyTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify validates cred with the identity provider.
func (v *Verifier) Verify(ctx context.Context, cred BearerCredential) (*VerifiedClaims, error) {
	if cred == "" {
		return nil, newFailure(MalformedCredential, errors.New("empty credential"))
	}
	if err := v.trust.Ensure(ctx); err != nil {
		v.logger.Error("trust_material_unavailable", zap.Error(err))
		return nil, newFailure(ProviderUnavailable, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	payload, err := v.provider.VerifyToken(callCtx, string(cred))
	if err != nil {
		failure := classifyVerifyError(ctx, err)
		v.logger.Debug("token_verification_failed",
			zap.String("token", cred.String()),
			zap.Stringer("kind", failure.Kind),
			zap.Error(err),
		)
		return nil, failure
	}

	claims, err := newVerifiedClaims(payload, v.now())
	if err != nil {
		v.logger.Debug("token_claims_rejected",
			zap.String("token", cred.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return claims, nil
}

func classifyVerifyError(ctx context.Context, err error) *Failure {
	if ctx.Err() != nil {
		return newFailure(ProviderUnavailable, fmt.Errorf("request ended while awaiting provider: %w", ctx.Err()))
	}
	switch identity.CodeOf(err) {
	case identity.ErrCodeMalformedToken:
		return newFailure(MalformedCredential, err)
	case identity.ErrCodeInvalidSignature, identity.ErrCodeInvalidClaims:
		return newFailure(InvalidSignatureOrClaims, err)
	case identity.ErrCodeTokenExpired:
		return newFailure(ExpiredCredential, err)
	case identity.ErrCodeUnavailable:
		return newFailure(ProviderUnavailable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return newFailure(ProviderUnavailable, err)
	}
	return newFailure(InvalidSignatureOrClaims, err)
}
