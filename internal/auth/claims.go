package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/nexusquery/auth-gateway/internal/identity"
)

// VerifiedClaims is the identity derived from a token that passed
// cryptographic and temporal validation. It is built once per request and
// never cached.
type VerifiedClaims struct {
	SubjectID     string
	Email         string
	EmailVerified bool
	// Role is informational; no route differentiates on it.
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

var (
	errMissingSubject = errors.New("token has no subject")
	errBadLifetime    = errors.New("token expiry is not after issue time")
)

// newVerifiedClaims applies the same expiry rule as the provider adapter: a
// token is expired once now reaches exp, with no skew.
func newVerifiedClaims(p *identity.TokenPayload, now time.Time) (*VerifiedClaims, error) {
	if p == nil || p.UID == "" {
		return nil, newFailure(InvalidSignatureOrClaims, errMissingSubject)
	}
	if p.IssuedAt.IsZero() || p.ExpiresAt.IsZero() || !p.ExpiresAt.After(p.IssuedAt) {
		return nil, newFailure(InvalidSignatureOrClaims, errBadLifetime)
	}
	if !now.Before(p.ExpiresAt) {
		return nil, newFailure(ExpiredCredential, fmt.Errorf("expired at %s", p.ExpiresAt.UTC().Format(time.RFC3339)))
	}

	role := p.Role
	if role == "" {
		role = identity.DefaultRole
	}
	return &VerifiedClaims{
		SubjectID:     p.UID,
		Email:         p.Email,
		EmailVerified: p.EmailVerified,
		Role:          role,
		IssuedAt:      p.IssuedAt,
		ExpiresAt:     p.ExpiresAt,
	}, nil
}
