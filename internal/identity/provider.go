// Package identity defines the boundary to the external identity provider.
//
// The gateway never inspects provider-specific error subtypes beyond the
// ErrorCode classification carried by *Error.
package identity

import (
	"context"
	"time"
)

// DefaultRole is reported when a token carries no role claim.
const DefaultRole = "user"

// TokenPayload is the strict schema of a verified ID token payload. Optional
// claims that were absent are left at their zero value.
type TokenPayload struct {
	UID           string
	Email         string
	EmailVerified bool
	Role          string
	IssuedAt      time.Time
	ExpiresAt     time.Time
}

// Provider is the contract the gateway consumes from the identity provider.
type Provider interface {
	// Init loads trust material. It is called at most once per process.
	Init(ctx context.Context) error

	// VerifyToken validates signature, issuer, audience and expiry.
	VerifyToken(ctx context.Context, raw string) (*TokenPayload, error)

	// RevokeRefreshTokens invalidates every refresh token of uid. Access
	// tokens already issued stay valid until they expire.
	RevokeRefreshTokens(ctx context.Context, uid string) error

	// CreateAccount registers an email/password account and returns its uid.
	CreateAccount(ctx context.Context, email, password string) (string, error)

	// SendVerificationLink generates an email verification link for an
	// existing account.
	SendVerificationLink(ctx context.Context, email string) (string, error)
}
