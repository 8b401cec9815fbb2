package auth

import (
	"context"
	"net/http"

	"github.com/nexusquery/auth-gateway/internal/logger"
	"go.uber.org/zap"
)

// Policy declares, per route, what happens when no credential is present.
type Policy int

const (
	// RequireAuthentication rejects requests without a credential.
	RequireAuthentication Policy = iota
	// AllowAnonymous lets requests without a credential through with nil
	// claims. A credential that is present is still verified.
	AllowAnonymous
)

func (p Policy) String() string {
	if p == AllowAnonymous {
		return "allow_anonymous"
	}
	return "require_authentication"
}

// ProfileSyncer ensures a local profile exists for a verified subject.
type ProfileSyncer interface {
	EnsureProfile(ctx context.Context, uid, email string) error
}

// Gate is the single building block protected operations depend on.
type Gate struct {
	verifier TokenVerifier
	profiles ProfileSyncer
	logger   *zap.Logger
}

// NewGate creates a gate. profiles may be nil.
func NewGate(verifier TokenVerifier, profiles ProfileSyncer, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{verifier: verifier, profiles: profiles, logger: logger}
}

// Authorize extracts and verifies the request credential. Under
// AllowAnonymous a missing credential yields (nil, nil).
func (g *Gate) Authorize(ctx context.Context, h http.Header, policy Policy) (*VerifiedClaims, error) {
	cred, ok := ExtractBearer(h)
	if !ok {
		if policy == AllowAnonymous {
			return nil, nil
		}
		g.audit("", MissingCredential)
		return nil, newFailure(MissingCredential, nil)
	}

	claims, err := g.verifier.Verify(ctx, cred)
	if err != nil {
		kind, ok := KindOf(err)
		if !ok {
			kind = InvalidSignatureOrClaims
			err = newFailure(kind, err)
		}
		g.audit("", kind)
		return nil, err
	}

	g.audit(claims.SubjectID, 0)
	g.syncProfile(ctx, claims)
	return claims, nil
}

func (g *Gate) syncProfile(ctx context.Context, claims *VerifiedClaims) {
	if g.profiles == nil {
		return
	}
	if err := g.profiles.EnsureProfile(ctx, claims.SubjectID, claims.Email); err != nil {
		g.logger.Warn("profile_sync_failed",
			zap.String("subject_id", logger.SanitizeUserID(claims.SubjectID)),
			zap.Error(err),
		)
	}
}

func (g *Gate) audit(subjectID string, kind FailureKind) {
	if kind == 0 {
		g.logger.Info("auth_outcome",
			zap.String("subject_id", logger.SanitizeUserID(subjectID)),
			zap.String("outcome", "success"),
		)
		return
	}
	g.logger.Info("auth_outcome",
		zap.String("outcome", "failure"),
		zap.Stringer("kind", kind),
	)
}
