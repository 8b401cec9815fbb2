package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/nexusquery/auth-gateway/internal/account"
	"github.com/nexusquery/auth-gateway/internal/auth"
	"github.com/nexusquery/auth-gateway/internal/identity"
	"github.com/nexusquery/auth-gateway/internal/middleware"
	"go.uber.org/zap"
)

const (
	goodToken    = "good-token"
	expiredToken = "expired-token"
)

// stubProvider is an in-memory identity provider.
type stubProvider struct {
	mu        sync.Mutex
	revokeErr error
	revoked   []string
	created   []string
}

func (p *stubProvider) Init(context.Context) error { return nil }

func (p *stubProvider) VerifyToken(_ context.Context, raw string) (*identity.TokenPayload, error) {
	now := time.Now()
	switch raw {
	case goodToken:
		return &identity.TokenPayload{
			UID:           "u1",
			Email:         "a@b.com",
			EmailVerified: true,
			IssuedAt:      now.Add(-time.Minute),
			ExpiresAt:     now.Add(time.Hour),
		}, nil
	case expiredToken:
		return nil, identity.NewError(identity.ErrCodeTokenExpired, nil)
	default:
		return nil, identity.NewError(identity.ErrCodeInvalidSignature, nil)
	}
}

func (p *stubProvider) RevokeRefreshTokens(_ context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.revokeErr != nil {
		return p.revokeErr
	}
	p.revoked = append(p.revoked, uid)
	return nil
}

func (p *stubProvider) CreateAccount(_ context.Context, email, _ string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, email)
	if email == "taken@b.com" {
		return "", identity.NewError(identity.ErrCodeEmailExists, nil)
	}
	return "new-uid", nil
}

func (p *stubProvider) SendVerificationLink(_ context.Context, email string) (string, error) {
	switch email {
	case "ghost@b.com":
		return "", identity.NewError(identity.ErrCodeUserNotFound, nil)
	case "nolink@b.com":
		return "", identity.NewError(identity.ErrCodeUnavailable, nil)
	}
	return "https://example.com/verify?oobCode=abc", nil
}

func (p *stubProvider) createdCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.created)
}

// newTestRouter wires the real gate, verifier and account service around p.
func newTestRouter(t *testing.T, p *stubProvider) *mux.Router {
	t.Helper()

	trust := auth.NewTrustMaterial(p.Init)
	gate := auth.NewGate(auth.NewVerifier(p, trust, zap.NewNop()), nil, zap.NewNop())
	guard := func(policy auth.Policy) func(http.Handler) http.Handler {
		return middleware.Auth(gate, policy, zap.NewNop())
	}

	r := mux.NewRouter()
	NewAuthHandler(account.NewService(p, nil, zap.NewNop()), auth.NewSessionRevoker(p, zap.NewNop(), 0), zap.NewNop()).
		RegisterRoutes(r.PathPrefix("/auth").Subrouter(), guard, nil)
	NewProtectedHandler().RegisterRoutes(r.PathPrefix("/api").Subrouter(), guard)
	return r
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
