package auth

import (
	"context"

	"github.com/nexusquery/auth-gateway/internal/identity"
	"github.com/stretchr/testify/mock"
)

// MockProvider is a testify mock of identity.Provider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Init(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockProvider) VerifyToken(ctx context.Context, raw string) (*identity.TokenPayload, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.TokenPayload), args.Error(1)
}

func (m *MockProvider) RevokeRefreshTokens(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	if fn, ok := args.Get(0).(func(context.Context, string) error); ok {
		return fn(ctx, uid)
	}
	return args.Error(0)
}

func (m *MockProvider) CreateAccount(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) SendVerificationLink(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

// MockProfileSyncer records profile sync calls.
type MockProfileSyncer struct {
	mock.Mock
}

func (m *MockProfileSyncer) EnsureProfile(ctx context.Context, uid, email string) error {
	return m.Called(ctx, uid, email).Error(0)
}
