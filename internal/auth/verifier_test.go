package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nexusquery/auth-gateway/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var verifyNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func readyTrust() *TrustMaterial {
	return NewTrustMaterial(func(context.Context) error { return nil })
}

func validPayload() *identity.TokenPayload {
	return &identity.TokenPayload{
		UID:           "u1",
		Email:         "a@b.com",
		EmailVerified: true,
		IssuedAt:      verifyNow.Add(-time.Minute),
		ExpiresAt:     verifyNow.Add(time.Hour),
	}
}

func newTestVerifier(p identity.Provider, trust *TrustMaterial) *Verifier {
	return NewVerifier(p, trust, zap.NewNop(), WithClock(func() time.Time { return verifyNow }))
}

func TestVerifier_Valid(t *testing.T) {
	t.Parallel()

	p := new(MockProvider)
	p.On("VerifyToken", mock.Anything, "good").Return(validPayload(), nil)

	claims, err := newTestVerifier(p, readyTrust()).Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.SubjectID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.True(t, claims.EmailVerified)
	assert.Equal(t, identity.DefaultRole, claims.Role)
	p.AssertExpectations(t)
}

func TestVerifier_KeepsProviderRole(t *testing.T) {
	t.Parallel()

	payload := validPayload()
	payload.Role = "admin"
	p := new(MockProvider)
	p.On("VerifyToken", mock.Anything, "good").Return(payload, nil)

	claims, err := newTestVerifier(p, readyTrust()).Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}

func TestVerifier_ClassifiesProviderErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"malformed", identity.NewError(identity.ErrCodeMalformedToken, nil), MalformedCredential},
		{"tampered", identity.NewError(identity.ErrCodeInvalidSignature, nil), InvalidSignatureOrClaims},
		{"wrong audience", identity.NewError(identity.ErrCodeInvalidClaims, nil), InvalidSignatureOrClaims},
		{"expired", identity.NewError(identity.ErrCodeTokenExpired, nil), ExpiredCredential},
		{"unavailable", identity.NewError(identity.ErrCodeUnavailable, nil), ProviderUnavailable},
		{"deadline", context.DeadlineExceeded, ProviderUnavailable},
		{"unknown", errors.New("something odd"), InvalidSignatureOrClaims},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := new(MockProvider)
			p.On("VerifyToken", mock.Anything, "tok").Return(nil, tt.err)

			_, err := newTestVerifier(p, readyTrust()).Verify(context.Background(), "tok")
			kind, ok := KindOf(err)
			require.True(t, ok, "expected a classified failure, got %v", err)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestVerifier_ExpiredPayloadRejected(t *testing.T) {
	t.Parallel()

	payload := validPayload()
	payload.IssuedAt = verifyNow.Add(-2 * time.Hour)
	payload.ExpiresAt = verifyNow.Add(-time.Hour)
	p := new(MockProvider)
	p.On("VerifyToken", mock.Anything, "old").Return(payload, nil)

	_, err := newTestVerifier(p, readyTrust()).Verify(context.Background(), "old")
	assert.ErrorIs(t, err, ErrExpiredCredential)
}

func TestVerifier_PayloadWithoutSubjectRejected(t *testing.T) {
	t.Parallel()

	payload := validPayload()
	payload.UID = ""
	p := new(MockProvider)
	p.On("VerifyToken", mock.Anything, "tok").Return(payload, nil)

	_, err := newTestVerifier(p, readyTrust()).Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrInvalidSignatureOrClaims)
}

func TestVerifier_EmptyCredential(t *testing.T) {
	t.Parallel()

	p := new(MockProvider)
	_, err := newTestVerifier(p, readyTrust()).Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrMalformedCredential)
	p.AssertNotCalled(t, "VerifyToken", mock.Anything, mock.Anything)
}

func TestVerifier_TrustInitFailure(t *testing.T) {
	t.Parallel()

	p := new(MockProvider)
	trust := NewTrustMaterial(func(context.Context) error { return errors.New("no key file") })

	_, err := newTestVerifier(p, trust).Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	p.AssertNotCalled(t, "VerifyToken", mock.Anything, mock.Anything)
}

func TestVerifier_CancelledRequest(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	p := new(MockProvider)
	p.On("VerifyToken", mock.Anything, "tok").
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, context.Canceled)

	_, err := newTestVerifier(p, readyTrust()).Verify(ctx, "tok")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestVerifier_ConcurrentColdStartInitializesOnce(t *testing.T) {
	t.Parallel()

	p := new(MockProvider)
	p.On("Init", mock.Anything).After(10 * time.Millisecond).Return(nil).Once()
	p.On("VerifyToken", mock.Anything, "good").Return(validPayload(), nil)

	trust := NewTrustMaterial(p.Init)
	v := newTestVerifier(p, trust)

	const callers = 12
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		go func() {
			_, err := v.Verify(context.Background(), "good")
			errs <- err
		}()
	}
	for i := 0; i < callers; i++ {
		assert.NoError(t, <-errs)
	}
	assert.Equal(t, 1, trust.Initializations())
	p.AssertNumberOfCalls(t, "Init", 1)
}
