package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nexusquery/auth-gateway/internal/auth"
	"github.com/nexusquery/auth-gateway/internal/request"
	"go.uber.org/zap"
)

type fakeAuthorizer struct {
	claims *auth.VerifiedClaims
	err    error
	policy auth.Policy
}

func (f *fakeAuthorizer) Authorize(_ context.Context, _ http.Header, policy auth.Policy) (*auth.VerifiedClaims, error) {
	f.policy = policy
	return f.claims, f.err
}

func TestAuth_FailureKindsAreOpaque(t *testing.T) {
	t.Parallel()

	kinds := []error{
		auth.ErrMissingCredential,
		auth.ErrMalformedCredential,
		auth.ErrInvalidSignatureOrClaims,
		auth.ErrExpiredCredential,
		auth.ErrProviderUnavailable,
	}

	var bodies []string
	for _, kindErr := range kinds {
		gate := &fakeAuthorizer{err: kindErr}
		called := false
		h := Auth(gate, auth.RequireAuthentication, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/status", nil))

		if called {
			t.Errorf("%v: next handler called", kindErr)
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%v: status = %d, want 401", kindErr, w.Code)
		}
		if got := w.Header().Get("WWW-Authenticate"); got != "Bearer" {
			t.Errorf("%v: WWW-Authenticate = %q, want Bearer", kindErr, got)
		}

		var body ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Success || body.Code != "" {
			t.Errorf("%v: unexpected body %+v", kindErr, body)
		}
		bodies = append(bodies, body.Message)
	}

	for _, m := range bodies {
		if m != bodies[0] {
			t.Errorf("messages differ across failure kinds: %q vs %q", m, bodies[0])
		}
	}
}

func TestAuth_StoresClaims(t *testing.T) {
	t.Parallel()

	want := &auth.VerifiedClaims{SubjectID: "u1", Email: "a@b.com", EmailVerified: true, Role: "user"}
	gate := &fakeAuthorizer{claims: want}

	var got *auth.VerifiedClaims
	h := Auth(gate, auth.RequireAuthentication, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = request.ClaimsFromContext(r)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/status", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got != want {
		t.Errorf("claims in context = %+v, want %+v", got, want)
	}
	if gate.policy != auth.RequireAuthentication {
		t.Errorf("policy = %v, want require_authentication", gate.policy)
	}
}

func TestAuth_AnonymousPassThrough(t *testing.T) {
	t.Parallel()

	gate := &fakeAuthorizer{}
	called := false
	h := Auth(gate, auth.AllowAnonymous, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if c := request.ClaimsFromContext(r); c != nil {
			t.Errorf("claims = %+v, want nil", c)
		}
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/signup", nil))

	if !called {
		t.Error("next handler not called for anonymous request")
	}
	if gate.policy != auth.AllowAnonymous {
		t.Errorf("policy = %v, want allow_anonymous", gate.policy)
	}
}
