package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAudit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status    int
		wantEvent string
	}{
		{http.StatusOK, ""},
		{http.StatusUnauthorized, "security_event"},
		{http.StatusForbidden, "security_event"},
		{http.StatusTooManyRequests, "rate_limit_violation"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zapcore.InfoLevel)
			h := Audit(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
			req.Header.Set("Authorization", "Bearer secret-token-value")
			h.ServeHTTP(httptest.NewRecorder(), req)

			entries := logs.All()
			if tt.wantEvent == "" {
				if len(entries) != 0 {
					t.Errorf("got %d audit entries, want 0", len(entries))
				}
				return
			}
			if len(entries) != 1 || entries[0].Message != tt.wantEvent {
				t.Fatalf("entries = %+v, want one %q", entries, tt.wantEvent)
			}
			for k, v := range entries[0].ContextMap() {
				if s, ok := v.(string); ok && s == "secret-token-value" {
					t.Errorf("field %q leaked the token", k)
				}
			}
		})
	}
}
