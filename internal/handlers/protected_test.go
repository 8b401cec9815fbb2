package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProtectedRoutes_Authenticated(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, &stubProvider{})

	t.Run("status", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		req.Header.Set("Authorization", "Bearer "+goodToken)
		w := serve(r, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var body ProtectedStatusResponse
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.UserID != "u1" || body.AccessLevel != "Standard User" || body.Status != "success" {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("query", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/api/query", nil)
		req.Header.Set("Authorization", "Bearer "+goodToken)
		w := serve(r, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var body QueryResponse
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.UserID != "u1" || body.Results == "" {
			t.Errorf("body = %+v", body)
		}
	})
}

func TestProtectedHandler_NoClaims(t *testing.T) {
	t.Parallel()

	h := NewProtectedHandler()
	w := httptest.NewRecorder()
	h.Status(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
