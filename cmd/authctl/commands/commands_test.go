package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nexusquery/auth-gateway/internal/auth"
	"github.com/nexusquery/auth-gateway/internal/models"
	"gopkg.in/yaml.v3"
)

func TestReadToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "eyJ.abc.def\n", "eyJ.abc.def", false},
		{"bearer prefix", "Bearer eyJ.abc.def\n", "eyJ.abc.def", false},
		{"leading blank lines", "\n\n  eyJ.abc.def  \n", "eyJ.abc.def", false},
		{"empty", "", "", true},
		{"only whitespace", "  \n\t\n", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := readToken(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("readToken() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("readToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteOutput_Claims(t *testing.T) {
	t.Parallel()

	iat := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	view := viewClaims(&auth.VerifiedClaims{
		SubjectID:     "u1",
		Email:         "a@b.com",
		EmailVerified: true,
		Role:          "user",
		IssuedAt:      iat,
		ExpiresAt:     iat.Add(time.Hour),
	})

	var yamlBuf bytes.Buffer
	if err := writeOutput(&yamlBuf, outputYAML, view); err != nil {
		t.Fatalf("writeOutput(yaml) error = %v", err)
	}
	var fromYAML claimsView
	if err := yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if fromYAML != view {
		t.Errorf("yaml = %+v, want %+v", fromYAML, view)
	}
	if fromYAML.ExpiresAt != "2025-03-01T13:00:00Z" {
		t.Errorf("expires_at = %q", fromYAML.ExpiresAt)
	}

	var jsonBuf bytes.Buffer
	if err := writeOutput(&jsonBuf, outputJSON, view); err != nil {
		t.Fatalf("writeOutput(json) error = %v", err)
	}
	var fromJSON map[string]any
	if err := json.Unmarshal(jsonBuf.Bytes(), &fromJSON); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if fromJSON["subject_id"] != "u1" {
		t.Errorf("json subject_id = %v", fromJSON["subject_id"])
	}

	if err := writeOutput(&bytes.Buffer{}, "xml", view); err == nil {
		t.Error("writeOutput(xml) error = nil, want unsupported format")
	}
}

func TestPrintProfiles(t *testing.T) {
	t.Parallel()

	var empty bytes.Buffer
	if err := printProfiles(&empty, outputYAML, nil); err != nil {
		t.Fatalf("printProfiles() error = %v", err)
	}
	if got := strings.TrimSpace(empty.String()); got != "No profiles found" {
		t.Errorf("empty output = %q", got)
	}

	id := uuid.New()
	seen := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	err := printProfiles(&buf, outputYAML, []*models.Profile{{
		ID: id, FirebaseUID: "u1", Email: "a@b.com", Role: "user", CreatedAt: seen, LastSeenAt: seen,
	}})
	if err != nil {
		t.Fatalf("printProfiles() error = %v", err)
	}

	var decoded []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if len(decoded) != 1 || decoded[0]["firebase_uid"] != "u1" || decoded[0]["id"] != id.String() {
		t.Errorf("decoded = %v", decoded)
	}
}

type fakeGate struct {
	claims *auth.VerifiedClaims
	err    error
	header string
}

func (g *fakeGate) Authorize(_ context.Context, h http.Header, _ auth.Policy) (*auth.VerifiedClaims, error) {
	g.header = h.Get("Authorization")
	return g.claims, g.err
}

type fakeRevoker struct {
	revoked []string
}

func (r *fakeRevoker) RevokeAllSessions(_ context.Context, subjectID string) error {
	r.revoked = append(r.revoked, subjectID)
	return nil
}

func TestRevokeOwnSessions(t *testing.T) {
	t.Parallel()

	t.Run("revokes the token owner", func(t *testing.T) {
		t.Parallel()

		gate := &fakeGate{claims: &auth.VerifiedClaims{SubjectID: "u1"}}
		revoker := &fakeRevoker{}
		uid, err := revokeOwnSessions(context.Background(), gate, revoker, "eyJ.abc.def")
		if err != nil {
			t.Fatalf("revokeOwnSessions() error = %v", err)
		}
		if uid != "u1" {
			t.Errorf("uid = %q, want u1", uid)
		}
		if gate.header != "Bearer eyJ.abc.def" {
			t.Errorf("Authorization = %q", gate.header)
		}
		if len(revoker.revoked) != 1 || revoker.revoked[0] != "u1" {
			t.Errorf("revoked = %v, want [u1]", revoker.revoked)
		}
	})

	t.Run("rejected token revokes nothing", func(t *testing.T) {
		t.Parallel()

		gate := &fakeGate{err: auth.ErrExpiredCredential}
		revoker := &fakeRevoker{}
		_, err := revokeOwnSessions(context.Background(), gate, revoker, "stale")
		if !errors.Is(err, auth.ErrExpiredCredential) {
			t.Fatalf("error = %v, want expired credential", err)
		}
		if len(revoker.revoked) != 0 {
			t.Errorf("revoked = %v, want none", revoker.revoked)
		}
	})
}
