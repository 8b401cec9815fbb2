package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/nexusquery/auth-gateway/internal/auth"
	"github.com/nexusquery/auth-gateway/internal/config"
	"github.com/nexusquery/auth-gateway/internal/identity/firebase"
	"gopkg.in/yaml.v3"
)

const (
	outputYAML = "yaml"
	outputJSON = "json"
)

// newProvider builds the Firebase provider from the environment. The
// command is responsible for initializing it.
func newProvider() (*config.Config, *firebase.Provider, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	p := firebase.NewProvider(firebase.Config{
		ServiceAccountPath: cfg.FirebaseServiceAccountPath,
		ProjectID:          cfg.FirebaseProjectID,
		JWKSURL:            cfg.FirebaseJWKSURL,
	})
	return cfg, p, nil
}

// writeOutput renders v as YAML or JSON.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "", outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported output format %q (want yaml or json)", format)
	}
}

// claimsView is the printable form of verified claims.
type claimsView struct {
	SubjectID     string `yaml:"subject_id" json:"subject_id"`
	Email         string `yaml:"email,omitempty" json:"email,omitempty"`
	EmailVerified bool   `yaml:"email_verified" json:"email_verified"`
	Role          string `yaml:"role" json:"role"`
	IssuedAt      string `yaml:"issued_at" json:"issued_at"`
	ExpiresAt     string `yaml:"expires_at" json:"expires_at"`
}

func viewClaims(c *auth.VerifiedClaims) claimsView {
	return claimsView{
		SubjectID:     c.SubjectID,
		Email:         c.Email,
		EmailVerified: c.EmailVerified,
		Role:          c.Role,
		IssuedAt:      c.IssuedAt.UTC().Format(time.RFC3339),
		ExpiresAt:     c.ExpiresAt.UTC().Format(time.RFC3339),
	}
}
