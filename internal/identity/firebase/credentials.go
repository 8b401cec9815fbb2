package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type serviceAccountKey struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

type credentials struct {
	projectID   string
	clientEmail string
	tokens      oauth2.TokenSource
}

// loadServiceAccount reads and validates the key at path. A missing or
// corrupt file is an error the process must not continue past.
func loadServiceAccount(ctx context.Context, path string) (*credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("service account key not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to read service account key: %w", err)
	}

	var key serviceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("service account key is not valid JSON: %w", err)
	}
	switch {
	case key.Type != "service_account":
		return nil, fmt.Errorf("unexpected credential type %q", key.Type)
	case key.ClientEmail == "":
		return nil, errors.New("service account key has no client_email")
	case key.PrivateKey == "":
		return nil, errors.New("service account key has no private_key")
	}

	creds, err := google.CredentialsFromJSON(ctx, data, adminScopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account key: %w", err)
	}

	return &credentials{
		projectID:   key.ProjectID,
		clientEmail: key.ClientEmail,
		tokens:      creds.TokenSource,
	}, nil
}
