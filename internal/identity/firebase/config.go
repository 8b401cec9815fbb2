package firebase

import (
	"errors"
	"time"
)

const (
	// DefaultJWKSURL serves the public keys that sign Firebase ID tokens.
	DefaultJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

	issuerPrefix = "https://securetoken.google.com/"

	defaultClockSkew   = 30 * time.Second
	defaultMinRefresh  = 15 * time.Minute
	defaultHTTPTimeout = 10 * time.Second

	maxSubjectLength = 128
)

var adminScopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/identitytoolkit",
}

// Config describes one Firebase project.
type Config struct {
	// ServiceAccountPath points at the service account JSON key.
	ServiceAccountPath string
	// ProjectID overrides the project id found in the key file.
	ProjectID   string
	JWKSURL     string
	ClockSkew   time.Duration
	MinRefresh  time.Duration
	HTTPTimeout time.Duration
}

func (c *Config) normalize() {
	if c.JWKSURL == "" {
		c.JWKSURL = DefaultJWKSURL
	}
	if c.ClockSkew <= 0 {
		c.ClockSkew = defaultClockSkew
	}
	if c.MinRefresh <= 0 {
		c.MinRefresh = defaultMinRefresh
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = defaultHTTPTimeout
	}
}

func (c Config) validate(injectedCredentials bool) error {
	if c.ServiceAccountPath == "" && !injectedCredentials {
		return errors.New("service account path is required")
	}
	return nil
}
