// Package auth extracts, verifies and gates on bearer credentials issued by
// the external identity provider.
package auth

import (
	"net/http"
	"strings"

	"github.com/nexusquery/auth-gateway/internal/logger"
)

const bearerPrefix = "Bearer "

// BearerCredential is the raw token presented by a request. It lives only
// for the duration of that request.
type BearerCredential string

// String returns an opaque fingerprint so the raw token cannot end up in
// logs through formatting.
func (c BearerCredential) String() string {
	return logger.TokenFingerprint(string(c))
}

// ExtractBearer isolates the bearer token from the Authorization header.
// Absence, a different scheme, or an empty token all report ok == false;
// whether that is fatal is the caller's policy.
func ExtractBearer(h http.Header) (BearerCredential, bool) {
	value := h.Get("Authorization")
	if !strings.HasPrefix(value, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(value[len(bearerPrefix):])
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return BearerCredential(token), true
}
