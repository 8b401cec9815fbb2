package auth

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a request could not be authenticated.
type FailureKind int

const (
	MissingCredential FailureKind = iota + 1
	MalformedCredential
	InvalidSignatureOrClaims
	ExpiredCredential
	ProviderUnavailable
)

func (k FailureKind) String() string {
	switch k {
	case MissingCredential:
		return "missing_credential"
	case MalformedCredential:
		return "malformed_credential"
	case InvalidSignatureOrClaims:
		return "invalid_signature_or_claims"
	case ExpiredCredential:
		return "expired_credential"
	case ProviderUnavailable:
		return "provider_unavailable"
	default:
		return fmt.Sprintf("failure_kind(%d)", int(k))
	}
}

// Failure is the classified outcome of a failed authentication. It never
// carries token material.
type Failure struct {
	Kind FailureKind
	Err  error
}

// Sentinels for errors.Is comparisons against a kind.
var (
	ErrMissingCredential        = &Failure{Kind: MissingCredential}
	ErrMalformedCredential      = &Failure{Kind: MalformedCredential}
	ErrInvalidSignatureOrClaims = &Failure{Kind: InvalidSignatureOrClaims}
	ErrExpiredCredential        = &Failure{Kind: ExpiredCredential}
	ErrProviderUnavailable      = &Failure{Kind: ProviderUnavailable}
)

func newFailure(kind FailureKind, err error) *Failure {
	return &Failure{Kind: kind, Err: err}
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return "auth: " + f.Kind.String()
	}
	return fmt.Sprintf("auth: %s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Is reports whether target is a Failure of the same kind.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}
	return t.Kind == f.Kind
}

// KindOf extracts the FailureKind from err.
func KindOf(err error) (FailureKind, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return 0, false
}
