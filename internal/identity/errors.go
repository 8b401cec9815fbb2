package identity

import (
	"errors"
	"fmt"
)

// ErrorCode classifies identity provider failures.
type ErrorCode string

const (
	ErrCodeMalformedToken   ErrorCode = "malformed_token"
	ErrCodeInvalidSignature ErrorCode = "invalid_signature"
	ErrCodeInvalidClaims    ErrorCode = "invalid_claims"
	ErrCodeTokenExpired     ErrorCode = "token_expired"
	ErrCodeUnavailable      ErrorCode = "unavailable"
	ErrCodeEmailExists      ErrorCode = "email_exists"
	ErrCodeWeakPassword     ErrorCode = "weak_password"
	ErrCodeInvalidEmail     ErrorCode = "invalid_email"
	ErrCodeUserNotFound     ErrorCode = "user_not_found"
	ErrCodeInternal         ErrorCode = "internal_error"
)

var errorMessages = map[ErrorCode]string{
	ErrCodeMalformedToken:   "Malformed token",
	ErrCodeInvalidSignature: "Invalid token signature",
	ErrCodeInvalidClaims:    "Invalid token claims",
	ErrCodeTokenExpired:     "Token expired",
	ErrCodeUnavailable:      "Identity provider unavailable",
	ErrCodeEmailExists:      "Email already exists",
	ErrCodeWeakPassword:     "Weak password",
	ErrCodeInvalidEmail:     "Invalid email",
	ErrCodeUserNotFound:     "User not found",
	ErrCodeInternal:         "Internal error",
}

// Error wraps provider errors with a stable code.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	base := e.Message
	if base == "" {
		base = string(e.Code)
	}
	if e.Err == nil {
		return base
	}
	return fmt.Sprintf("%s: %v", base, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an Error for code, wrapping err.
func NewError(code ErrorCode, err error) error {
	msg, ok := errorMessages[code]
	if !ok {
		msg = string(code)
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code carried by err, or ErrCodeInternal when err is not
// an *Error.
func CodeOf(err error) ErrorCode {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Code
	}
	return ErrCodeInternal
}
