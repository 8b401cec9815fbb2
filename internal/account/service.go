// Package account implements the unauthenticated account operations:
// signing up and re-sending the email verification link.
package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/nexusquery/auth-gateway/internal/logger"
	"github.com/nexusquery/auth-gateway/internal/validation"
	"go.uber.org/zap"
)

// Provider is the subset of identity.Provider used for account management.
type Provider interface {
	CreateAccount(ctx context.Context, email, password string) (string, error)
	SendVerificationLink(ctx context.Context, email string) (string, error)
}

// SignUpRequest is the input of SignUp.
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email,no_control"`
	Password string `json:"password" validate:"required,min=6"`
}

// SignUpResult reports a created account.
type SignUpResult struct {
	UID string
	// LinkSent is false when the account was created but the verification
	// link could not be generated or dispatched.
	LinkSent bool
}

type resendRequest struct {
	Email string `validate:"required,email,no_control"`
}

// Service runs account operations against the identity provider.
type Service struct {
	provider   Provider
	dispatcher LinkDispatcher
	logger     *zap.Logger
}

// NewService creates a Service. A nil dispatcher selects LogDispatcher.
func NewService(provider Provider, dispatcher LinkDispatcher, l *zap.Logger) *Service {
	if l == nil {
		l = zap.NewNop()
	}
	if dispatcher == nil {
		dispatcher = NewLogDispatcher(l)
	}
	return &Service{provider: provider, dispatcher: dispatcher, logger: l}
}

// SignUp validates the request locally, creates the account and sends the
// verification link. Invalid input never reaches the provider.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*SignUpResult, error) {
	req.Email = validation.NormalizeEmail(req.Email)
	if err := validateInput(req); err != nil {
		return nil, err
	}

	uid, err := s.provider.CreateAccount(ctx, req.Email, req.Password)
	if err != nil {
		mapped := fromProvider(err)
		s.logger.Warn("signup_failed",
			zap.String("email", logger.SanitizeEmail(req.Email)),
			zap.Error(err),
		)
		return nil, mapped
	}

	result := &SignUpResult{UID: uid}
	if err := s.sendLink(ctx, req.Email); err != nil {
		// The account exists; the user can ask for the link again.
		s.logger.Error("verification_link_failed",
			zap.String("uid", logger.SanitizeUserID(uid)),
			zap.Error(err),
		)
		return result, nil
	}
	result.LinkSent = true

	s.logger.Info("account_created",
		zap.String("uid", logger.SanitizeUserID(uid)),
		zap.String("email", logger.SanitizeEmail(req.Email)),
	)
	return result, nil
}

// ResendVerification sends a new verification link to an existing account.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)
	if err := validateInput(resendRequest{Email: email}); err != nil {
		return err
	}
	if err := s.sendLink(ctx, email); err != nil {
		s.logger.Warn("verification_resend_failed",
			zap.String("email", logger.SanitizeEmail(email)),
			zap.Error(err),
		)
		return err
	}
	s.logger.Info("verification_resent", zap.String("email", logger.SanitizeEmail(email)))
	return nil
}

func (s *Service) sendLink(ctx context.Context, email string) error {
	link, err := s.provider.SendVerificationLink(ctx, email)
	if err != nil {
		return fromProvider(err)
	}
	if err := s.dispatcher.DispatchVerificationLink(ctx, email, link); err != nil {
		return fmt.Errorf("dispatch verification link: %w", err)
	}
	return nil
}

func validateInput(v any) error {
	err := validation.Validate.Struct(v)
	if err == nil {
		return nil
	}
	fields := validation.FieldErrors(err)
	if len(fields) == 0 {
		return fmt.Errorf("validate request: %w", err)
	}
	return fieldError(fields[0])
}

func fieldError(fe validator.FieldError) error {
	switch fe.Field() {
	case "Password":
		return ErrWeakSecret
	case "Email":
		return ErrInvalidEmailFormat
	}
	return errors.New("invalid " + fe.Field())
}
