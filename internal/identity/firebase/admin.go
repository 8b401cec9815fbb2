package firebase

import (
	"context"
	"errors"
	"net/http"

	fbauth "firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/errorutils"
	"github.com/nexusquery/auth-gateway/internal/identity"
	"github.com/nexusquery/auth-gateway/internal/logger"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// userAdmin is the subset of the Firebase Admin auth client the provider
// uses. *fbauth.Client satisfies it.
type userAdmin interface {
	CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*fbauth.UserRecord, error)
	EmailVerificationLink(ctx context.Context, email string) (string, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

var _ userAdmin = (*fbauth.Client)(nil)

// CreateAccount registers an unverified email/password account and returns
// its uid.
func (p *Provider) CreateAccount(ctx context.Context, email, password string) (string, error) {
	ctx, span := p.tracer.Start(ctx, "firebase.create_account")
	defer span.End()

	st, err := p.ready()
	if err != nil {
		return "", failSpan(span, err)
	}
	user, err := st.users.CreateUser(ctx, (&fbauth.UserToCreate{}).
		Email(email).
		Password(password).
		EmailVerified(false))
	if err != nil {
		return "", failSpan(span, classifyCreateError(err))
	}
	p.logger.Info("firebase_account_created",
		zap.String("uid", logger.SanitizeUserID(user.UID)),
		zap.String("email", logger.SanitizeEmail(email)),
	)
	return user.UID, nil
}

// SendVerificationLink generates an email verification link for an existing
// account. Delivery of the link is left to the caller.
func (p *Provider) SendVerificationLink(ctx context.Context, email string) (string, error) {
	ctx, span := p.tracer.Start(ctx, "firebase.send_verification_link")
	defer span.End()

	st, err := p.ready()
	if err != nil {
		return "", failSpan(span, err)
	}
	if _, err := st.users.GetUserByEmail(ctx, email); err != nil {
		return "", failSpan(span, classifyAdminError(err))
	}
	link, err := st.users.EmailVerificationLink(ctx, email)
	if err != nil {
		return "", failSpan(span, classifyAdminError(err))
	}
	if link == "" {
		return "", failSpan(span, identity.NewError(identity.ErrCodeInternal, errors.New("no verification link returned")))
	}
	return link, nil
}

// RevokeRefreshTokens invalidates every refresh token issued to uid before
// now. ID tokens already issued stay valid until they expire.
func (p *Provider) RevokeRefreshTokens(ctx context.Context, uid string) error {
	ctx, span := p.tracer.Start(ctx, "firebase.revoke_refresh_tokens")
	defer span.End()

	st, err := p.ready()
	if err != nil {
		return failSpan(span, err)
	}
	if err := st.users.RevokeRefreshTokens(ctx, uid); err != nil {
		return failSpan(span, classifyAdminError(err))
	}
	return nil
}

func failSpan(span trace.Span, err error) error {
	span.SetStatus(codes.Error, string(identity.CodeOf(err)))
	return err
}

// classifyCreateError maps account creation failures. The admin API reports
// a password it rejects as a plain invalid argument.
func classifyCreateError(err error) error {
	if errorutils.IsInvalidArgument(err) && !fbauth.IsInvalidEmail(err) {
		return identity.NewError(identity.ErrCodeWeakPassword, err)
	}
	return classifyAdminError(err)
}

func classifyAdminError(err error) error {
	switch {
	case fbauth.IsEmailAlreadyExists(err):
		return identity.NewError(identity.ErrCodeEmailExists, err)
	case fbauth.IsInvalidEmail(err):
		return identity.NewError(identity.ErrCodeInvalidEmail, err)
	case fbauth.IsUserNotFound(err), fbauth.IsEmailNotFound(err):
		return identity.NewError(identity.ErrCodeUserNotFound, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded),
		errorutils.IsUnavailable(err), errorutils.IsDeadlineExceeded(err),
		errorutils.IsResourceExhausted(err), errorutils.IsInternal(err):
		return identity.NewError(identity.ErrCodeUnavailable, err)
	}
	if res := errorutils.HTTPResponse(err); res != nil && res.StatusCode >= http.StatusInternalServerError {
		return identity.NewError(identity.ErrCodeUnavailable, err)
	}
	return identity.NewError(identity.ErrCodeInternal, err)
}
