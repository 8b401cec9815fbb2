package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/nexusquery/auth-gateway/internal/account"
	"github.com/nexusquery/auth-gateway/internal/auth"
	logpkg "github.com/nexusquery/auth-gateway/internal/logger"
	"github.com/nexusquery/auth-gateway/internal/request"
	"go.uber.org/zap"
)

// Guard wraps a handler with the authentication policy declared for its route.
type Guard func(policy auth.Policy) func(http.Handler) http.Handler

// AccountService is the account surface used by the auth handlers.
type AccountService interface {
	SignUp(ctx context.Context, req account.SignUpRequest) (*account.SignUpResult, error)
	ResendVerification(ctx context.Context, email string) error
}

// SessionRevoker revokes all sessions of a subject.
type SessionRevoker interface {
	RevokeAllSessions(ctx context.Context, subjectID string) error
}

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	accounts AccountService
	revoker  SessionRevoker
	logger   *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accounts AccountService, revoker SessionRevoker, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{accounts: accounts, revoker: revoker, logger: logger}
}

// RegisterRoutes registers auth routes on the given router.
// The router should already have the /auth prefix. limit wraps the public
// account routes; nil disables it. Those routes never run the gate, so a
// stale Authorization header sent along by a signed-in client is ignored.
func (h *AuthHandler) RegisterRoutes(r *mux.Router, guard Guard, limit func(http.Handler) http.Handler) {
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}
	public := func(f http.HandlerFunc) http.Handler {
		return limit(f)
	}
	required := func(f http.HandlerFunc) http.Handler {
		return guard(auth.RequireAuthentication)(f)
	}

	r.Handle("/signup", public(h.SignUp)).Methods(http.MethodPost)
	r.Handle("/send-verification-email", public(h.SendVerificationEmail)).Methods(http.MethodPost)
	r.Handle("/status", required(h.Status)).Methods(http.MethodGet)
	r.Handle("/logout", required(h.Logout)).Methods(http.MethodPost)
}

// SignUpResponse is returned after an account is created.
type SignUpResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	UID     string `json:"uid"`
}

// SignUp creates an account and sends the verification link.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req account.SignUpRequest
	if err := decodeJSON(r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}

	result, err := h.accounts.SignUp(r.Context(), req)
	if err != nil {
		h.respondAccountError(w, r, err, "Sign-up failed.")
		return
	}

	message := fmt.Sprintf("Account created. Verification link sent to %s. Please verify your email.", req.Email)
	if !result.LinkSent {
		message = "Account created, but the verification link could not be sent. Request a new one to verify your email."
	}
	respondJSON(w, http.StatusCreated, SignUpResponse{
		Status:  "success",
		Message: message,
		UID:     result.UID,
	})
}

type emailRequest struct {
	Email string `json:"email"`
}

// StatusMessageResponse is a plain status/message body.
type StatusMessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SendVerificationEmail resends the verification link to an existing account.
func (h *AuthHandler) SendVerificationEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}

	if err := h.accounts.ResendVerification(r.Context(), req.Email); err != nil {
		h.respondAccountError(w, r, err, "Failed to resend email.")
		return
	}

	respondJSON(w, http.StatusOK, StatusMessageResponse{
		Status:  "success",
		Message: "Verification email resent. Please check your inbox.",
	})
}

// UserStatusResponse describes the authenticated caller.
type UserStatusResponse struct {
	Message       string  `json:"message"`
	FirebaseUID   string  `json:"firebase_uid"`
	Email         *string `json:"email"`
	EmailVerified bool    `json:"email_verified"`
	Role          string  `json:"role"`
}

// Status reports the identity carried by the caller's token.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	claims := request.ClaimsFromContext(r)
	if claims == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required.")
		return
	}

	var email *string
	if claims.Email != "" {
		email = &claims.Email
	}
	respondJSON(w, http.StatusOK, UserStatusResponse{
		Message:       "✓ Token is valid and user is authenticated.",
		FirebaseUID:   claims.SubjectID,
		Email:         email,
		EmailVerified: claims.EmailVerified,
		Role:          claims.Role,
	})
}

// Logout revokes every refresh token of the caller. Access tokens already
// issued remain valid until they expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := request.ClaimsFromContext(r)
	if claims == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required.")
		return
	}

	if err := h.revoker.RevokeAllSessions(r.Context(), claims.SubjectID); err != nil {
		h.logger.Error("logout_failed",
			zap.String("request_id", request.RequestIDFromContext(r.Context())),
			zap.String("subject_id", logpkg.SanitizeUserID(claims.SubjectID)),
			zap.Error(err),
		)
		respondJSONErrorCode(w, http.StatusInternalServerError, "Internal Server Error", "Logout failed.", "provider_unavailable")
		return
	}

	respondJSON(w, http.StatusOK, StatusMessageResponse{
		Status:  "success",
		Message: "Logged out successfully. All sessions revoked.",
	})
}

func (h *AuthHandler) respondAccountError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, account.ErrAccountAlreadyExists):
		respondJSONErrorCode(w, http.StatusBadRequest, "Bad Request", "Email already registered. Please sign in.", "account_already_exists")
	case errors.Is(err, account.ErrWeakSecret):
		respondJSONErrorCode(w, http.StatusBadRequest, "Bad Request", "Password is too weak. Use at least 6 characters with mix of letters and numbers.", "weak_secret")
	case errors.Is(err, account.ErrInvalidEmailFormat):
		respondJSONErrorCode(w, http.StatusBadRequest, "Bad Request", "Invalid email format.", "invalid_email_format")
	case errors.Is(err, account.ErrAccountNotFound):
		respondJSONErrorCode(w, http.StatusNotFound, "Not Found", "User not found.", "account_not_found")
	case errors.Is(err, account.ErrProviderUnavailable):
		respondJSONErrorCode(w, http.StatusServiceUnavailable, "Service Unavailable", fallback+" Please try again later.", "provider_unavailable")
	default:
		h.logger.Error("account_request_failed",
			zap.String("request_id", request.RequestIDFromContext(r.Context())),
			zap.String("path", logpkg.SanitizePath(r.URL.Path)),
			zap.Error(err),
		)
		respondJSONErrorCode(w, http.StatusBadRequest, "Bad Request", fallback, "request_failed")
	}
}
