package middleware

import (
	"context"
	"net/http"

	"github.com/nexusquery/auth-gateway/internal/auth"
	"github.com/nexusquery/auth-gateway/internal/request"
	"go.uber.org/zap"
)

// unauthorizedMessage is the only message a client sees for any
// authentication failure.
const unauthorizedMessage = "Invalid or expired authentication token."

// Authorizer is the gate operation the middleware depends on.
type Authorizer interface {
	Authorize(ctx context.Context, h http.Header, policy auth.Policy) (*auth.VerifiedClaims, error)
}

// Auth runs the gate with policy and stores the verified claims in the
// request context. Every failure kind becomes the same 401.
func Auth(gate Authorizer, policy auth.Policy, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := gate.Authorize(r.Context(), r.Header, policy)
			if err != nil {
				kind, _ := auth.KindOf(err)
				logger.Debug("request_unauthenticated",
					zap.String("request_id", request.RequestIDFromContext(r.Context())),
					zap.Stringer("kind", kind),
				)
				RespondUnauthorized(w, r, logger)
				return
			}
			if claims != nil {
				r = r.WithContext(request.WithClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RespondUnauthorized writes the generic 401 with a bearer challenge.
func RespondUnauthorized(w http.ResponseWriter, r *http.Request, logger *zap.Logger) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	respondErrorJSON(w, r, http.StatusUnauthorized, "Unauthorized", unauthorizedMessage, logger)
}
