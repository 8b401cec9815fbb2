package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	logpkg "github.com/nexusquery/auth-gateway/internal/logger"
	"go.uber.org/zap"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path"`
	Code      string `json:"code,omitempty"`
}

// ErrorHandler creates error handling middleware
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					// Log panic details server-side but don't expose to client
					logger.Error("panic_recovered",
						zap.Any("error", err),
						zap.String("path", logpkg.SanitizePath(r.URL.Path)),
						zap.String("method", r.Method),
					)
					respondErrorCode(w, r, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred", CodeInternal, logger)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// Error codes set by middleware. Handlers reuse the same codes for the same
// conditions so clients see one vocabulary.
const (
	CodeRequestTooLarge       = "request_too_large"
	CodeMissingContentType    = "missing_content_type"
	CodeUnsupportedMediaType  = "unsupported_media_type"
	CodeRequestTimeout        = "request_timeout"
	CodeInternal              = "internal_error"
	requestTooLargeMessage    = "Request body is too large."
	unsupportedMediaTypeError = "Content-Type must be application/json."
)

// respondErrorJSON sends an error JSON response without a code.
func respondErrorJSON(w http.ResponseWriter, r *http.Request, status int, errorType, message string, logger *zap.Logger) {
	respondErrorCode(w, r, status, errorType, message, "", logger)
}

// respondErrorCode sends the error envelope handlers use, with code set.
func respondErrorCode(w http.ResponseWriter, r *http.Request, status int, errorType, message, code string, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := ErrorResponse{
		Success:   false,
		Error:     errorType,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      logpkg.SanitizePath(r.URL.Path),
		Code:      code,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed_to_encode_error_response",
			zap.Error(err),
			zap.Int("status_code", status),
			zap.String("path", logpkg.SanitizePath(r.URL.Path)),
		)
	}
}
