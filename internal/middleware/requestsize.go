package middleware

import (
	"net/http"

	logpkg "github.com/nexusquery/auth-gateway/internal/logger"
	"go.uber.org/zap"
)

// DefaultMaxRequestSize bounds account request bodies. Credentials and
// emails fit in a few hundred bytes.
const DefaultMaxRequestSize int64 = 1 << 20

// MaxRequestSize rejects bodies larger than maxBytes. A declared
// Content-Length over the limit is refused here; an undeclared one is cut
// off by http.MaxBytesReader and surfaces as *http.MaxBytesError in the
// handler's decoder, which answers with the same code.
func MaxRequestSize(maxBytes int64, logger *zap.Logger) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				logger.Debug("request_body_too_large",
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.Int64("content_length", r.ContentLength),
					zap.Int64("limit", maxBytes),
				)
				respondErrorCode(w, r, http.StatusRequestEntityTooLarge, "Request Entity Too Large",
					requestTooLargeMessage, CodeRequestTooLarge, logger)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
