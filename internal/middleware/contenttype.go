package middleware

import (
	"net/http"

	"github.com/elnormous/contenttype"
	"go.uber.org/zap"
)

var jsonMediaType = contenttype.NewMediaType("application/json")

// ContentType requires application/json on requests that carry a body.
// Violations get the JSON error envelope with a code.
func ContentType(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPatch && r.Method != http.MethodPut {
				next.ServeHTTP(w, r)
				return
			}
			// Bodyless POSTs such as logout need no media type
			if r.ContentLength == 0 && r.Header.Get("Content-Type") == "" {
				next.ServeHTTP(w, r)
				return
			}

			if r.Header.Get("Content-Type") == "" {
				respondErrorCode(w, r, http.StatusBadRequest, "Bad Request",
					"Content-Type header is required.", CodeMissingContentType, logger)
				return
			}
			ctype, err := contenttype.GetMediaType(r)
			if err != nil || !ctype.Matches(jsonMediaType) {
				respondErrorCode(w, r, http.StatusUnsupportedMediaType, "Unsupported Media Type",
					unsupportedMediaTypeError, CodeUnsupportedMediaType, logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
