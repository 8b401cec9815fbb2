package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nexusquery/auth-gateway/internal/middleware"
)

// errorResponse is the JSON body of every handler error.
type errorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	Timestamp string `json:"timestamp"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage removes internal details from error messages
func sanitizeErrorMessage(message string) string {
	if len(message) > 200 {
		return message[:200] + "..."
	}
	return message
}

// respondJSONError sends an error JSON response with sanitized error messages
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	respondJSONErrorCode(w, status, errorType, message, "")
}

func respondJSONErrorCode(w http.ResponseWriter, status int, errorType, message, code string) {
	respondJSON(w, status, errorResponse{
		Success:   false,
		Error:     errorType,
		Message:   sanitizeErrorMessage(message),
		Code:      code,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

var errEmptyBody = errors.New("request body is empty")

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON body: trailing data")
	}
	return nil
}

// respondDecodeError maps a decodeJSON failure onto a 400 or 413.
func respondDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondJSONErrorCode(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", "Request body is too large.", middleware.CodeRequestTooLarge)
		return
	}
	respondJSONErrorCode(w, http.StatusBadRequest, "Bad Request", "Request body must be a JSON object.", "invalid_body")
}
