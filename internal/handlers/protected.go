package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/nexusquery/auth-gateway/internal/auth"
	"github.com/nexusquery/auth-gateway/internal/request"
)

// ProtectedHandler serves the generic resources any authenticated user may read.
type ProtectedHandler struct{}

// NewProtectedHandler creates a new protected resource handler
func NewProtectedHandler() *ProtectedHandler {
	return &ProtectedHandler{}
}

// RegisterRoutes registers the routes under the /api prefix.
func (h *ProtectedHandler) RegisterRoutes(r *mux.Router, guard Guard) {
	required := guard(auth.RequireAuthentication)
	r.Handle("/status", required(http.HandlerFunc(h.Status))).Methods(http.MethodGet)
	r.Handle("/query", required(http.HandlerFunc(h.Query))).Methods(http.MethodGet)
}

// ProtectedStatusResponse is returned by GET /api/status.
type ProtectedStatusResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	UserID      string `json:"user_id"`
	AccessLevel string `json:"access_level"`
}

// QueryResponse is returned by GET /api/query.
type QueryResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	Results string `json:"results"`
}

// Status confirms the caller is authenticated.
func (h *ProtectedHandler) Status(w http.ResponseWriter, r *http.Request) {
	claims := request.ClaimsFromContext(r)
	if claims == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required.")
		return
	}
	respondJSON(w, http.StatusOK, ProtectedStatusResponse{
		Status:      "success",
		Message:     "User is authenticated and token is valid.",
		UserID:      claims.SubjectID,
		AccessLevel: "Standard User",
	})
}

// Query runs a query scoped to the caller.
func (h *ProtectedHandler) Query(w http.ResponseWriter, r *http.Request) {
	claims := request.ClaimsFromContext(r)
	if claims == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required.")
		return
	}
	respondJSON(w, http.StatusOK, QueryResponse{
		Status:  "success",
		Message: "Query executed successfully.",
		UserID:  claims.SubjectID,
		Results: "Simulated query results based on your user identity.",
	})
}
