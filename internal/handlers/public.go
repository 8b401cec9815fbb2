package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// ClientConfig is the public Firebase web client configuration. These
// values ship in every client bundle and are not secrets.
type ClientConfig struct {
	APIKey     string `json:"apiKey"`
	AuthDomain string `json:"authDomain"`
	ProjectID  string `json:"projectId"`
}

// PublicHandler serves the unauthenticated informational routes.
type PublicHandler struct {
	client ClientConfig
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(client ClientConfig) *PublicHandler {
	return &PublicHandler{client: client}
}

// RegisterRoutes registers / and /config.
func (h *PublicHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.Index).Methods(http.MethodGet)
	r.HandleFunc("/config", h.Config).Methods(http.MethodGet)
}

// IndexResponse lists the available routes.
type IndexResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

// Index describes the API.
func (h *PublicHandler) Index(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, IndexResponse{
		Message: "Welcome to NexusQuery Secure Auth API",
		Endpoints: map[string]string{
			"signup":            "POST /auth/signup (Creates user and sends verification email)",
			"send_verification": "POST /auth/send-verification-email (Resends email link)",
			"status_check":      "GET /auth/status (Requires Auth Header)",
			"logout":            "POST /auth/logout (Requires Auth Header)",
			"docs":              "/api/openapi.yaml",
		},
	})
}

// Config returns the Firebase client configuration.
func (h *PublicHandler) Config(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.client)
}
