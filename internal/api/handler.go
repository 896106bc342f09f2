// Package api provides HTTP handlers for the recruitment platform API.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/hirelane/hirelane/internal/store"
)

// defaultMaxRequestBodySize is the maximum allowed request body size (1MB).
const defaultMaxRequestBodySize = 1 << 20

// Handler provides common handler utilities.
type Handler struct {
	repo store.Repository
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(repo store.Repository) *Handler {
	return &Handler{repo: repo}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// decodeBody decodes a JSON request body with a size cap. Returns false
// after writing the error response itself.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, defaultMaxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
