package api

import (
	"encoding/json"
	"net/http"

	"github.com/maksimkurb/ikuai-bridge/src/internal/config"
	"github.com/maksimkurb/ikuai-bridge/src/internal/domain"
)

// Handler manages all API endpoints and dependencies.
type Handler struct {
	serviceMgr   ServiceManager
	configHasher *config.ConfigHasher
}

// NewHandler creates a new API handler.
func NewHandler(serviceMgr ServiceManager, configHasher *config.ConfigHasher) *Handler {
	return &Handler{
		serviceMgr:   serviceMgr,
		configHasher: configHasher,
	}
}

// dependencies returns the running service's dependencies or writes 503.
func (h *Handler) dependencies(w http.ResponseWriter) (*domain.AppDependencies, bool) {
	deps := h.serviceMgr.Dependencies()
	if deps == nil || deps.Coordinator() == nil {
		WriteUnavailable(w, "Service is not running")
		return nil, false
	}
	return deps, true
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(DataResponse{Data: data})
}

// writeJSONData writes a successful JSON response with data.
func writeJSONData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, data)
}

// decodeJSON decodes JSON from the request body.
func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
