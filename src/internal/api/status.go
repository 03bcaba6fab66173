package api

import (
	"net/http"

	"github.com/maksimkurb/ikuai-bridge/src/internal/log"
)

var (
	// Version information set via ldflags at build time
	Version = "dev"
	Date    = "n/a"
	Commit  = "n/a"
)

// GetStatus returns service status information.
// GET /api/v1/status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	response := StatusResponse{
		Version: VersionInfo{
			Version: Version,
			Date:    Date,
			Commit:  Commit,
		},
		Services: make(map[string]ServiceInfo),
	}

	if deps := h.serviceMgr.Dependencies(); deps != nil {
		response.Router = deps.RouterName()
		if c := deps.Coordinator(); c != nil {
			stats := c.Stats()
			session := c.Session()
			response.Polling = &stats
			response.Session = &session
		}
		if deps.Transport() != nil {
			ts := deps.TransportStats()
			response.Transport = &ts
		}
	}

	if h.configHasher != nil {
		currentHash, err := h.configHasher.GetCurrentConfigHash()
		if err != nil {
			log.Warnf("Failed to get current config hash: %v", err)
			currentHash = "error"
		}
		response.CurrentConfigHash = currentHash
	}

	appliedHash := h.serviceMgr.GetAppliedConfigHash()
	response.AppliedConfigHash = appliedHash

	response.ConfigurationOutdated = response.CurrentConfigHash != "" &&
		appliedHash != "" &&
		response.CurrentConfigHash != appliedHash &&
		response.CurrentConfigHash != "error"

	response.Services["poller"] = h.pollerServiceStatus()

	writeJSONData(w, response)
}

func (h *Handler) pollerServiceStatus() ServiceInfo {
	if h.serviceMgr.IsRunning() {
		return ServiceInfo{
			Status:  "running",
			Message: "Service is running",
		}
	}

	return ServiceInfo{
		Status:  "stopped",
		Message: "Service is not running",
	}
}
