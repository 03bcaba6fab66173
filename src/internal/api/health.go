package api

import (
	"net/http"
)

// CheckHealth reports whether the service runs and the router answers.
// GET /api/v1/health
//
// The response is 200 when every check passes and 503 otherwise.
func (h *Handler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthCheckResponse{
		Healthy: true,
		Checks:  make(map[string]CheckResult),
	}

	fail := func(name, message string) {
		response.Healthy = false
		response.Checks[name] = CheckResult{Passed: false, Message: message}
	}
	pass := func(name, message string) {
		response.Checks[name] = CheckResult{Passed: true, Message: message}
	}

	deps := h.serviceMgr.Dependencies()
	if !h.serviceMgr.IsRunning() || deps == nil || deps.Coordinator() == nil {
		fail("service", "Service is not running")
		writeJSON(w, http.StatusServiceUnavailable, response)
		return
	}
	pass("service", "Service is running")

	c := deps.Coordinator()
	if c.Session().Rejected {
		fail("credentials", "Router rejected the configured credentials")
	} else {
		pass("credentials", "Credentials accepted")
	}

	switch {
	case c.Available():
		pass("router", "Last polling cycle succeeded")
	case c.Last() == nil:
		fail("router", "No polling cycle has succeeded yet")
	default:
		msg := "Last polling cycle failed"
		if last := c.Stats().LastError; last != "" {
			msg += ": " + last
		}
		fail("router", msg)
	}

	status := http.StatusOK
	if !response.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}
