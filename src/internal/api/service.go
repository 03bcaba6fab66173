package api

import (
	"net/http"
)

// ControlService starts, stops or restarts the polling service. A restart
// reloads the configuration file.
// POST /api/v1/service
func (h *Handler) ControlService(w http.ResponseWriter, r *http.Request) {
	var req ServiceControlRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteInvalidRequest(w, "Invalid JSON: "+err.Error())
		return
	}

	var (
		err    error
		action string
	)
	switch req.State {
	case "started":
		action = "start"
		err = h.serviceMgr.Start()
	case "stopped":
		action = "stop"
		err = h.serviceMgr.Stop()
	case "restarted":
		action = "restart"
		err = h.serviceMgr.Restart()
	default:
		WriteInvalidRequest(w, "state must be one of: started, stopped, restarted")
		return
	}

	if err != nil {
		WriteServiceError(w, "Failed to "+action+" service: "+err.Error())
		return
	}

	writeJSONData(w, ServiceControlResponse{
		Status:  h.pollerServiceStatus().Status,
		Message: "Service " + action + " command executed successfully",
	})
}
