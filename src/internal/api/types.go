package api

import (
	"time"

	"github.com/maksimkurb/ikuai-bridge/src/internal/actions"
	"github.com/maksimkurb/ikuai-bridge/src/internal/ikuai"
	"github.com/maksimkurb/ikuai-bridge/src/internal/poller"
	"github.com/maksimkurb/ikuai-bridge/src/internal/presence"
)

// DataResponse wraps successful responses with a "data" field.
type DataResponse struct {
	Data interface{} `json:"data"`
}

// SnapshotResponse returns the last snapshot.
type SnapshotResponse struct {
	Available bool             `json:"available"`
	Snapshot  *poller.Snapshot `json:"snapshot"`
}

// PresenceResponse returns every tracked device.
type PresenceResponse struct {
	Timestamp time.Time         `json:"timestamp"`
	Targets   []presence.Status `json:"targets"`
}

// SwitchInfo is a switch with its current state, if known.
type SwitchInfo struct {
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
	// On is nil when the router reported neither the on nor the off state.
	On *bool `json:"on"`
}

// SwitchesResponse returns all configured switches.
type SwitchesResponse struct {
	Switches []SwitchInfo `json:"switches"`
}

// ActionsResponse returns every action currently available.
type ActionsResponse struct {
	Actions []actions.Action `json:"actions"`
}

// ActionResponse returns the router's answer to an action.
type ActionResponse struct {
	Result actions.Result `json:"result"`
}

// ControlRequest is a raw router call.
type ControlRequest = ikuai.Request

// StatusResponse returns service status information.
type StatusResponse struct {
	Version               VersionInfo            `json:"version"`
	Router                string                 `json:"router"`
	Services              map[string]ServiceInfo `json:"services"`
	Polling               *poller.Stats          `json:"polling,omitempty"`
	Session               *ikuai.SessionState    `json:"session,omitempty"`
	Transport             *ikuai.TransportStats  `json:"transport,omitempty"`
	CurrentConfigHash     string                 `json:"current_config_hash"`
	AppliedConfigHash     string                 `json:"applied_config_hash"`
	ConfigurationOutdated bool                   `json:"configuration_outdated"`
}

// VersionInfo contains build version information.
type VersionInfo struct {
	Version string `json:"version"`
	Date    string `json:"date"`
	Commit  string `json:"commit"`
}

// ServiceInfo contains information about a service.
type ServiceInfo struct {
	Status  string `json:"status"` // "running", "stopped", "unknown"
	Message string `json:"message,omitempty"`
}

// ServiceControlRequest controls the polling service.
type ServiceControlRequest struct {
	State string `json:"state"` // "started", "stopped", "restarted"
}

// ServiceControlResponse returns the result of service control operation.
type ServiceControlResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthCheckResponse returns health check results.
type HealthCheckResponse struct {
	Healthy bool                   `json:"healthy"`
	Checks  map[string]CheckResult `json:"checks"`
}

// CheckResult contains the result of a single health check.
type CheckResult struct {
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}
