package api

import (
	"net/http"

	"github.com/maksimkurb/ikuai-bridge/src/internal/domain"
	"github.com/maksimkurb/ikuai-bridge/src/internal/presence"
)

// GetSnapshot returns the last successful snapshot.
// GET /api/v1/snapshot
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	deps, ok := h.dependencies(w)
	if !ok {
		return
	}
	c := deps.Coordinator()

	snap := c.Last()
	if snap == nil {
		WriteUnavailable(w, "No data received from the router yet")
		return
	}
	writeJSONData(w, SnapshotResponse{Available: c.Available(), Snapshot: snap})
}

// Refresh runs a polling cycle right away and returns its snapshot.
// POST /api/v1/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	deps, ok := h.dependencies(w)
	if !ok {
		return
	}

	snap, err := deps.Coordinator().Refresh(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeJSONData(w, SnapshotResponse{Available: true, Snapshot: snap})
}

// GetPresence returns every tracked device. Before the first successful cycle
// all devices are reported absent.
// GET /api/v1/presence
func (h *Handler) GetPresence(w http.ResponseWriter, r *http.Request) {
	deps, ok := h.dependencies(w)
	if !ok {
		return
	}

	snap := deps.Coordinator().Last()
	if snap == nil {
		writeJSONData(w, PresenceResponse{Targets: presence.Summarize(domain.Targets(deps.Config()), nil)})
		return
	}
	writeJSONData(w, PresenceResponse{Timestamp: snap.Timestamp, Targets: snap.Targets})
}

// GetSwitches returns every configured switch with its last known state.
// GET /api/v1/switches
func (h *Handler) GetSwitches(w http.ResponseWriter, r *http.Request) {
	deps, ok := h.dependencies(w)
	if !ok {
		return
	}

	snap := deps.Coordinator().Last()
	specs := domain.Switches(deps.Config())
	out := make([]SwitchInfo, 0, len(specs))
	for _, spec := range specs {
		info := SwitchInfo{Name: spec.Name, Label: spec.Label}
		if snap != nil {
			if st, found := snap.Switch(spec.Name); found {
				on := st.On
				info.On = &on
			}
		}
		out = append(out, info)
	}
	writeJSONData(w, SwitchesResponse{Switches: out})
}
