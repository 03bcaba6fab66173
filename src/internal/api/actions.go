package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maksimkurb/ikuai-bridge/src/internal/actions"
	"github.com/maksimkurb/ikuai-bridge/src/internal/errors"
	"github.com/maksimkurb/ikuai-bridge/src/internal/ikuai"
)

// GetActions lists the actions available right now. MAC access-control
// actions come from the last snapshot.
// GET /api/v1/actions
func (h *Handler) GetActions(w http.ResponseWriter, r *http.Request) {
	deps, ok := h.dependencies(w)
	if !ok {
		return
	}

	var entries []ikuai.ACLEntry
	if snap := deps.Coordinator().Last(); snap != nil {
		entries = snap.MACControl
	}
	writeJSONData(w, ActionsResponse{Actions: deps.Catalog().List(entries)})
}

// RunAction runs a named action.
// POST /api/v1/actions/{name}
func (h *Handler) RunAction(w http.ResponseWriter, r *http.Request) {
	deps, ok := h.dependencies(w)
	if !ok {
		return
	}

	name := chi.URLParam(r, "name")
	if _, err := deps.Catalog().Lookup(name); err != nil {
		WriteNotFound(w, "Action "+name)
		return
	}

	result, err := deps.Catalog().Run(r.Context(), deps.Coordinator(), name)
	writeActionResult(w, result, err)
}

// Control sends a raw router call.
// POST /api/v1/control
func (h *Handler) Control(w http.ResponseWriter, r *http.Request) {
	deps, ok := h.dependencies(w)
	if !ok {
		return
	}

	var req ControlRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteInvalidRequest(w, "Invalid JSON: "+err.Error())
		return
	}
	if req.FuncName == "" || req.Action == "" {
		WriteInvalidRequest(w, "func_name and action are required")
		return
	}

	result, err := actions.Execute(r.Context(), deps.Coordinator(), req.FuncName+"/"+req.Action, req)
	writeActionResult(w, result, err)
}

// writeActionResult writes the result of an action. A refusal by the router
// is a 502 that still carries the router's answer.
func writeActionResult(w http.ResponseWriter, result actions.Result, err error) {
	if err == nil {
		writeJSONData(w, ActionResponse{Result: result})
		return
	}
	if errors.CodeOf(err) == errors.ErrCodeAction {
		apiErr := domainError(err).WithDetails(map[string]interface{}{
			"error_code": string(errors.ErrCodeAction),
			"result":     result,
		})
		WriteError(w, http.StatusBadGateway, apiErr)
		return
	}
	WriteDomainError(w, err)
}
