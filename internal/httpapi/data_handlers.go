package httpapi

import (
	"errors"
	"io"
	"net/http"

	"jobtier-engine/internal/events"
	"jobtier-engine/internal/store"
)

type DataHandler struct {
	Gateway *store.Gateway
	Hub     *events.Hub
	SeedDir string
}

func (h DataHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Gateway.Stats(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, st)
}

type seedReq struct {
	Dir string `json:"dir"`
}

// Seed loads tier and job files. The body is optional.
func (h DataHandler) Seed(w http.ResponseWriter, r *http.Request) {
	var req seedReq
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	dir := req.Dir
	if dir == "" {
		dir = h.SeedDir
	}
	if dir == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_dir", "no seed directory configured")
		return
	}

	res, err := h.Gateway.Seed(r.Context(), dir)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "seed_failed", err.Error())
		return
	}
	if len(res.Seeded) > 0 {
		h.Hub.Emit(RequestIDFrom(r.Context()), events.TiersUpdated, map[string]any{"seeded": res.Seeded})
	}
	writeJSON(w, map[string]any{"success": res.Success(), "seeded": res.Seeded, "errors": res.Errors})
}

func (h DataHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.Gateway.Clear(r.Context()); err != nil {
		writeStoreError(w, r, err)
		return
	}
	h.Hub.Emit(RequestIDFrom(r.Context()), events.DataCleared, nil)
	writeJSON(w, map[string]any{"success": true})
}

func (h DataHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	res, err := h.Gateway.CleanupUnusedKeys(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"success": len(res.Errors) == 0, "deleted": res.Deleted, "errors": res.Errors})
}
