package httpapi

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"jobtier-engine/internal/poll"
)

type ScrapeHandler struct {
	Runner *poll.Runner
	Log    *zap.Logger
	// BaseCtx bounds background runs; cancelled on shutdown.
	BaseCtx context.Context
}

func (h ScrapeHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Runner.Status())
}

// Run starts a pass in the background. With ?wait=true it runs inline and
// returns the report.
func (h ScrapeHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !h.Runner.TryStart() {
		WriteError(w, r, http.StatusConflict, "already_running", "a scrape is already running")
		return
	}
	reqID := RequestIDFrom(r.Context())

	if r.URL.Query().Get("wait") == "true" {
		rep, err := h.Runner.RunStarted(r.Context(), reqID)
		if err != nil {
			WriteError(w, r, http.StatusInternalServerError, "scrape_failed", err.Error())
			return
		}
		writeJSON(w, rep)
		return
	}

	base := h.BaseCtx
	if base == nil {
		base = context.Background()
	}
	go func() {
		if _, err := h.Runner.RunStarted(base, reqID); err != nil && h.Log != nil {
			h.Log.Warn("background scrape", zap.String("request_id", reqID), zap.Error(err))
		}
	}()
	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}
