package httpapi

import (
	"net/http"
	"net/url"
	"strconv"

	"jobtier-engine/internal/events"
	"jobtier-engine/internal/store"
)

type JobsHandler struct {
	Gateway *store.Gateway
	Hub     *events.Hub
}

// List serves GET /jobs?company=&location=&limit=
func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			WriteError(w, r, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	page, err := h.Gateway.QueryJobs(r.Context(), store.JobQuery{
		Company:  q.Get("company"),
		Location: q.Get("location"),
		Limit:    limit,
	})
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if page == nil {
		writeNoData(w, r, "jobs")
		return
	}
	writeJSON(w, page)
}

// DeleteByPath expects /jobs/{id}.
func (h JobsHandler) DeleteByPath(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/jobs/")
	if len(parts) != 1 {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	id, err := url.PathUnescape(parts[0])
	if err != nil || id == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	ok, err := h.Gateway.DeleteJob(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if !ok {
		WriteError(w, r, http.StatusNotFound, "not_found", "job not found")
		return
	}

	h.Hub.Emit(RequestIDFrom(r.Context()), events.JobDeleted, map[string]any{"id": id})
	writeJSON(w, map[string]any{"ok": true, "id": id})
}

// Summary serves the summary stored with the latest batch.
func (h JobsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Gateway.LastSummary(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if sum == nil {
		writeNoData(w, r, "scrape summary")
		return
	}
	writeJSON(w, sum)
}
