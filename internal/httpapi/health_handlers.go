package httpapi

import (
	"net/http"

	"jobtier-engine/internal/store"
)

type HealthHandler struct {
	Gateway *store.Gateway
	Version string
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"ok":      true,
		"version": h.Version,
	}
	if h.Gateway != nil {
		resp["backend"] = h.Gateway.Backend().Name()
	}
	writeJSON(w, resp)
}
