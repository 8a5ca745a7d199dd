package httpapi

import (
	"net/http"
	"net/url"
	"slices"

	"jobtier-engine/internal/domain"
	"jobtier-engine/internal/events"
	"jobtier-engine/internal/store"
)

type TiersHandler struct {
	Gateway *store.Gateway
	Hub     *events.Hub
}

// All serves GET /tiers; absent tiers are null.
func (h TiersHandler) All(w http.ResponseWriter, r *http.Request) {
	all, err := h.Gateway.AllTiers(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, all)
}

// Get serves GET /tiers/{tier}.
func (h TiersHandler) Get(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/tiers/")
	if len(parts) != 1 {
		WriteError(w, r, http.StatusNotFound, "not_found", "unknown tier")
		return
	}
	t, err := domain.ParseTier(parts[0])
	if err != nil || !slices.Contains(domain.ScrapedTiers, t) {
		WriteError(w, r, http.StatusBadRequest, "invalid_tier", "tier must be one of top, middle, lower, lowest")
		return
	}
	td, err := h.Gateway.GetTier(r.Context(), t)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if td == nil {
		writeNoData(w, r, string(t)+"-tier")
		return
	}
	writeJSON(w, td)
}

type CompaniesHandler struct {
	Gateway *store.Gateway
	Hub     *events.Hub
}

// List serves the combined, deduplicated company view.
func (h CompaniesHandler) List(w http.ResponseWriter, r *http.Request) {
	view, err := h.Gateway.Companies(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, view)
}

type urlBody struct {
	URL string `json:"url"`
}

type urlsBody struct {
	URLs []string `json:"urls"`
}

// ByPath routes /companies/{id} and /companies/{id}/career-urls.
func (h CompaniesHandler) ByPath(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/companies/")
	if len(parts) == 0 || len(parts) > 2 {
		WriteError(w, r, http.StatusNotFound, "not_found", "not found")
		return
	}
	id, err := url.PathUnescape(parts[0])
	if err != nil || id == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid company id")
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		h.get(w, r, id)
		return
	}
	if parts[1] != "career-urls" {
		WriteError(w, r, http.StatusNotFound, "not_found", "not found")
		return
	}
	methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    func(w http.ResponseWriter, r *http.Request) { h.listURLs(w, r, id) },
		http.MethodPost:   func(w http.ResponseWriter, r *http.Request) { h.addURL(w, r, id) },
		http.MethodDelete: func(w http.ResponseWriter, r *http.Request) { h.removeURL(w, r, id) },
		http.MethodPut:    func(w http.ResponseWriter, r *http.Request) { h.setURLs(w, r, id) },
	})(w, r)
}

func (h CompaniesHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	c, tier, err := h.Gateway.FindCompany(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if c == nil {
		WriteError(w, r, http.StatusNotFound, "not_found", "company not found")
		return
	}
	writeJSON(w, map[string]any{"company": c, "tier": tier})
}

func (h CompaniesHandler) listURLs(w http.ResponseWriter, r *http.Request, id string) {
	urls, ok, err := h.Gateway.CareerURLs(r.Context(), id)
	h.writeURLs(w, r, id, urls, ok, err, false)
}

func (h CompaniesHandler) addURL(w http.ResponseWriter, r *http.Request, id string) {
	var body urlBody
	if err := decodeBody(r, &body); err != nil || body.URL == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_body", `expected {"url": "..."}`)
		return
	}
	urls, ok, err := h.Gateway.AddCareerURL(r.Context(), id, body.URL)
	h.writeURLs(w, r, id, urls, ok, err, true)
}

// removeURL takes the url from ?url= or a JSON body.
func (h CompaniesHandler) removeURL(w http.ResponseWriter, r *http.Request, id string) {
	target := r.URL.Query().Get("url")
	if target == "" {
		var body urlBody
		if err := decodeBody(r, &body); err != nil || body.URL == "" {
			WriteError(w, r, http.StatusBadRequest, "invalid_body", "url is required")
			return
		}
		target = body.URL
	}
	urls, ok, err := h.Gateway.RemoveCareerURL(r.Context(), id, target)
	h.writeURLs(w, r, id, urls, ok, err, true)
}

func (h CompaniesHandler) setURLs(w http.ResponseWriter, r *http.Request, id string) {
	var body urlsBody
	if err := decodeBody(r, &body); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_body", `expected {"urls": [...]}`)
		return
	}
	urls, ok, err := h.Gateway.SetCareerURLs(r.Context(), id, body.URLs)
	h.writeURLs(w, r, id, urls, ok, err, true)
}

func (h CompaniesHandler) writeURLs(w http.ResponseWriter, r *http.Request, id string, urls []string, ok bool, err error, changed bool) {
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if !ok {
		WriteJSON(w, http.StatusNotFound, map[string]any{"success": false, "urls": urls})
		return
	}
	if changed {
		h.Hub.Emit(RequestIDFrom(r.Context()), events.CompanyUpdated, map[string]any{"id": id, "careerUrls": urls})
	}
	writeJSON(w, map[string]any{"success": true, "urls": urls})
}
