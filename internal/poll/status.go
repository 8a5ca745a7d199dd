package poll

import (
	"sync/atomic"

	"jobtier-engine/internal/domain"
)

// Status is the externally visible state of the scrape loop.
type Status struct {
	LastRunAt   string                `json:"lastRunAt"`
	LastOkAt    string                `json:"lastOkAt"`
	LastError   string                `json:"lastError"`
	LastAdded   int                   `json:"lastAdded"`
	LastDropped int                   `json:"lastDropped"`
	Running     bool                  `json:"running"`
	LastSummary *domain.ScrapeSummary `json:"lastSummary,omitempty"`
}

type statusHolder struct {
	v atomic.Value
}

func (h *statusHolder) load() Status {
	if st, ok := h.v.Load().(Status); ok {
		return st
	}
	return Status{}
}

func (h *statusHolder) update(fn func(*Status)) Status {
	st := h.load()
	fn(&st)
	h.v.Store(st)
	return st
}
