package events

import (
	"encoding/json"
	"time"
)

// Event types pushed to SSE clients.
const (
	ScrapeStarted  = "scrape.started"
	ScrapeFinished = "scrape.finished"
	JobsUpdated    = "jobs.updated"
	JobDeleted     = "jobs.deleted"
	TiersUpdated   = "tiers.updated"
	CompanyUpdated = "company.updated"
	ConfigReloaded = "config.reloaded"
	DataCleared    = "data.cleared"

	CurrentVersion = 1
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(reqID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
