package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeEvent(t *testing.T) {
	raw := MakeEvent("req-1", JobsUpdated, CurrentVersion, map[string]int{"totalJobs": 3})
	var e Event
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	assert.Equal(t, JobsUpdated, e.Type)
	assert.Equal(t, 1, e.Version)
	assert.Equal(t, "req-1", e.RequestID)
	assert.JSONEq(t, `{"totalJobs":3}`, string(e.Data))
	assert.False(t, e.At.IsZero())

	raw = MakeEvent("", DataCleared, CurrentVersion, nil)
	assert.NotContains(t, raw, "data\":")
}

func TestHubFanOutAndDrop(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()
	assert.Equal(t, 2, h.Clients())

	h.Emit("", ScrapeStarted, nil)
	assert.Contains(t, <-a, ScrapeStarted)
	assert.Contains(t, <-b, ScrapeStarted)

	for i := 0; i < clientBuffer+3; i++ {
		h.Publish("x")
	}
	assert.Equal(t, 6, h.Dropped())

	h.Unsubscribe(a)
	h.Unsubscribe(a)
	assert.Equal(t, 1, h.Clients())
	n := 0
	for range a {
		n++
	}
	assert.Equal(t, clientBuffer, n)
}

func TestNilHubIsSafe(t *testing.T) {
	var h *Hub
	h.Publish("x")
	h.Emit("", JobsUpdated, nil)
}
