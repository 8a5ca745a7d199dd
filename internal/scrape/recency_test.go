package scrape

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"jobtier-engine/internal/domain"
)

func ptr(t time.Time) *time.Time { return &t }

func TestFilterRecent(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	jobs := []domain.Job{
		{ID: "fresh", PostedAt: ptr(now.Add(-24 * time.Hour))},
		{ID: "edge", PostedAt: ptr(now.Add(-DefaultRecencyWindow))},
		{ID: "stale", PostedAt: ptr(now.Add(-11 * 24 * time.Hour))},
		{ID: "unknown"},
	}

	kept, dropped := FilterRecent(jobs, DefaultRecencyWindow, now)
	assert.Equal(t, 1, dropped)
	ids := make([]string, 0, len(kept))
	for _, j := range kept {
		ids = append(ids, j.ID)
	}
	assert.Equal(t, []string{"fresh", "edge", "unknown"}, ids)
}

func TestFilterRecentNeverDropsUnknownDates(t *testing.T) {
	now := time.Now()
	jobs := []domain.Job{{ID: "a"}, {ID: "b"}}
	for _, w := range []time.Duration{0, time.Nanosecond, time.Hour, 365 * 24 * time.Hour} {
		kept, dropped := FilterRecent(jobs, w, now)
		assert.Len(t, kept, 2)
		assert.Zero(t, dropped)
	}
}
