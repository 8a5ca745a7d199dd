package scrape

import (
	"time"

	"jobtier-engine/internal/domain"
)

// DefaultRecencyWindow is how far back a posting may be and still be kept.
const DefaultRecencyWindow = 10 * 24 * time.Hour

// FilterRecent drops jobs whose known posting time is older than window.
// Jobs without a posting time are kept: missing data is not proof of staleness.
func FilterRecent(jobs []domain.Job, window time.Duration, now time.Time) (kept []domain.Job, dropped int) {
	cutoff := now.Add(-window)
	kept = make([]domain.Job, 0, len(jobs))
	for _, j := range jobs {
		if j.PostedAt != nil && j.PostedAt.Before(cutoff) {
			dropped++
			continue
		}
		kept = append(kept, j)
	}
	return kept, dropped
}
