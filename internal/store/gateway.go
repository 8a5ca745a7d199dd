package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobtier-engine/internal/domain"
)

// Logical keys.
const (
	KeyJobs       = "data:jobs"
	KeySummary    = "data:scrape-summary"
	KeyTierPrefix = "data:tier:"

	legacyLinksPrefix  = "company-links:"
	legacyCompaniesKey = "data:companies"
)

func TierKey(t domain.Tier) string { return KeyTierPrefix + string(t) }

// Gateway is the typed view over a Backend. Field-level edits (career URLs)
// are read-modify-write and can lose updates under concurrent editors.
type Gateway struct {
	backend Backend
	now     func() time.Time
}

func NewGateway(b Backend) *Gateway {
	return &Gateway{backend: b, now: time.Now}
}

func (g *Gateway) Backend() Backend { return g.backend }

func (g *Gateway) Close() error { return g.backend.Close() }

// getJSON decodes key into v; found is false when the key is absent.
func (g *Gateway) getJSON(ctx context.Context, key string, v any) (bool, error) {
	b, err := g.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (g *Gateway) setJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return g.backend.Set(ctx, key, b)
}

// ---- jobs ----

// GetJobs returns nil, nil when no batch has been stored.
func (g *Gateway) GetJobs(ctx context.Context) (*domain.JobsData, error) {
	var jd domain.JobsData
	ok, err := g.getJSON(ctx, KeyJobs, &jd)
	if err != nil || !ok {
		return nil, err
	}
	return &jd, nil
}

func (g *Gateway) SetJobs(ctx context.Context, jd domain.JobsData) error {
	return g.setJSON(ctx, KeyJobs, jd)
}

// ReplaceJobs stores jobs as the new batch.
func (g *Gateway) ReplaceJobs(ctx context.Context, jobs []domain.Job) (domain.JobsData, error) {
	jd := domain.NewJobsData(jobs, g.now())
	return jd, g.SetJobs(ctx, jd)
}

// MergeJobs unions jobs into the stored batch by id and restamps it.
func (g *Gateway) MergeJobs(ctx context.Context, jobs []domain.Job) (domain.JobsData, error) {
	prev, err := g.GetJobs(ctx)
	if err != nil {
		return domain.JobsData{}, err
	}
	jd := domain.MergeJobs(prev, jobs, g.now())
	return jd, g.SetJobs(ctx, jd)
}

// DeleteJob removes one job from the batch. It reports false when there is
// no batch or no job with that id.
func (g *Gateway) DeleteJob(ctx context.Context, id string) (bool, error) {
	jd, err := g.GetJobs(ctx)
	if err != nil || jd == nil {
		return false, err
	}
	kept := make([]domain.Job, 0, len(jd.Jobs))
	for _, j := range jd.Jobs {
		if j.ID != id {
			kept = append(kept, j)
		}
	}
	if len(kept) == len(jd.Jobs) {
		return false, nil
	}
	jd.Jobs = kept
	jd.TotalJobs = len(kept)
	return true, g.SetJobs(ctx, *jd)
}

// LastSummary returns the summary stored with the latest batch, or nil.
func (g *Gateway) LastSummary(ctx context.Context) (*domain.ScrapeSummary, error) {
	var sum domain.ScrapeSummary
	ok, err := g.getJSON(ctx, KeySummary, &sum)
	if err != nil || !ok {
		return nil, err
	}
	return &sum, nil
}

func (g *Gateway) SetLastSummary(ctx context.Context, sum domain.ScrapeSummary) error {
	return g.setJSON(ctx, KeySummary, sum)
}

const DefaultJobLimit = 100

type JobQuery struct {
	Company  string
	Location string
	Limit    int
}

// JobPage is a filtered slice of the stored batch. Total counts matches
// before the limit is applied.
type JobPage struct {
	Jobs        []domain.Job `json:"jobs"`
	Total       int          `json:"total"`
	LastScraped *time.Time   `json:"lastScraped"`
}

// QueryJobs filters by case-insensitive company and location substrings.
// It returns nil, nil when no batch exists.
func (g *Gateway) QueryJobs(ctx context.Context, q JobQuery) (*JobPage, error) {
	jd, err := g.GetJobs(ctx)
	if err != nil || jd == nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultJobLimit
	}
	company := strings.ToLower(strings.TrimSpace(q.Company))
	location := strings.ToLower(strings.TrimSpace(q.Location))

	page := &JobPage{Jobs: []domain.Job{}, LastScraped: jd.LastScraped}
	for _, j := range jd.Jobs {
		if company != "" && !strings.Contains(strings.ToLower(j.CompanyName), company) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(j.Location), location) {
			continue
		}
		page.Total++
		if len(page.Jobs) < limit {
			page.Jobs = append(page.Jobs, j)
		}
	}
	return page, nil
}
