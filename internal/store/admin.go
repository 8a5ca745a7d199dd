package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"jobtier-engine/internal/domain"
)

type Stats struct {
	Backend        string               `json:"backend"`
	HasJobs        bool                 `json:"hasJobs"`
	HasTiers       map[domain.Tier]bool `json:"hasTiers"`
	TierCounts     map[domain.Tier]int  `json:"tierCounts"`
	JobsCount      int                  `json:"jobsCount"`
	TotalCompanies int                  `json:"totalCompanies"`
}

func (g *Gateway) Stats(ctx context.Context) (Stats, error) {
	st := Stats{
		Backend:    g.backend.Name(),
		HasTiers:   map[domain.Tier]bool{},
		TierCounts: map[domain.Tier]int{},
	}
	jd, err := g.GetJobs(ctx)
	if err != nil {
		return st, err
	}
	if jd != nil {
		st.HasJobs = true
		st.JobsCount = jd.TotalJobs
	}
	for _, t := range domain.ScrapedTiers {
		td, err := g.GetTier(ctx, t)
		if err != nil {
			return st, err
		}
		st.HasTiers[t] = td != nil
		if td != nil {
			st.TierCounts[t] = td.Count
			st.TotalCompanies += td.Count
		} else {
			st.TierCounts[t] = 0
		}
	}
	return st, nil
}

// SeedResult lists what Seed wrote and what failed.
type SeedResult struct {
	Seeded []string `json:"seeded"`
	Errors []string `json:"errors"`
}

func (r SeedResult) Success() bool { return len(r.Errors) == 0 }

const seedJobsFile = "jobs.json"

// Seed loads <tier>-tier.json and jobs.json from dir. Missing files are
// skipped; unreadable ones are reported in Errors.
func (g *Gateway) Seed(ctx context.Context, dir string) (SeedResult, error) {
	res := SeedResult{Seeded: []string{}, Errors: []string{}}
	if _, err := os.Stat(dir); err != nil {
		return res, fmt.Errorf("seed dir: %w", err)
	}

	for _, t := range domain.ScrapedTiers {
		var td domain.TierData
		name := string(t) + "-tier.json"
		ok, err := readJSONFile(filepath.Join(dir, name), &td)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Failed to seed %s-tier: %v", t, err))
			continue
		}
		if !ok {
			continue
		}
		td.Tier = t
		if td.Count == 0 {
			td.Count = len(td.Companies)
		}
		if err := g.SetTier(ctx, td); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Failed to seed %s-tier: %v", t, err))
			continue
		}
		res.Seeded = append(res.Seeded, TierKey(t))
	}

	var jd domain.JobsData
	ok, err := readJSONFile(filepath.Join(dir, seedJobsFile), &jd)
	switch {
	case err != nil:
		res.Errors = append(res.Errors, fmt.Sprintf("Failed to seed jobs: %v", err))
	case ok:
		if err := g.SetJobs(ctx, jd); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Failed to seed jobs: %v", err))
		} else {
			res.Seeded = append(res.Seeded, KeyJobs)
		}
	}
	return res, nil
}

func readJSONFile(path string, v any) (bool, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, err
	}
	return true, nil
}

// Clear deletes the job batch, its summary and every tier document.
func (g *Gateway) Clear(ctx context.Context) error {
	keys := []string{KeyJobs, KeySummary}
	for _, t := range domain.ScrapedTiers {
		keys = append(keys, TierKey(t))
	}
	for _, k := range keys {
		if _, err := g.backend.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

type CleanupResult struct {
	Deleted []string `json:"deleted"`
	Errors  []string `json:"errors"`
}

// CleanupUnusedKeys removes legacy per-company link keys and the obsolete
// combined companies key.
func (g *Gateway) CleanupUnusedKeys(ctx context.Context) (CleanupResult, error) {
	res := CleanupResult{Deleted: []string{}, Errors: []string{}}
	keys, err := g.backend.Keys(ctx, legacyLinksPrefix)
	if err != nil {
		return res, err
	}
	for _, k := range append(keys, legacyCompaniesKey) {
		if _, err := g.backend.Delete(ctx, k); err != nil {
			res.Errors = append(res.Errors, "Failed to delete "+k)
			continue
		}
		res.Deleted = append(res.Deleted, k)
	}
	return res, nil
}
