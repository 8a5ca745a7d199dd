package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"jobtier-engine/internal/domain"
	"jobtier-engine/internal/rank"
)

// GetTier returns nil, nil when the tier has not been stored.
func (g *Gateway) GetTier(ctx context.Context, t domain.Tier) (*domain.TierData, error) {
	var td domain.TierData
	ok, err := g.getJSON(ctx, TierKey(t), &td)
	if err != nil || !ok {
		return nil, err
	}
	return &td, nil
}

func (g *Gateway) SetTier(ctx context.Context, td domain.TierData) error {
	if !slices.Contains(domain.ScrapedTiers, td.Tier) {
		return fmt.Errorf("tier %q is not persisted", td.Tier)
	}
	return g.setJSON(ctx, TierKey(td.Tier), td)
}

// AllTiers loads the four persisted tiers; absent tiers map to nil.
func (g *Gateway) AllTiers(ctx context.Context) (map[domain.Tier]*domain.TierData, error) {
	out := make(map[domain.Tier]*domain.TierData, len(domain.ScrapedTiers))
	for _, t := range domain.ScrapedTiers {
		td, err := g.GetTier(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("load %s tier: %w", t, err)
		}
		out[t] = td
	}
	return out, nil
}

// FindCompany searches the tiers top to lowest.
func (g *Gateway) FindCompany(ctx context.Context, id string) (*domain.Company, domain.Tier, error) {
	for _, t := range domain.ScrapedTiers {
		td, err := g.GetTier(ctx, t)
		if err != nil {
			return nil, "", err
		}
		if td == nil {
			continue
		}
		for i := range td.Companies {
			if td.Companies[i].ID == id {
				c := td.Companies[i]
				return &c, t, nil
			}
		}
	}
	return nil, "", nil
}

// UpdateCompany applies fn to the first company with id and rewrites its
// tier document. It returns nil when the company does not exist.
func (g *Gateway) UpdateCompany(ctx context.Context, id string, fn func(*domain.Company)) (*domain.Company, error) {
	for _, t := range domain.ScrapedTiers {
		td, err := g.GetTier(ctx, t)
		if err != nil {
			return nil, err
		}
		if td == nil {
			continue
		}
		for i := range td.Companies {
			if td.Companies[i].ID != id {
				continue
			}
			fn(&td.Companies[i])
			if err := g.SetTier(ctx, *td); err != nil {
				return nil, err
			}
			c := td.Companies[i]
			return &c, nil
		}
	}
	return nil, nil
}

// Companies concatenates every tier, dedupes and recounts.
func (g *Gateway) Companies(ctx context.Context) (domain.CompaniesData, error) {
	tiers, err := g.AllTiers(ctx)
	if err != nil {
		return domain.CompaniesData{}, err
	}
	var all []domain.Company
	for _, t := range domain.ScrapedTiers {
		if td := tiers[t]; td != nil {
			all = append(all, td.Companies...)
		}
	}
	deduped := rank.Dedupe(all)

	counts := map[domain.Tier]int{}
	for _, t := range append(slices.Clone(domain.ScrapedTiers), domain.TierBelow50) {
		counts[t] = 0
	}
	for t, n := range rank.TierCounts(deduped) {
		counts[t] = n
	}
	return domain.CompaniesData{
		GeneratedAt:    g.now().UTC(),
		TotalCompanies: len(deduped),
		TierCounts:     counts,
		Companies:      deduped,
	}, nil
}

// ---- career URLs ----

// CareerURLs returns the company's list; ok is false for unknown ids.
func (g *Gateway) CareerURLs(ctx context.Context, id string) (urls []string, ok bool, err error) {
	c, _, err := g.FindCompany(ctx, id)
	if err != nil || c == nil {
		return []string{}, false, err
	}
	return nonNil(c.CareerURLs), true, nil
}

func (g *Gateway) AddCareerURL(ctx context.Context, id, u string) ([]string, bool, error) {
	u = strings.TrimSpace(u)
	c, _, err := g.FindCompany(ctx, id)
	if err != nil || c == nil {
		return []string{}, false, err
	}
	if u == "" || slices.Contains(c.CareerURLs, u) {
		return nonNil(c.CareerURLs), true, nil
	}
	return g.setURLs(ctx, id, append(slices.Clone(c.CareerURLs), u))
}

func (g *Gateway) RemoveCareerURL(ctx context.Context, id, u string) ([]string, bool, error) {
	u = strings.TrimSpace(u)
	c, _, err := g.FindCompany(ctx, id)
	if err != nil || c == nil {
		return []string{}, false, err
	}
	kept := slices.DeleteFunc(slices.Clone(c.CareerURLs), func(s string) bool { return s == u })
	return g.setURLs(ctx, id, kept)
}

// SetCareerURLs replaces the list, dropping blank entries.
func (g *Gateway) SetCareerURLs(ctx context.Context, id string, urls []string) ([]string, bool, error) {
	clean := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			clean = append(clean, u)
		}
	}
	return g.setURLs(ctx, id, clean)
}

func (g *Gateway) setURLs(ctx context.Context, id string, urls []string) ([]string, bool, error) {
	c, err := g.UpdateCompany(ctx, id, func(c *domain.Company) { c.CareerURLs = nonNil(urls) })
	if err != nil || c == nil {
		return []string{}, false, err
	}
	return c.CareerURLs, true, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
