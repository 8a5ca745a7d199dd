package scrape

import (
	"context"
	"fmt"

	"jobtier-engine/internal/domain"
	"jobtier-engine/internal/scrape/types"
)

// RosterEntry is one employer board to scrape. Tier is empty for entries
// from a secondary roster.
type RosterEntry struct {
	Platform    domain.Platform
	Token       string
	CompanyID   string
	CompanyName string
	Tier        domain.Tier
}

func (e RosterEntry) Target() types.Target {
	return types.Target{Token: e.Token, CompanyID: e.CompanyID, CompanyName: e.CompanyName}
}

func (e RosterEntry) key() string { return string(e.Platform) + "\x00" + e.Token }

// TierSource loads persisted tier documents; store.Gateway satisfies it.
type TierSource interface {
	GetTier(ctx context.Context, t domain.Tier) (*domain.TierData, error)
}

// LoadTierRoster reads the four scraped tiers, highest first. Missing tiers
// contribute nothing; a read failure is returned.
func LoadTierRoster(ctx context.Context, src TierSource) ([]RosterEntry, error) {
	var docs []domain.TierData
	for _, t := range domain.ScrapedTiers {
		td, err := src.GetTier(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("load %s tier roster: %w", t, err)
		}
		if td == nil {
			continue
		}
		if td.Tier == "" {
			td.Tier = t
		}
		docs = append(docs, *td)
	}
	return TierRoster(docs), nil
}

// TierRoster keeps companies with a scrapeable platform and a board token.
func TierRoster(docs []domain.TierData) []RosterEntry {
	var out []RosterEntry
	for _, td := range docs {
		for _, c := range td.Companies {
			p, err := domain.ParsePlatform(string(c.Platform))
			if err != nil || p == domain.PlatformCustom {
				continue
			}
			c.Platform = p
			tok := c.BoardToken()
			if tok == "" {
				continue
			}
			out = append(out, RosterEntry{
				Platform:    p,
				Token:       tok,
				CompanyID:   c.ID,
				CompanyName: c.Name,
				Tier:        td.Tier,
			})
		}
	}
	return out
}
