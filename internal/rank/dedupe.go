package rank

import (
	"cmp"
	"slices"
	"strings"

	"jobtier-engine/internal/domain"
)

// Dedupe collapses companies first by ID, then by lower-cased trimmed name.
// Within each pass the first entry is kept unless a later duplicate has a
// strictly higher PriorityScore, in which case the later entry replaces it
// wholesale (all fields). The result is sorted by PriorityScore descending.
func Dedupe(companies []domain.Company) []domain.Company {
	byID := dedupeBy(companies, func(c domain.Company) string { return c.ID })
	byName := dedupeBy(byID, func(c domain.Company) string {
		return strings.ToLower(strings.TrimSpace(c.Name))
	})
	SortByPriority(byName)
	return byName
}

func dedupeBy(in []domain.Company, key func(domain.Company) string) []domain.Company {
	out := make([]domain.Company, 0, len(in))
	idx := make(map[string]int, len(in))
	for _, c := range in {
		k := key(c)
		i, ok := idx[k]
		if !ok {
			idx[k] = len(out)
			out = append(out, c)
			continue
		}
		if c.PriorityScore > out[i].PriorityScore {
			out[i] = c
		}
	}
	return out
}

// SortByPriority orders by PriorityScore descending. Ties keep input order.
func SortByPriority(cs []domain.Company) {
	slices.SortStableFunc(cs, func(a, b domain.Company) int {
		return cmp.Compare(b.PriorityScore, a.PriorityScore)
	})
}

// TierCounts tallies companies per tier.
func TierCounts(cs []domain.Company) map[domain.Tier]int {
	out := map[domain.Tier]int{}
	for _, c := range cs {
		out[c.Tier]++
	}
	return out
}
