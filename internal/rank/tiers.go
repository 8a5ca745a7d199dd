package rank

import (
	"fmt"

	"jobtier-engine/internal/domain"
)

// Thresholds are the minimum lcaCount for each tier. Anything below Lowest
// is below50. Buckets are contiguous by construction.
type Thresholds struct {
	Top    int
	Middle int
	Lower  int
	Lowest int
}

var DefaultThresholds = Thresholds{Top: 1000, Middle: 501, Lower: 101, Lowest: 51}

func (t Thresholds) Validate() error {
	if !(t.Top > t.Middle && t.Middle > t.Lower && t.Lower > t.Lowest && t.Lowest > 0) {
		return fmt.Errorf("tier thresholds must be strictly descending and positive: %+v", t)
	}
	return nil
}

func (t Thresholds) Assign(lcaCount int) domain.Tier {
	switch {
	case lcaCount >= t.Top:
		return domain.TierTop
	case lcaCount >= t.Middle:
		return domain.TierMiddle
	case lcaCount >= t.Lower:
		return domain.TierLower
	case lcaCount >= t.Lowest:
		return domain.TierLowest
	default:
		return domain.TierBelow50
	}
}

// Partition splits ranked companies into per-tier slices, preserving order.
func Partition(companies []domain.Company) map[domain.Tier][]domain.Company {
	out := map[domain.Tier][]domain.Company{}
	for _, c := range companies {
		out[c.Tier] = append(out[c.Tier], c)
	}
	return out
}
