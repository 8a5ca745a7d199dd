package rank

import (
	"math"

	"jobtier-engine/internal/domain"
)

// Scorer assigns a priority score to an aggregated employer.
type Scorer interface {
	Score(lcaCount int, approvalRate float64) float64
}

// LCAScorer weighs filing volume against approval rate (as a percentage).
type LCAScorer struct {
	CountWeight    float64
	ApprovalWeight float64
}

// DefaultScorer is the 50/50 volume/approval weighting.
var DefaultScorer = LCAScorer{CountWeight: 0.5, ApprovalWeight: 0.5}

func (s LCAScorer) Score(lcaCount int, approvalRate float64) float64 {
	return Round2(s.CountWeight*float64(lcaCount) + s.ApprovalWeight*approvalRate*100)
}

// ApprovalRate is certified/total, 0 when total is 0. Not rounded.
func ApprovalRate(certified, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(certified) / float64(total)
}

// Round2 rounds half away from zero to two decimals.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Apply fills ApprovalRate and PriorityScore on c from raw counts.
func Apply(s Scorer, c *domain.Company, certified int) {
	rate := ApprovalRate(certified, c.LCACount)
	c.ApprovalRate = Round2(rate)
	c.PriorityScore = s.Score(c.LCACount, rate)
}
