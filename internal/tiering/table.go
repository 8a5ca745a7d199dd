package tiering

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"jobtier-engine/internal/domain"
)

// RenderTop writes the n highest-ranked companies as a table.
func RenderTop(w io.Writer, companies []domain.Company, n int) {
	if n > len(companies) {
		n = len(companies)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"#", "Company", "Total", "Q1", "Q2", "Q3", "Q4", "Approval", "Score", "Tier"})
	for i := 0; i < n; i++ {
		c := companies[i]
		name := c.Name
		if r := []rune(name); len(r) > 25 {
			name = string(r[:25])
		}
		tw.AppendRow(table.Row{
			i + 1, name, c.LCACount, c.LCAQ1, c.LCAQ2, c.LCAQ3, c.LCAQ4,
			fmt.Sprintf("%.0f%%", c.ApprovalRate*100), fmt.Sprintf("%.0f", c.PriorityScore), c.Tier,
		})
	}
	tw.Render()
}

// RenderTierCounts writes a one-row-per-tier summary.
func RenderTierCounts(w io.Writer, res Result) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Tier", "Companies"})
	total := 0
	for _, t := range append(append([]domain.Tier{}, domain.ScrapedTiers...), domain.TierBelow50) {
		n := res.Tiers[t].Count
		total += n
		tw.AppendRow(table.Row{t, n})
	}
	tw.AppendFooter(table.Row{"total", total})
	tw.Render()
}
