package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"jobtier-engine/internal/config"
	"jobtier-engine/internal/domain"
	"jobtier-engine/internal/events"
	"jobtier-engine/internal/metrics"
	"jobtier-engine/internal/poll"
	"jobtier-engine/internal/scrape"
)

func newScrapeCmd(rf *rootFlags) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run one scrape pass and persist the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(rf)
			if err != nil {
				return err
			}
			defer a.close()
			switch mode {
			case "":
			case config.PersistReplace, config.PersistMerge:
				a.cfg.Scrape.PersistMode = mode
			default:
				return fmt.Errorf("--mode must be %s or %s", config.PersistReplace, config.PersistMerge)
			}

			ctx := cmd.Context()
			gw, err := a.openGateway(ctx)
			if err != nil {
				return err
			}
			defer gw.Close()

			cfg := a.cfg
			runner := &poll.Runner{
				Gateway:  gw,
				Registry: scrape.NewRegistry(cfg, scrape.NewLimiter(cfg)),
				Config:   func() config.Config { return cfg },
				Hub:      events.NewHub(),
				Metrics:  metrics.New(),
				Log:      a.log.Named("scrape"),
			}
			rep, err := runner.RunOnce(ctx, "cli")
			if err != nil {
				return err
			}
			renderReport(cmd.OutOrStdout(), rep)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "persist mode override: replace or merge")
	return cmd
}

func renderReport(w io.Writer, rep poll.Report) {
	s := rep.Summary
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.SetTitle("Scrape " + s.RunID)
	tw.AppendRows([]table.Row{
		{"Companies attempted", s.CompaniesAttempted},
		{"Companies scraped", s.CompaniesScraped},
		{"Companies with jobs", s.CompaniesWithJobs},
		{"Jobs fetched", s.TotalJobs},
		{"Jobs after filter", s.FilteredJobs},
		{"Dropped as stale", rep.Dropped},
		{"Persisted (" + rep.Mode + ")", rep.Persisted},
		{"Duration", s.Duration},
	})
	tw.AppendSeparator()
	for _, t := range domain.ScrapedTiers {
		tw.AppendRow(table.Row{"Tier " + string(t), s.TierBreakdown[t]})
	}
	tw.Render()

	if len(s.Errors) > 0 {
		fmt.Fprintf(w, "\n%d errors:\n", len(s.Errors))
		for _, e := range s.Errors {
			fmt.Fprintln(w, "  -", e)
		}
	}
	for _, n := range s.Notes {
		fmt.Fprintln(w, "note:", n)
	}
}
