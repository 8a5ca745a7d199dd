package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"jobtier-engine/internal/domain"
	"jobtier-engine/internal/store"
)

// withGateway runs fn against a freshly opened store.
func withGateway(rf *rootFlags, cmd *cobra.Command, fn func(ctx context.Context, gw *store.Gateway) error) error {
	a, err := setup(rf)
	if err != nil {
		return err
	}
	defer a.close()
	ctx := cmd.Context()
	gw, err := a.openGateway(ctx)
	if err != nil {
		return err
	}
	defer gw.Close()
	return fn(ctx, gw)
}

func newDataCmd(rf *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Inspect and administer stored data",
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show what the store holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGateway(rf, cmd, func(ctx context.Context, gw *store.Gateway) error {
				st, err := gw.Stats(ctx)
				if err != nil {
					return err
				}
				renderStats(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}

	seed := &cobra.Command{
		Use:   "seed [dir]",
		Short: "Load <tier>-tier.json and jobs.json files into the store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "data"
			if len(args) == 1 {
				dir = args[0]
			}
			return withGateway(rf, cmd, func(ctx context.Context, gw *store.Gateway) error {
				res, err := gw.Seed(ctx, dir)
				if err != nil {
					return err
				}
				if err := printJSON(cmd.OutOrStdout(), res); err != nil {
					return err
				}
				if !res.Success() {
					return fmt.Errorf("seed finished with %d errors", len(res.Errors))
				}
				return nil
			})
		},
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete stored jobs, summary and tiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear without --yes")
			}
			return withGateway(rf, cmd, func(ctx context.Context, gw *store.Gateway) error {
				if err := gw.Clear(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "cleared")
				return nil
			})
		},
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")

	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove legacy keys left by older layouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGateway(rf, cmd, func(ctx context.Context, gw *store.Gateway) error {
				res, err := gw.CleanupUnusedKeys(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}

	cmd.AddCommand(stats, seed, clearCmd, cleanup)
	return cmd
}

func renderStats(w io.Writer, st store.Stats) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.SetTitle("Store (" + st.Backend + ")")
	tw.AppendHeader(table.Row{"Key", "Present", "Count"})
	tw.AppendRow(table.Row{"jobs", st.HasJobs, st.JobsCount})
	for _, t := range domain.ScrapedTiers {
		tw.AppendRow(table.Row{string(t) + "-tier", st.HasTiers[t], st.TierCounts[t]})
	}
	tw.AppendFooter(table.Row{"companies", "", st.TotalCompanies})
	tw.Render()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
