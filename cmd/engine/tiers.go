package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobtier-engine/internal/rank"
	"jobtier-engine/internal/tiering"
)

type buildTiersFlags struct {
	outDir string
	noSave bool
	top    int
}

func newBuildTiersCmd(rf *rootFlags) *cobra.Command {
	var bf buildTiersFlags
	cmd := &cobra.Command{
		Use:   "build-tiers <dataset.csv|dataset.xlsx>",
		Short: "Rank employers from a filing dataset and store the tier documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(rf)
			if err != nil {
				return err
			}
			defer a.close()
			if bf.noSave && bf.outDir == "" {
				return errors.New("--no-save needs --out, otherwise the build goes nowhere")
			}

			th := rank.Thresholds{
				Top:    a.cfg.Tiers.Top,
				Middle: a.cfg.Tiers.Middle,
				Lower:  a.cfg.Tiers.Lower,
				Lowest: a.cfg.Tiers.Lowest,
			}
			res, err := tiering.NewBuilder(th, a.log.Named("tiering")).BuildFile(args[0])
			if err != nil {
				return err
			}

			if bf.outDir != "" {
				if err := tiering.WriteTierFiles(bf.outDir, res); err != nil {
					return fmt.Errorf("write tier files: %w", err)
				}
				a.log.Info("tier files written", zap.String("dir", bf.outDir))
			}
			if !bf.noSave {
				ctx := cmd.Context()
				gw, err := a.openGateway(ctx)
				if err != nil {
					return err
				}
				defer gw.Close()
				if err := tiering.SaveTiers(ctx, gw, res); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			tiering.RenderTierCounts(out, res)
			if bf.top > 0 {
				fmt.Fprintln(out)
				tiering.RenderTop(out, res.Companies, bf.top)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&bf.outDir, "out", "", "also write <tier>-tier.json files to this directory")
	cmd.Flags().BoolVar(&bf.noSave, "no-save", false, "skip writing tiers to the store")
	cmd.Flags().IntVar(&bf.top, "top", 20, "print the N highest-ranked companies")
	return cmd
}
