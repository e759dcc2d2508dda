package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teilomillet/edgerunner/internal/calculator"
	"github.com/teilomillet/edgerunner/pkg/models"
)

func newSingleCmd(opts *cliOptions) *cobra.Command {
	var (
		req  models.SingleBetRequest
		flip bool
	)

	cmd := &cobra.Command{
		Use:   "single",
		Short: "Size a single bet with the Kelly criterion",
		Example: `  edgerunnerctl single --market 50 --yours 60 --odds 2.0
  edgerunnerctl single --market 62 --yours 45 --side no --odds +150 --format american`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flip {
				flipped, err := calculator.FlipSingleBet(req)
				if err != nil {
					return err
				}
				req = *flipped
			}

			resp, err := calculator.CalculateSingleBet(req, opts.defaults)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.output == "json" {
				return writeJSON(out, resp)
			}

			tw := newTable(out)
			fmt.Fprintf(tw, "Side\t%s\n", resp.Side)
			fmt.Fprintf(tw, "Odds (%s)\t%s  %s  %s\n", resp.OddsSource, resp.Odds.DecimalText, resp.Odds.American, resp.Odds.Fractional)
			fmt.Fprintf(tw, "Fair odds\t%s\n", resp.FairOdds.DecimalText)
			fmt.Fprintf(tw, "Implied\t%s\n", formatPtr(scalePct(resp.ImpliedProb), "%.2f%%"))
			fmt.Fprintf(tw, "Edge\t%s\n", formatPtr(scalePct(resp.Edge), "%+.2f%%"))
			fmt.Fprintf(tw, "EV per unit\t%s\n", formatPtr(resp.EVPerUnit, "%+.4f"))
			fmt.Fprintf(tw, "Kelly\t%.2f%%\n", resp.KellyFraction*100)
			fmt.Fprintf(tw, "Full stake\t%.2f\n", resp.FullStake)
			fmt.Fprintf(tw, "Half stake\t%.2f\n", resp.HalfStake)
			fmt.Fprintf(tw, "Quarter stake\t%.2f\n", resp.QuarterStake)
			fmt.Fprintf(tw, "Log growth\t%.2f bp\n", resp.LogGrowthBp)
			fmt.Fprintf(tw, "Recommendation\t%s\n", resp.Recommendation)
			if err := tw.Flush(); err != nil {
				return err
			}

			for _, w := range resp.Warnings {
				fmt.Fprintf(out, "! %s\n", w)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&req.MarketPct, "market", 50, "Market probability that the event happens, percent")
	flags.Float64Var(&req.YourPct, "yours", 50, "Your probability for the backed side, percent")
	flags.StringVar(&req.Side, "side", "yes", "Backed side (yes|no)")
	flags.StringVar(&req.Odds, "odds", "", "Explicit odds for the backed side; market odds are used when empty")
	flags.StringVarP(&req.Format, "format", "f", "decimal", "Odds notation (decimal|american|fractional)")
	flags.Float64Var(&req.Bankroll, "bankroll", 0, "Bankroll; DEFAULT_BANKROLL when zero")
	flags.BoolVar(&flip, "flip", false, "Back the other side, mirroring your probability and the odds")

	return cmd
}
