package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teilomillet/edgerunner/internal/calculator"
	"github.com/teilomillet/edgerunner/pkg/models"
)

func newAllocateCmd(opts *cliOptions) *cobra.Command {
	var (
		outcomes []string
		method   string
		stakeCap float64
		bankroll float64
		devig    bool
	)

	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Split a bankroll across mutually exclusive outcomes",
		Example: `  edgerunnerctl allocate --outcome Home:45:52 --outcome Draw:28:25 --outcome Away:27:23
  edgerunnerctl allocate --method independent --cap 0.25 --outcome A:50:60 --outcome B:50:40`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs := make([]models.OutcomeInput, 0, len(outcomes))
			for _, arg := range outcomes {
				o, err := parseOutcome(arg)
				if err != nil {
					return err
				}
				inputs = append(inputs, o)
			}
			if len(inputs) == 0 {
				return fmt.Errorf("at least one --outcome is required")
			}

			var (
				resp *models.AllocationResponse
				err  error
			)
			switch method {
			case "exact":
				if devig {
					return fmt.Errorf("--devig only applies to --method independent")
				}
				resp, err = calculator.CalculateExact(models.ExactRequest{
					Outcomes: inputs, Cap: stakeCap, Bankroll: bankroll,
				}, opts.defaults)
			case "independent":
				resp, err = calculator.CalculateIndependent(models.IndependentRequest{
					Outcomes: inputs, Cap: stakeCap, Bankroll: bankroll, Devig: devig,
				}, opts.defaults)
			default:
				return fmt.Errorf("--method must be exact or independent, got %q", method)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.output == "json" {
				return writeJSON(out, resp)
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "OUTCOME\tODDS\tFRACTION\tSTAKE")
			for _, row := range resp.Rows {
				fmt.Fprintf(tw, "%s\t%s\t%.2f%%\t%.2f\n",
					row.Name, formatPtr(row.DecimalOdds, "%.3f"), row.RecommendedFraction*100, row.Stake)
			}
			fmt.Fprintf(tw, "TOTAL\t\t%.2f%%\t%.2f\n", resp.TotalFraction*100, resp.TotalStake)
			if err := tw.Flush(); err != nil {
				return err
			}

			if resp.LogGrowthBp != nil {
				fmt.Fprintf(out, "Expected log growth: %.2f bp (%d iterations)\n", *resp.LogGrowthBp, resp.Iterations)
			}
			for _, w := range resp.Warnings {
				fmt.Fprintf(out, "! %s\n", w)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&outcomes, "outcome", nil, "Outcome as name:market_pct:your_pct (repeatable)")
	flags.StringVar(&method, "method", "exact", "Allocation method (exact|independent)")
	flags.Float64Var(&stakeCap, "cap", 0, "Maximum total fraction of bankroll; KELLY_STAKE_CAP when zero")
	flags.Float64Var(&bankroll, "bankroll", 0, "Bankroll; DEFAULT_BANKROLL when zero")
	flags.BoolVar(&devig, "devig", false, "Normalize market percentages to 100 first (independent only)")

	return cmd
}

// parseOutcome reads "name:market:yours"; the name may itself contain colons
func parseOutcome(arg string) (models.OutcomeInput, error) {
	parts := strings.Split(arg, ":")
	if len(parts) < 3 {
		return models.OutcomeInput{}, fmt.Errorf("outcome %q must look like name:market_pct:your_pct", arg)
	}

	n := len(parts)
	market, err := strconv.ParseFloat(strings.TrimSpace(parts[n-2]), 64)
	if err != nil {
		return models.OutcomeInput{}, fmt.Errorf("outcome %q market percentage: %w", arg, err)
	}
	yours, err := strconv.ParseFloat(strings.TrimSpace(parts[n-1]), 64)
	if err != nil {
		return models.OutcomeInput{}, fmt.Errorf("outcome %q your percentage: %w", arg, err)
	}

	return models.OutcomeInput{
		Name:      strings.Join(parts[:n-2], ":"),
		MarketPct: market,
		YourPct:   yours,
	}, nil
}
