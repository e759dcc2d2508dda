package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teilomillet/edgerunner/internal/calculator"
	"github.com/teilomillet/edgerunner/pkg/models"
)

func newConvertCmd(opts *cliOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "convert <odds>",
		Short: "Show a price in decimal, American and fractional notation",
		Example: `  edgerunnerctl convert 2.5
  edgerunnerctl convert --format american -- -110
  edgerunnerctl convert 5/2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := calculator.ConvertOdds(models.ConvertRequest{Odds: args[0], Format: format})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.output == "json" {
				return writeJSON(out, resp)
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "\tDECIMAL\tAMERICAN\tFRACTIONAL\tIMPLIED")
			for _, row := range []struct {
				label string
				quote models.OddsQuote
			}{
				{"price", resp.Odds},
				{"complement", resp.Complement},
			} {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					row.label, row.quote.DecimalText, row.quote.American, row.quote.Fractional,
					formatPtr(scalePct(row.quote.ImpliedProbability), "%.2f%%"))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Input notation (decimal|american|fractional); auto-detected when empty")
	return cmd
}

func scalePct(v *float64) *float64 {
	if v == nil {
		return nil
	}
	pct := *v * 100
	return &pct
}
