package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/teilomillet/edgerunner/internal/calculator"
	"github.com/teilomillet/edgerunner/internal/config"
	"github.com/teilomillet/edgerunner/pkg/oddsmath"
)

const version = "v0.3.0"

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cliOptions are the flags shared by every command
type cliOptions struct {
	output   string
	defaults calculator.Defaults
}

func newRootCmd() *cobra.Command {
	cfg := config.LoadConfig()
	opts := &cliOptions{
		defaults: calculator.Defaults{
			Bankroll: cfg.Kelly.DefaultBankroll,
			StakeCap: cfg.Kelly.StakeCap,
		},
	}

	rootCmd := &cobra.Command{
		Use:           "edgerunnerctl",
		Short:         "Kelly stake sizing from the command line",
		Long:          "Convert odds between notations and size single bets or multi-outcome allocations with the Kelly criterion.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case "table", "json":
				return nil
			default:
				return fmt.Errorf("--output must be table or json, got %q", opts.output)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "Output format (table|json)")

	rootCmd.AddCommand(
		newConvertCmd(opts),
		newSingleCmd(opts),
		newAllocateCmd(opts),
	)

	return rootCmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// formatPtr renders an optional metric; nil means undefined
func formatPtr(v *float64, format string) string {
	if v == nil {
		return oddsmath.Placeholder
	}
	return fmt.Sprintf(format, *v)
}
