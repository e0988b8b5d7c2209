package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/lotsizer/journal"
	"github.com/rustyeddy/lotsizer/report"
	"github.com/rustyeddy/lotsizer/whatif"
)

var whatifCmd = &cobra.Command{
	Use:   "whatif",
	Short: "Filter closed orders to test what-if scenarios",
	Long: `Apply a filter to a CSV journal and write what is left.

Subcommands:
  min-lots     - Remove orders with size <= --max-lots
  min-risk     - Remove orders with |open-close| x size <= --max-risk
  streak-level - Keep orders at position --limit or deeper in a win/loss run

Examples:
  lotsizer whatif min-lots orders.csv --max-lots 0.01 -o filtered.csv
  lotsizer whatif streak-level orders.csv --limit 3 --xlsx level3.xlsx`,
}

var whatifMinLotsCmd = &cobra.Command{
	Use:   "min-lots <orders.csv>",
	Short: "Remove min lot orders",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWhatif(cmd, args[0], whatif.MinLots(whatifMaxLots))
	},
}

var whatifMinRiskCmd = &cobra.Command{
	Use:   "min-risk <orders.csv>",
	Short: "Remove min risk orders",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWhatif(cmd, args[0], whatif.MinRisks(whatifMaxRisk))
	},
}

var whatifStreakCmd = &cobra.Command{
	Use:   "streak-level <orders.csv>",
	Short: "Keep orders deep in a win or loss run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if whatifLimit < 0 {
			return fmt.Errorf("--limit must not be negative")
		}
		return runWhatif(cmd, args[0], whatif.StreakLevel(whatifLimit))
	},
}

var (
	whatifMaxLots float64
	whatifMaxRisk float64
	whatifLimit   int
	whatifOutput  string
	whatifXLSX    string
)

func init() {
	rootCmd.AddCommand(whatifCmd)
	whatifCmd.AddCommand(whatifMinLotsCmd)
	whatifCmd.AddCommand(whatifMinRiskCmd)
	whatifCmd.AddCommand(whatifStreakCmd)

	whatifCmd.PersistentFlags().StringVarP(&whatifOutput, "output", "o", "", "write the kept orders to this CSV")
	whatifCmd.PersistentFlags().StringVar(&whatifXLSX, "xlsx", "", "write the kept orders to an Excel workbook")

	whatifMinLotsCmd.Flags().Float64Var(&whatifMaxLots, "max-lots", whatif.DefaultMaxLots, "remove orders at or below this size")
	whatifMinRiskCmd.Flags().Float64Var(&whatifMaxRisk, "max-risk", whatif.DefaultMaxRisk, "remove orders at or below this risk")
	whatifStreakCmd.Flags().IntVar(&whatifLimit, "limit", whatif.DefaultStreakStep, "minimum position in the run")
}

func runWhatif(cmd *cobra.Command, path string, f whatif.Filter) error {
	recs, err := journal.ReadCSV(path)
	if err != nil {
		return fmt.Errorf("read orders: %w", err)
	}

	kept := whatif.Apply(recs, f)
	out := cmd.OutOrStdout()

	if whatifOutput == "" && whatifXLSX == "" {
		report.Orders(out, kept)
	}
	if whatifOutput != "" {
		if err := journal.WriteCSV(whatifOutput, kept); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	if whatifXLSX != "" {
		if err := report.WriteOrdersXLSX(whatifXLSX, kept); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
	}

	fmt.Fprintf(out, "kept %d of %d orders (%d removed)\n", len(kept), len(recs), len(recs)-len(kept))
	return nil
}
