package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/lotsizer/journal"
	"github.com/rustyeddy/lotsizer/report"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the order journal",
	Long: `Query and display order records from the SQLite journal.

Subcommands:
  order    - Get details of a specific order by ID
  strategy - List every order of a strategy, oldest first
  day      - List orders closed on a specific day

Examples:
  lotsizer journal order <order-id>
  lotsizer journal strategy geo --table
  lotsizer journal day 2024-01-15`,
}

var journalOrderCmd = &cobra.Command{
	Use:   "order <order-id>",
	Short: "Get details of a specific order",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalOrder,
}

var journalStrategyCmd = &cobra.Command{
	Use:   "strategy [name]",
	Short: "List the orders of a strategy",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runJournalStrategy,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List orders closed on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var (
	journalDBPath string
	journalTable  bool
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalOrderCmd)
	journalCmd.AddCommand(journalStrategyCmd)
	journalCmd.AddCommand(journalDayCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite journal DB (default: journal path from config)")
	journalCmd.PersistentFlags().BoolVar(&journalTable, "table", false, "print a table instead of Org-mode")
}

func openJournalDB(cmd *cobra.Command) (*journal.SQLite, error) {
	path := journalDBPath
	if path == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return nil, err
		}
		if cfg.Journal.Type != "sqlite" {
			return nil, fmt.Errorf("journal queries need a sqlite journal, config has %q", cfg.Journal.Type)
		}
		path = cfg.Journal.Path
	}

	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func printOrders(cmd *cobra.Command, recs []journal.OrderRecord) {
	out := cmd.OutOrStdout()
	if journalTable {
		report.Orders(out, recs)
		return
	}
	fmt.Fprintln(out, journal.FormatOrdersOrg(recs))
}

func runJournalOrder(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB(cmd)
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.GetOrder(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}

	printOrders(cmd, []journal.OrderRecord{rec})
	return nil
}

func runJournalStrategy(cmd *cobra.Command, args []string) error {
	name := strategy
	if len(args) == 1 {
		name = args[0]
	}
	if name == "" {
		return fmt.Errorf("strategy name required (argument or --strategy)")
	}

	j, err := openJournalDB(cmd)
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListOrders(cmd.Context(), name)
	if err != nil {
		return fmt.Errorf("query orders: %w", err)
	}

	printOrders(cmd, recs)
	return nil
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB(cmd)
	if err != nil {
		return err
	}
	defer j.Close()

	start, end, err := dayBounds(time.Local, args[0])
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	recs, err := j.ListOrdersClosedBetween(cmd.Context(), start, end)
	if err != nil {
		return fmt.Errorf("query orders: %w", err)
	}

	printOrders(cmd, recs)
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}
