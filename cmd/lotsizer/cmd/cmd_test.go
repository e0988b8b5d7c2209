package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/lotsizer/journal"
	"github.com/rustyeddy/lotsizer/market"
)

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "lotsizer version "+version)
}

func TestSize(t *testing.T) {
	base := []string{"size", "--journal-type", "memory", "--symbol", "TEST",
		"--tick-size", "1", "--tick-value", "10", "--open", "100"}

	out, err := execute(t, append(base, "--stop", "95", "--take-profit", "110")...)
	require.NoError(t, err)
	assert.Contains(t, out, "SIZING DECISION")
	assert.Contains(t, out, "50.00", "risk per lot")
	assert.Contains(t, out, "Reward / Risk")
	assert.Contains(t, out, "2.00")

	out, err = execute(t, append(base, "--stop", "0")...)
	require.NoError(t, err)
	assert.Contains(t, out, "no_stop")

	_, err = execute(t, "size", "--journal-type", "memory", "--symbol", "TEST", "--stop", "95")
	assert.ErrorContains(t, err, "pass --tick-size")

	_, err = execute(t, append(base, "--side", "sideways", "--stop", "95")...)
	assert.ErrorContains(t, err, "unknown side")
}

func TestSizeReadsJournalStreak(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "j.db")

	j, err := journal.NewSQLite(db)
	require.NoError(t, err)
	at := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"w", "l1", "l2"} {
		closePx := 95.0
		if id == "w" {
			closePx = 110
		}
		require.NoError(t, j.RecordOrder(journal.OrderRecord{Order: market.Order{
			ID: id, Strategy: "geo", Symbol: "TEST", Side: market.Long, Size: 1,
			OpenPrice: 100, ClosePrice: closePx,
			OpenTime: at.Add(time.Duration(i) * time.Hour), CloseTime: at.Add(time.Duration(i) * time.Hour),
		}}))
	}
	require.NoError(t, j.Close())

	cfg := writeFile(t, "cfg.yaml", "strategy:\n  name: geo\n  symbol: TEST\nsizing:\n  risk_multiplier: 2\n")
	out, err := execute(t, "size", "-c", cfg, "-j", db,
		"--tick-size", "1", "--tick-value", "10", "--open", "100", "--stop", "95")
	require.NoError(t, err)
	assert.Contains(t, out, "2 (effective 2, max 5)")
	assert.Contains(t, out, "400.00")
}

const signalsCSV = `time,strategy,symbol,side,bid,ask,entry,stop,exit
2024-01-02T10:00:00Z,geo,TEST,long,99,100,100,95,95
2024-01-02T11:00:00Z,geo,TEST,long,99,100,100,95,95
2024-01-02T12:00:00Z,geo,TEST,long,99,100,100,95,110
`

func TestReplay(t *testing.T) {
	sigs := writeFile(t, "signals.csv", signalsCSV)
	cfg := writeFile(t, "cfg.yaml", "strategy:\n  name: geo\n  symbol: TEST\nsizing:\n  risk_multiplier: 2\njournal:\n  type: memory\n")
	dir := t.TempDir()
	org := filepath.Join(dir, "run.org")
	xlsx := filepath.Join(dir, "run.xlsx")

	out, err := execute(t, "replay", sigs, "-c", cfg, "--tick-size", "1", "--tick-value", "10",
		"--org", org, "--xlsx", xlsx)
	require.NoError(t, err)
	assert.Contains(t, out, "REPLAY")
	assert.Contains(t, out, "800.00")
	assert.Contains(t, out, "1 / 2 / 0")

	data, err := os.ReadFile(org)
	require.NoError(t, err)
	assert.Contains(t, string(data), "* REPLAY: geo TEST")
	assert.Contains(t, string(data), ":NET_PL:      500.00")

	_, err = os.Stat(xlsx)
	assert.NoError(t, err)

	out, err = execute(t, "replay", sigs, "-c", cfg, "--tick-size", "1", "--tick-value", "10", "-q")
	require.NoError(t, err)
	assert.NotContains(t, out, "REPLAY")
	assert.Contains(t, out, "SUMMARY")

	_, err = execute(t, "replay", filepath.Join(dir, "missing.csv"), "--journal-type", "memory")
	assert.ErrorContains(t, err, "read signals")
}

func TestJournalCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "j.db")
	j, err := journal.NewSQLite(db)
	require.NoError(t, err)
	at := time.Date(2024, 1, 2, 12, 0, 0, 0, time.Local)
	require.NoError(t, j.RecordOrder(journal.OrderRecord{
		Order: market.Order{
			ID: "01HX5ZK7ABCDEFG", Strategy: "geo", Symbol: "EUR_USD", Side: market.Long, Size: 0.5,
			OpenPrice: 1.1, ClosePrice: 1.09, OpenTime: at, CloseTime: at,
		},
		RealizedPL: -500,
		Reason:     "risk",
	}))
	require.NoError(t, j.Close())

	out, err := execute(t, "journal", "order", "01HX5ZK7ABCDEFG", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, ":ID: 01HX5ZK7ABCDEFG")

	_, err = execute(t, "journal", "order", "nope", "--db", db)
	assert.ErrorIs(t, err, journal.ErrNotFound)

	out, err = execute(t, "journal", "strategy", "geo", "--db", db, "--table")
	require.NoError(t, err)
	assert.Contains(t, out, "ORDERS")
	assert.Contains(t, out, "-500.00")

	out, err = execute(t, "journal", "day", "2024-01-02", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "** Order: geo EUR_USD long")

	out, err = execute(t, "journal", "day", "2024-01-03", "--db", db)
	require.NoError(t, err)
	assert.NotContains(t, out, "** Order")

	_, err = execute(t, "journal", "day", "yesterday", "--db", db)
	assert.ErrorContains(t, err, "date")

	_, err = execute(t, "journal", "strategy", "--journal-type", "memory")
	assert.ErrorContains(t, err, "strategy name required")
}

func TestWhatif(t *testing.T) {
	at := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	in := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, journal.WriteCSV(in, []journal.OrderRecord{
		{Order: market.Order{ID: "small", Strategy: "geo", Symbol: "EUR_USD", Size: 0.01, OpenPrice: 1, ClosePrice: 2, OpenTime: at, CloseTime: at}, RealizedPL: 1},
		{Order: market.Order{ID: "big", Strategy: "geo", Symbol: "EUR_USD", Size: 1, OpenPrice: 1, ClosePrice: 2, OpenTime: at, CloseTime: at}, RealizedPL: 1},
	}))

	out := filepath.Join(t.TempDir(), "kept.csv")
	msg, err := execute(t, "whatif", "min-lots", in, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, msg, "kept 1 of 2 orders (1 removed)")

	recs, err := journal.ReadCSV(out)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "big", recs[0].ID)

	msg, err = execute(t, "whatif", "streak-level", in, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, msg, "ORDERS")
	assert.Contains(t, msg, "kept 1 of 2 orders")

	msg, err = execute(t, "whatif", "min-risk", in, "--max-risk", "0.5")
	require.NoError(t, err)
	assert.Contains(t, msg, "kept 1 of 2 orders")

	_, err = execute(t, "whatif", "streak-level", in, "--limit", "-1")
	assert.Error(t, err)
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lotsizer.yaml")

	out, err := execute(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created default configuration")

	out, err = execute(t, "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")
	assert.Contains(t, out, "max streak 5")

	_, err = execute(t, "config", "validate")
	assert.ErrorContains(t, err, "config file required")

	bad := writeFile(t, "bad.yaml", "sizing:\n  size_decimals: 9\n")
	_, err = execute(t, "config", "validate", "-f", bad)
	assert.ErrorContains(t, err, "size_decimals")
}

func TestInvalidOverrides(t *testing.T) {
	_, err := execute(t, "size", "--journal-type", "postgres", "--stop", "1")
	assert.ErrorContains(t, err, "journal.type")

	_, err = execute(t, "size", "--journal-type", "memory", "--log-level", "chatty")
	assert.ErrorContains(t, err, "log.level")
}

func TestDayBounds(t *testing.T) {
	start, end, err := dayBounds(time.UTC, "2024-02-28")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), end)
}
