package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/lotsizer/config"
	"github.com/rustyeddy/lotsizer/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:   "lotsizer",
	Short: "Adaptive martingale position sizing",
	Long: `Lotsizer sizes orders from a fixed money risk, scaled up after a run of
losing trades and reset once the run grows past a configured limit.

It provides tools for:
  - Sizing a single order against the strategy's trade journal
  - Replaying recorded signals to see how sizing escalates
  - Querying the SQLite/CSV order journal
  - What-if filtering of closed orders
  - Generating and validating configuration files

Settings come from the config file, then a .env file, then LOTSIZER_*
environment variables, then command line flags.`,
	SilenceUsage: true,
}

var (
	cfgFile     string
	envFile     string
	logLevel    string
	strategy    string
	symbol      string
	journalType string
	journalPath string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file, YAML or JSON (default: built in defaults)")
	pf.StringVar(&envFile, "env", ".env", "dotenv file with LOTSIZER_* overrides")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVarP(&strategy, "strategy", "s", "", "strategy name")
	pf.StringVar(&symbol, "symbol", "", "instrument, e.g. EUR_USD")
	pf.StringVar(&journalType, "journal-type", "", "journal type: sqlite, csv or memory")
	pf.StringVarP(&journalPath, "journal", "j", "", "journal path")
}

// loadConfig layers the config file, the environment and the persistent
// flags, then validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		var err error
		if cfg, err = config.LoadFromFile(cfgFile); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(envFile); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	flags := cmd.Flags()
	overrides := []struct {
		name string
		src  string
		dst  *string
	}{
		{"log-level", logLevel, &cfg.Log.Level},
		{"strategy", strategy, &cfg.Strategy.Name},
		{"symbol", symbol, &cfg.Strategy.Symbol},
		{"journal-type", journalType, &cfg.Journal.Type},
		{"journal", journalPath, &cfg.Journal.Path},
	}
	for _, o := range overrides {
		if flags.Changed(o.name) {
			*o.dst = o.src
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Log.File != "" {
		return logging.NewWithFile(cfg.Log.Level, cfg.Log.File)
	}
	return logging.New(cfg.Log.Level)
}
