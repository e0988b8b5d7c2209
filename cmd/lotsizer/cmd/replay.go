package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/lotsizer/internal/metrics"
	"github.com/rustyeddy/lotsizer/journal"
	"github.com/rustyeddy/lotsizer/replay"
	"github.com/rustyeddy/lotsizer/report"
	"github.com/rustyeddy/lotsizer/risk"
)

var replayCmd = &cobra.Command{
	Use:   "replay <signals.csv>",
	Short: "Replay recorded signals through the sizer",
	Long: `Size every signal in a CSV file in order, closing each at its exit and
writing it to the journal so later signals see the loss streak.

CSV columns:
  time,strategy,symbol,side,bid,ask,entry,stop,exit

Examples:
  lotsizer replay signals.csv --journal-type memory
  lotsizer replay signals.csv -j replay.db --xlsx replay.xlsx --org replay.org
  lotsizer replay signals.csv --metrics-addr :9090`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

var (
	replayXLSX        string
	replayOrg         string
	replayMetricsAddr string
	replayTickSize    float64
	replayTickValue   float64
	replayQuiet       bool
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVar(&replayXLSX, "xlsx", "", "write steps and summary to an Excel workbook")
	replayCmd.Flags().StringVar(&replayOrg, "org", "", "write an Org-mode run summary")
	replayCmd.Flags().StringVar(&replayMetricsAddr, "metrics-addr", "", "serve prometheus metrics here and wait for Ctrl-C")
	replayCmd.Flags().Float64Var(&replayTickSize, "tick-size", 0, "tick size for every symbol (0 = instrument registry)")
	replayCmd.Flags().Float64Var(&replayTickValue, "tick-value", 0, "value of a whole price unit per lot (0 = instrument registry)")
	replayCmd.Flags().BoolVarP(&replayQuiet, "quiet", "q", false, "print only the summary")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	sigs, err := replay.ReadSignals(args[0])
	if err != nil {
		return fmt.Errorf("read signals: %w", err)
	}

	h, err := journal.Open(cfg.Journal.Type, cfg.Journal.Path)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer h.Close()

	opts := replay.Options{
		AccountCurrency: cfg.Account.Currency,
		TickSize:        replayTickSize,
		TickValue:       replayTickValue,
		Logger:          log,
	}

	addr := cfg.Metrics.Addr
	if cmd.Flags().Changed("metrics-addr") {
		addr = replayMetricsAddr
	}
	var srv *http.Server
	if addr != "" {
		opts.SizerOptions = append(opts.SizerOptions, risk.WithMetrics())
		srv = serveMetrics(addr, log)
		defer shutdown(srv)
	}

	params := cfg.Params()
	r, err := replay.New(params, h, opts)
	if err != nil {
		return err
	}

	res, err := r.Run(cmd.Context(), sigs)
	out := cmd.OutOrStdout()
	if !replayQuiet {
		report.Steps(out, res.Steps)
	}
	report.Summary(out, res.Summary)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	if replayXLSX != "" {
		if err := report.WriteReplayXLSX(replayXLSX, res.Steps, res.Summary); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		fmt.Fprintf(out, "✓ Workbook: %s\n", replayXLSX)
	}

	if replayOrg != "" {
		run := res.Summary.ToRun(cfg.Strategy.Name, cfg.Strategy.Symbol, args[0], params)
		run.OrgPath = replayOrg
		if err := run.WriteOrg(); err != nil {
			return fmt.Errorf("write org: %w", err)
		}
		fmt.Fprintf(out, "✓ Org summary: %s\n", replayOrg)
	}

	if srv != nil {
		fmt.Fprintf(out, "Serving metrics on %s/metrics, Ctrl-C to exit\n", addr)
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		<-ctx.Done()
	}
	return nil
}

func serveMetrics(addr string, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server", zap.String("addr", addr), zap.Error(err))
		}
	}()
	return srv
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
