package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/ridedispatch/app"
	"github.com/kilianp07/ridedispatch/config"
	"github.com/kilianp07/ridedispatch/core/monitoring"
	"github.com/kilianp07/ridedispatch/infra/logger"
	inframon "github.com/kilianp07/ridedispatch/infra/monitoring"
)

var simulateOpts struct {
	requests   int
	seed       int64
	concurrent bool
	hold       bool
	asJSON     bool
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the request simulation and print the statistics",
	RunE:  runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.IntVarP(&simulateOpts.requests, "requests", "n", 0, "number of pickup requests (overrides source.requests)")
	f.Int64Var(&simulateOpts.seed, "seed", 0, "random seed (overrides source.seed)")
	f.BoolVar(&simulateOpts.concurrent, "concurrent", false, "issue requests from all sources concurrently")
	f.BoolVar(&simulateOpts.hold, "hold", false, "keep serving metrics and the driver bridge after the run")
	f.BoolVar(&simulateOpts.asJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("requests") {
		cfg.Source.Requests = simulateOpts.requests
	}
	if flags.Changed("seed") {
		cfg.Source.Seed = simulateOpts.seed
	}
	if flags.Changed("concurrent") {
		cfg.Source.Concurrent = simulateOpts.concurrent
	}
	if err := cfg.Source.Validate(); err != nil {
		return err
	}

	mon, err := inframon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	monitoring.Init(mon)
	defer monitoring.Flush(2 * time.Second)

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	rep, err := svc.Run(ctx, simulateOpts.hold)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if simulateOpts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	fmt.Fprintln(out, svc.Company)
	_, err = rep.WriteTo(out)
	return err
}
