package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/ridedispatch/config"
	infrakpi "github.com/kilianp07/ridedispatch/infra/kpi"
)

var kpiOpts struct {
	plate string
	days  int
}

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Per-vehicle trip KPIs",
}

var kpiQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print daily trip KPIs for the configured fleet",
	RunE:  runKPIQuery,
}

func init() {
	f := kpiQueryCmd.Flags()
	f.StringVar(&kpiOpts.plate, "plate", "", "only this vehicle plate")
	f.IntVar(&kpiOpts.days, "days", 7, "number of days to include, today included")
	kpiCmd.AddCommand(kpiQueryCmd)
	rootCmd.AddCommand(kpiCmd)
}

func runKPIQuery(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if kpiOpts.days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	plates := []string{kpiOpts.plate}
	if kpiOpts.plate == "" {
		plates = plates[:0]
		for _, v := range cfg.Fleet.Vehicles {
			plates = append(plates, v.Plate)
		}
	}
	store, err := infrakpi.Open(cfg.KPI)
	if err != nil {
		return fmt.Errorf("open kpi store: %w", err)
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	end := time.Now()
	start := end.AddDate(0, 0, 1-kpiOpts.days)
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PLATE\tDATE\tTRIPS\tPASSENGERS\tOCCUPANCY\tDISTANCE\tMEAN WAIT")
	for _, p := range plates {
		recs, err := store.Query(p, start, end)
		if err != nil {
			return err
		}
		for _, r := range recs {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.2f\t%.1f\t%s\n", r.Plate, r.Date.Format(time.DateOnly),
				r.Trips, r.Passengers, r.MeanOccupancy(), r.Distance, r.MeanWait().Round(time.Second))
		}
	}
	return tw.Flush()
}
