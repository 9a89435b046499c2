package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/ridedispatch/config"
	"github.com/kilianp07/ridedispatch/core/dispatch/journal"
	"github.com/kilianp07/ridedispatch/core/model"
	"github.com/kilianp07/ridedispatch/pkg/export"
)

var journalOpts struct {
	event   string
	trip    int
	vehicle int
	since   time.Duration
	format  string
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Trip journal commands",
}

var journalQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print journal records as JSON lines or CSV",
	RunE:  runJournalQuery,
}

func init() {
	f := journalQueryCmd.Flags()
	f.StringVar(&journalOpts.event, "event", "", "only records of this event (trip_scheduled, fare_lost, passenger_picked_up, trip_completed)")
	f.IntVar(&journalOpts.trip, "trip", 0, "only records of this trip id")
	f.IntVar(&journalOpts.vehicle, "vehicle", 0, "only records of this vehicle id")
	f.DurationVar(&journalOpts.since, "since", 0, "only records newer than this duration")
	f.StringVar(&journalOpts.format, "format", export.FormatJSONL, "output format (jsonl, csv)")
	journalCmd.AddCommand(journalQueryCmd)
	rootCmd.AddCommand(journalCmd)
}

func runJournalQuery(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := journal.Open(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	q := journal.Query{
		Event:     journalOpts.event,
		TripID:    model.TripID(journalOpts.trip),
		VehicleID: model.VehicleID(journalOpts.vehicle),
	}
	if journalOpts.since > 0 {
		q.Start = time.Now().Add(-journalOpts.since)
	}
	recs, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	return export.Write(cmd.OutOrStdout(), journalOpts.format, recs)
}
