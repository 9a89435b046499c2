// Package export writes journal records in interchange formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/ridedispatch/core/dispatch/journal"
)

// Formats accepted by Write.
const (
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
)

var csvHeader = []string{
	"timestamp", "event", "trip_id", "vehicle_id", "class", "passenger_id", "group_size",
	"pickup_x", "pickup_y", "destination_x", "destination_y", "wait_seconds", "ride_seconds",
}

// Write dispatches to the writer for format.
func Write(w io.Writer, format string, recs []journal.TripRecord) error {
	switch format {
	case "", FormatJSONL:
		return WriteJSON(w, recs)
	case FormatCSV:
		return WriteCSV(w, recs)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteJSON writes one JSON object per record.
func WriteJSON(w io.Writer, recs []journal.TripRecord) error {
	enc := json.NewEncoder(w)
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV writes the records with a header row. Lost fares leave the
// vehicle columns empty.
func WriteCSV(w io.Writer, recs []journal.TripRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range recs {
		vehicle := ""
		if r.VehicleID != 0 {
			vehicle = strconv.Itoa(int(r.VehicleID))
		}
		rec := []string{
			r.Timestamp.Format(time.RFC3339),
			r.Event,
			strconv.Itoa(int(r.TripID)),
			vehicle,
			r.Class,
			strconv.Itoa(int(r.PassengerID)),
			strconv.Itoa(r.GroupSize),
			strconv.Itoa(r.Pickup.X),
			strconv.Itoa(r.Pickup.Y),
			strconv.Itoa(r.Destination.X),
			strconv.Itoa(r.Destination.Y),
			strconv.FormatFloat(r.WaitSeconds, 'f', -1, 64),
			strconv.FormatFloat(r.RideSeconds, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
