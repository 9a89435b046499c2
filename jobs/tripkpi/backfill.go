// Package tripkpi folds trip history into the KPI store.
package tripkpi

import (
	"github.com/kilianp07/ridedispatch/core/kpi"
	"github.com/kilianp07/ridedispatch/core/model"
)

// Backfill adds one record per completed trip, dated at drop-off and keyed by
// the plate of the vehicle that served it. Trips that are not completed or
// whose vehicle is not in fleet are skipped. It returns the number of trips
// added.
func Backfill(store kpi.Store, fleet []model.Vehicle, trips []model.Trip) (int, error) {
	plates := make(map[model.VehicleID]string, len(fleet))
	for _, v := range fleet {
		plates[v.ID] = v.Plate
	}
	n := 0
	for _, t := range trips {
		plate, ok := plates[t.Vehicle]
		if !ok || !t.IsCompleted() {
			continue
		}
		rec := kpi.Record{
			Plate:       plate,
			Date:        t.DroppedOffAt,
			Trips:       1,
			Passengers:  t.Passenger.GroupSize,
			Distance:    t.Distance(),
			WaitSeconds: t.WaitTime().Seconds(),
		}
		if err := store.Add(rec); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
