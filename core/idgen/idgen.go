// Package idgen issues entity identifiers for one simulation instance.
// Counters start at 1 so that the zero value of every id type means unset.
package idgen

import (
	"sync/atomic"

	"github.com/kilianp07/ridedispatch/core/model"
)

// Generator hands out vehicle, trip and passenger ids. It is safe for
// concurrent use.
type Generator struct {
	vehicles   atomic.Int64
	trips      atomic.Int64
	passengers atomic.Int64
}

// New returns a Generator whose counters start at 1.
func New() *Generator { return &Generator{} }

func (g *Generator) NextVehicle() model.VehicleID {
	return model.VehicleID(g.vehicles.Add(1))
}

func (g *Generator) NextTrip() model.TripID {
	return model.TripID(g.trips.Add(1))
}

func (g *Generator) NextPassenger() model.PassengerID {
	return model.PassengerID(g.passengers.Add(1))
}

// ObserveVehicle advances the vehicle counter past an externally chosen id
// so that generated ids never collide with it.
func (g *Generator) ObserveVehicle(id model.VehicleID) {
	for {
		cur := g.vehicles.Load()
		if int64(id) <= cur || g.vehicles.CompareAndSwap(cur, int64(id)) {
			return
		}
	}
}
