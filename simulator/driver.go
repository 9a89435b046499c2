package simulator

import (
	"math/rand"
	"sync"

	"github.com/kilianp07/ridedispatch/core/model"
)

// Fleet is the part of the dispatcher the driver simulation needs.
type Fleet interface {
	Fleet() []model.Vehicle
	NotifyArrivedAtPickup(id model.VehicleID)
	NotifyDepartedPickup(id model.VehicleID)
	NotifyArrivedAtDestination(id model.VehicleID)
	NotifyDroppedOff(id model.VehicleID)
}

// DriverSimulator plays the drivers of every busy vehicle. Each Step moves
// each busy vehicle one stage along the trip pipeline.
type DriverSimulator struct {
	fleet         Fleet
	duplicateRate float64

	mu    sync.Mutex
	rng   *rand.Rand
	sent  int
	dupes int
}

// NewDriverSimulator creates a simulator that re-sends a notification with
// probability duplicateRate.
func NewDriverSimulator(f Fleet, duplicateRate float64, seed int64) *DriverSimulator {
	return &DriverSimulator{fleet: f, duplicateRate: duplicateRate, rng: rand.New(rand.NewSource(seed))}
}

// Step advances all busy vehicles and returns how many were moved.
func (d *DriverSimulator) Step() int {
	moved := 0
	for _, v := range d.fleet.Fleet() {
		notify := d.next(v.Status)
		if notify == nil {
			continue
		}
		notify(v.ID)
		moved++
		d.mu.Lock()
		d.sent++
		dup := d.duplicateRate > 0 && d.rng.Float64() < d.duplicateRate
		if dup {
			d.dupes++
		}
		d.mu.Unlock()
		if dup {
			notify(v.ID)
		}
	}
	return moved
}

func (d *DriverSimulator) next(s model.VehicleStatus) func(model.VehicleID) {
	switch s {
	case model.StatusEnRouteToPickup:
		return d.fleet.NotifyArrivedAtPickup
	case model.StatusPickingUp:
		return d.fleet.NotifyDepartedPickup
	case model.StatusTransporting:
		return d.fleet.NotifyArrivedAtDestination
	case model.StatusDroppingOff:
		return d.fleet.NotifyDroppedOff
	default:
		return nil
	}
}

// Drain steps until no vehicle is busy or max steps were taken. It returns
// the number of steps performed.
func (d *DriverSimulator) Drain(max int) int {
	for i := 0; i < max; i++ {
		if d.Step() == 0 {
			return i
		}
	}
	return max
}

// Sent returns the number of notifications and of duplicates sent so far.
func (d *DriverSimulator) Sent() (notifications, duplicates int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sent, d.dupes
}
