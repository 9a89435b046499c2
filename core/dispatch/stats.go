package dispatch

import (
	"github.com/kilianp07/ridedispatch/core/model"
)

// Stats is a consistent snapshot of the company counters.
type Stats struct {
	Vehicles       int `json:"vehicles"`
	Available      int `json:"available"`
	Busy           int `json:"busy"`
	Maintenance    int `json:"maintenance"`
	ActiveTrips    int `json:"active_trips"`
	CompletedTrips int `json:"completed_trips"`
	LostFares      int `json:"lost_fares"`
}

// Requests is the number of ScheduleVehicle calls accounted for.
func (s Stats) Requests() int { return s.ActiveTrips + s.CompletedTrips + s.LostFares }

// Scheduled is the number of requests that were matched to a vehicle.
func (s Stats) Scheduled() int { return s.ActiveTrips + s.CompletedTrips }

// LostFareRate is the share of requests that went unserved.
func (s Stats) LostFareRate() float64 {
	if s.Requests() == 0 {
		return 0
	}
	return float64(s.LostFares) / float64(s.Requests())
}

// Stats returns all counters under one lock acquisition.
func (c *Company) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := Stats{
		Vehicles:       len(c.order),
		ActiveTrips:    len(c.active),
		CompletedTrips: len(c.completed),
		LostFares:      len(c.lost),
	}
	for _, v := range c.vehicles {
		switch {
		case v.IsAvailable():
			st.Available++
		case v.Status == model.StatusMaintenance:
			st.Maintenance++
		default:
			st.Busy++
		}
	}
	return st
}

// Fleet returns copies of all vehicles in insertion order.
func (c *Company) Fleet() []model.Vehicle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// AvailableVehicles returns copies of the vehicles able to take a trip, in
// fleet order.
func (c *Company) AvailableVehicles() []model.Vehicle {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []model.Vehicle
	for _, id := range c.order {
		if v := c.vehicles[id]; v.IsAvailable() {
			out = append(out, *v)
		}
	}
	return out
}

// Vehicle returns a copy of the vehicle with the given id.
func (c *Company) Vehicle(id model.VehicleID) (model.Vehicle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.vehicles[id]
	if !ok {
		return model.Vehicle{}, false
	}
	return *v, true
}

// Trip returns a copy of the trip with the given id.
func (c *Company) Trip(id model.TripID) (model.Trip, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.trips[id]
	if !ok {
		return model.Trip{}, false
	}
	return *t, true
}

// ActiveTrips returns the trips in progress in scheduling order.
func (c *Company) ActiveTrips() []model.Trip {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tripsLocked(c.active)
}

// CompletedTrips returns finished trips in completion order.
func (c *Company) CompletedTrips() []model.Trip {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tripsLocked(c.completed)
}

// LostFares returns the unserved requests in request order.
func (c *Company) LostFares() []model.Trip {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tripsLocked(c.lost)
}

func (c *Company) TotalLostFares() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lost)
}

func (c *Company) TotalCompletedTrips() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.completed)
}

func (c *Company) ActiveTripsCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.active)
}

func (c *Company) tripsLocked(ids []model.TripID) []model.Trip {
	out := make([]model.Trip, len(ids))
	for i, id := range ids {
		out[i] = *c.trips[id]
	}
	return out
}
