package model

import (
	"fmt"
	"time"
)

// TripID identifies a ride request. Zero means unset.
type TripID int

// Trip is one ride from request to drop-off. A trip without a vehicle is a
// lost fare and never changes again. DroppedOffAt is only set once
// PickedUpAt is set.
type Trip struct {
	ID           TripID    `json:"id"`
	Passenger    Passenger `json:"passenger"`
	Pickup       Location  `json:"pickup"`
	Destination  Location  `json:"destination"`
	RequestedAt  time.Time `json:"requested_at"`
	PickedUpAt   time.Time `json:"picked_up_at,omitempty"`
	DroppedOffAt time.Time `json:"dropped_off_at,omitempty"`
	Vehicle      VehicleID `json:"vehicle,omitempty"`
}

// NewTrip returns an unassigned trip requested at the given time.
func NewTrip(id TripID, p Passenger, pickup, dest Location, at time.Time) Trip {
	return Trip{ID: id, Passenger: p, Pickup: pickup, Destination: dest, RequestedAt: at}
}

// IsLost reports whether no vehicle was ever bound to the trip.
func (t Trip) IsLost() bool { return t.Vehicle == 0 }

// IsPickedUp reports whether the party has been collected.
func (t Trip) IsPickedUp() bool { return !t.PickedUpAt.IsZero() }

// IsCompleted reports whether the party has been dropped off.
func (t Trip) IsCompleted() bool { return !t.DroppedOffAt.IsZero() }

// MarkPickedUp stamps the pickup time once. It reports whether the stamp
// was applied.
func (t *Trip) MarkPickedUp(at time.Time) bool {
	if t.IsLost() || t.IsPickedUp() {
		return false
	}
	t.PickedUpAt = at
	return true
}

// MarkDroppedOff stamps the drop-off time once the party is on board.
func (t *Trip) MarkDroppedOff(at time.Time) bool {
	if !t.IsPickedUp() || t.IsCompleted() {
		return false
	}
	t.DroppedOffAt = at
	return true
}

// Distance is the straight-line length of the ride.
func (t Trip) Distance() float64 { return t.Pickup.DistanceTo(t.Destination) }

// WaitTime is the time between request and pickup, zero until picked up.
func (t Trip) WaitTime() time.Duration {
	if !t.IsPickedUp() {
		return 0
	}
	return t.PickedUpAt.Sub(t.RequestedAt)
}

// RideTime is the time between pickup and drop-off, zero until completed.
func (t Trip) RideTime() time.Duration {
	if !t.IsCompleted() {
		return 0
	}
	return t.DroppedOffAt.Sub(t.PickedUpAt)
}

func (t Trip) String() string {
	return fmt.Sprintf("Trip{id=%d, passenger=%s, pickup=%s, destination=%s}",
		t.ID, t.Passenger.Name, t.Pickup, t.Destination)
}
