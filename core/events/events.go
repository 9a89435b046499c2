package events

import (
	"time"

	"github.com/kilianp07/ridedispatch/core/model"
	"github.com/kilianp07/ridedispatch/internal/eventbus"
)

// Event is implemented by every dispatch event.
type Event interface {
	// Name is the stable identifier used in journals and metric labels.
	Name() string
	// Time is when the dispatcher applied the change.
	Time() time.Time
}

// Bus carries dispatch events.
type Bus = eventbus.EventBus[Event]

// NewBus returns the default in-process bus.
func NewBus() *eventbus.Bus[Event] { return eventbus.New[Event]() }

const (
	NameTripScheduled        = "trip_scheduled"
	NameFareLost             = "fare_lost"
	NamePassengerPickedUp    = "passenger_picked_up"
	NameTripCompleted        = "trip_completed"
	NameVehicleStatusChanged = "vehicle_status_changed"
)

// TripScheduled is published when a request is matched to a vehicle.
type TripScheduled struct {
	Trip    model.Trip
	Vehicle model.Vehicle
	At      time.Time
}

func (TripScheduled) Name() string      { return NameTripScheduled }
func (e TripScheduled) Time() time.Time { return e.At }

// FareLost is published when no eligible vehicle was found.
type FareLost struct {
	Trip model.Trip
	At   time.Time
}

func (FareLost) Name() string      { return NameFareLost }
func (e FareLost) Time() time.Time { return e.At }

// PassengerPickedUp is published on the first arrival notification of a trip.
type PassengerPickedUp struct {
	Trip    model.Trip
	Vehicle model.Vehicle
	At      time.Time
}

func (PassengerPickedUp) Name() string      { return NamePassengerPickedUp }
func (e PassengerPickedUp) Time() time.Time { return e.At }

// TripCompleted is published when a trip moves to the completed history.
type TripCompleted struct {
	Trip    model.Trip
	Vehicle model.Vehicle
	At      time.Time
}

func (TripCompleted) Name() string      { return NameTripCompleted }
func (e TripCompleted) Time() time.Time { return e.At }

// VehicleStatusChanged is published for every vehicle status transition.
type VehicleStatusChanged struct {
	VehicleID model.VehicleID
	Class     model.CapacityClass
	From      model.VehicleStatus
	To        model.VehicleStatus
	At        time.Time
}

func (VehicleStatusChanged) Name() string      { return NameVehicleStatusChanged }
func (e VehicleStatusChanged) Time() time.Time { return e.At }
