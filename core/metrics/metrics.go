package metrics

import (
	"time"

	"github.com/kilianp07/ridedispatch/core/model"
)

// Outcome labels used for trip records.
const (
	OutcomeScheduled = "scheduled"
	OutcomeLost      = "lost"
	OutcomePickedUp  = "picked_up"
	OutcomeCompleted = "completed"
)

// TripOutcome represents one step of a trip to be recorded.
type TripOutcome struct {
	TripID      model.TripID
	VehicleID   model.VehicleID
	PassengerID model.PassengerID
	Class       model.CapacityClass
	GroupSize   int
	Outcome     string
	Distance    float64
	WaitTime    time.Duration
	RideTime    time.Duration
	Time        time.Time
}

// MetricsSink records trip outcomes for observability purposes.
type MetricsSink interface {
	RecordTripOutcome(rec TripOutcome) error
}

// VehicleStatusEvent captures a vehicle status transition.
type VehicleStatusEvent struct {
	VehicleID model.VehicleID
	Class     model.CapacityClass
	From      model.VehicleStatus
	To        model.VehicleStatus
	Time      time.Time
}

// VehicleStatusRecorder records vehicle status transitions.
type VehicleStatusRecorder interface {
	RecordVehicleStatus(ev VehicleStatusEvent) error
}

// FleetState is a point-in-time snapshot of the dispatcher counters.
type FleetState struct {
	Vehicles       int
	Available      int
	Maintenance    int
	ActiveTrips    int
	CompletedTrips int
	LostFares      int
	Time           time.Time
}

// FleetStateRecorder records fleet snapshots.
type FleetStateRecorder interface {
	RecordFleetState(st FleetState) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordTripOutcome(TripOutcome) error           { return nil }
func (NopSink) RecordVehicleStatus(VehicleStatusEvent) error { return nil }
func (NopSink) RecordFleetState(FleetState) error            { return nil }
