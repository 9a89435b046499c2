package dispatch

import "errors"

var (
	// ErrDuplicateVehicle is returned when a vehicle id or plate is already in the fleet.
	ErrDuplicateVehicle = errors.New("duplicate vehicle")
	// ErrUnknownVehicle is returned by fleet management calls for ids not in the fleet.
	ErrUnknownVehicle = errors.New("unknown vehicle")
)
