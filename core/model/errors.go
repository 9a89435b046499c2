package model

import "errors"

var (
	// ErrInvalidCoordinate is returned when a location has a negative coordinate.
	ErrInvalidCoordinate = errors.New("coordinate must not be negative")
	// ErrInvalidGroupSize is returned when a passenger party is empty.
	ErrInvalidGroupSize = errors.New("group size must be at least 1")
	// ErrInvalidID is returned for non-positive entity identifiers.
	ErrInvalidID = errors.New("id must be positive")
	// ErrInvalidVehicle is returned when vehicle attributes are missing or unknown.
	ErrInvalidVehicle = errors.New("invalid vehicle")
	// ErrInvalidTransition is returned when a status change is not allowed
	// from the vehicle's current status.
	ErrInvalidTransition = errors.New("invalid status transition")
)
