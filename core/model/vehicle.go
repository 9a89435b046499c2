package model

import (
	"fmt"
	"strings"
)

// VehicleID identifies a fleet unit. Zero means unset.
type VehicleID int

// CapacityClass is the fixed vehicle category of a fleet unit.
type CapacityClass int

const (
	ClassSmall CapacityClass = iota + 1
	ClassLarge
)

// Capacity returns the maximum party size the class can carry.
func (c CapacityClass) Capacity() int {
	switch c {
	case ClassSmall:
		return 4
	case ClassLarge:
		return 14
	default:
		return 0
	}
}

// String returns a human-readable representation of the class.
func (c CapacityClass) String() string {
	switch c {
	case ClassSmall:
		return "small"
	case ClassLarge:
		return "large"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c CapacityClass) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CapacityClass) UnmarshalText(b []byte) error {
	v, err := ParseCapacityClass(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseCapacityClass maps a configuration name to a class. The taxi and
// shuttle aliases are accepted.
func ParseCapacityClass(s string) (CapacityClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "small", "taxi":
		return ClassSmall, nil
	case "large", "shuttle":
		return ClassLarge, nil
	default:
		return 0, fmt.Errorf("capacity class %q: %w", s, ErrInvalidVehicle)
	}
}

// VehicleStatus is the lifecycle state of a vehicle.
type VehicleStatus int

const (
	StatusAvailable VehicleStatus = iota
	StatusEnRouteToPickup
	StatusPickingUp
	StatusTransporting
	StatusDroppingOff
	StatusMaintenance
)

// String returns the canonical status name.
func (s VehicleStatus) String() string {
	switch s {
	case StatusAvailable:
		return "AVAILABLE"
	case StatusEnRouteToPickup:
		return "EN_ROUTE_TO_PICKUP"
	case StatusPickingUp:
		return "PICKING_UP"
	case StatusTransporting:
		return "TRANSPORTING"
	case StatusDroppingOff:
		return "DROPPING_OFF"
	case StatusMaintenance:
		return "MAINTENANCE"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s VehicleStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *VehicleStatus) UnmarshalText(b []byte) error {
	v, err := ParseVehicleStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseVehicleStatus maps a canonical status name back to its value.
func ParseVehicleStatus(name string) (VehicleStatus, error) {
	for s := StatusAvailable; s <= StatusMaintenance; s++ {
		if strings.EqualFold(name, s.String()) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("vehicle status %q: %w", name, ErrInvalidVehicle)
}

// Busy reports whether the status belongs to the trip pipeline.
func (s VehicleStatus) Busy() bool {
	return s != StatusAvailable && s != StatusMaintenance
}

// Vehicle is one fleet unit. CurrentTrip is non-zero exactly when Status is
// busy. Vehicles are mutated through their transition methods only.
type Vehicle struct {
	ID          VehicleID     `json:"id"`
	Plate       string        `json:"plate"`
	Class       CapacityClass `json:"class"`
	Status      VehicleStatus `json:"status"`
	Location    Location      `json:"location"`
	DriverName  string        `json:"driver_name"`
	CurrentTrip TripID        `json:"current_trip,omitempty"`
}

// NewVehicle returns an available vehicle without an identifier. The
// dispatcher assigns one when the vehicle joins a fleet.
func NewVehicle(plate string, class CapacityClass, driver string, loc Location) (Vehicle, error) {
	if strings.TrimSpace(plate) == "" {
		return Vehicle{}, fmt.Errorf("plate is required: %w", ErrInvalidVehicle)
	}
	if class.Capacity() == 0 {
		return Vehicle{}, fmt.Errorf("capacity class %d: %w", class, ErrInvalidVehicle)
	}
	return Vehicle{Plate: plate, Class: class, DriverName: driver, Location: loc, Status: StatusAvailable}, nil
}

// IsAvailable reports whether the vehicle can accept a trip.
func (v Vehicle) IsAvailable() bool { return v.Status == StatusAvailable }

// CanAccommodate reports whether the party fits the vehicle's class.
func (v Vehicle) CanAccommodate(groupSize int) bool {
	return v.Class.Capacity() >= groupSize
}

// HasTrip reports whether a trip is bound to the vehicle.
func (v Vehicle) HasTrip() bool { return v.CurrentTrip != 0 }

// AssignTrip binds the trip and starts the pickup leg.
func (v *Vehicle) AssignTrip(id TripID) error {
	if v.Status != StatusAvailable {
		return v.transitionErr(StatusEnRouteToPickup)
	}
	v.CurrentTrip = id
	v.Status = StatusEnRouteToPickup
	return nil
}

// ArriveAtPickup marks the driver as loading the party.
func (v *Vehicle) ArriveAtPickup() error {
	if v.Status != StatusEnRouteToPickup {
		return v.transitionErr(StatusPickingUp)
	}
	v.Status = StatusPickingUp
	return nil
}

// DepartPickup starts the ride to the destination.
func (v *Vehicle) DepartPickup() error {
	if v.Status != StatusPickingUp {
		return v.transitionErr(StatusTransporting)
	}
	v.Status = StatusTransporting
	return nil
}

// ArriveAtDestination marks the party as being dropped off.
func (v *Vehicle) ArriveAtDestination() error {
	if v.Status != StatusTransporting {
		return v.transitionErr(StatusDroppingOff)
	}
	v.Status = StatusDroppingOff
	return nil
}

// CompleteTrip releases the trip and parks the vehicle at dest. Any status
// after the pickup is accepted.
func (v *Vehicle) CompleteTrip(dest Location) error {
	switch v.Status {
	case StatusPickingUp, StatusTransporting, StatusDroppingOff:
	default:
		return v.transitionErr(StatusAvailable)
	}
	v.Location = dest
	v.CurrentTrip = 0
	v.Status = StatusAvailable
	return nil
}

// EnterMaintenance takes an idle vehicle out of service.
func (v *Vehicle) EnterMaintenance() error {
	if v.Status != StatusAvailable {
		return v.transitionErr(StatusMaintenance)
	}
	v.Status = StatusMaintenance
	return nil
}

// LeaveMaintenance puts the vehicle back in service.
func (v *Vehicle) LeaveMaintenance() error {
	if v.Status != StatusMaintenance {
		return v.transitionErr(StatusAvailable)
	}
	v.Status = StatusAvailable
	return nil
}

func (v *Vehicle) transitionErr(to VehicleStatus) error {
	return fmt.Errorf("vehicle %d %s -> %s: %w", v.ID, v.Status, to, ErrInvalidTransition)
}

func (v Vehicle) String() string {
	return fmt.Sprintf("Vehicle{id=%d, plate=%q, class=%s, status=%s, driver=%q}",
		v.ID, v.Plate, v.Class, v.Status, v.DriverName)
}
