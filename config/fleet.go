package config

import (
	"fmt"

	"github.com/kilianp07/ridedispatch/core/dispatch"
	"github.com/kilianp07/ridedispatch/core/model"
)

// VehicleConfig describes one fleet unit. Class accepts small, large, taxi
// or shuttle.
type VehicleConfig struct {
	Plate  string `json:"plate"`
	Class  string `json:"class"`
	Driver string `json:"driver"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Label  string `json:"label"`
}

// FleetConfig lists the vehicles added to the company at startup.
type FleetConfig struct {
	Vehicles []VehicleConfig `json:"vehicles"`
}

// DemoFleet is used when no vehicle is configured.
var DemoFleet = []VehicleConfig{
	{Plate: "UAB-123A", Class: "taxi", Driver: "James Mukasa", X: 10, Y: 10},
	{Plate: "UAB-456B", Class: "shuttle", Driver: "Mary Nakato", X: 20, Y: 20},
	{Plate: "UAB-789C", Class: "taxi", Driver: "Peter Ssali", X: 30, Y: 30},
}

// SetDefaults installs the demo fleet when the list is empty.
func (c *FleetConfig) SetDefaults() {
	if len(c.Vehicles) == 0 {
		c.Vehicles = append([]VehicleConfig(nil), DemoFleet...)
	}
}

// Validate builds every vehicle and rejects duplicate plates.
func (c FleetConfig) Validate() error {
	_, err := c.Build()
	return err
}

// Build converts the configuration into vehicles without identifiers.
func (c FleetConfig) Build() ([]model.Vehicle, error) {
	out := make([]model.Vehicle, 0, len(c.Vehicles))
	plates := make(map[string]int, len(c.Vehicles))
	for i, vc := range c.Vehicles {
		if j, dup := plates[vc.Plate]; dup {
			return nil, fmt.Errorf("fleet.vehicles[%d] plate %q already used by vehicles[%d]: %w",
				i, vc.Plate, j, dispatch.ErrDuplicateVehicle)
		}
		plates[vc.Plate] = i
		class, err := model.ParseCapacityClass(vc.Class)
		if err != nil {
			return nil, fmt.Errorf("fleet.vehicles[%d]: %w", i, err)
		}
		loc, err := model.NewLocation(vc.X, vc.Y, vc.Label)
		if err != nil {
			return nil, fmt.Errorf("fleet.vehicles[%d]: %w", i, err)
		}
		v, err := model.NewVehicle(vc.Plate, class, vc.Driver, loc)
		if err != nil {
			return nil, fmt.Errorf("fleet.vehicles[%d]: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
