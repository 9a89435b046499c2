package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/ridedispatch/config"
	"github.com/kilianp07/ridedispatch/core/model"
)

// Point is an [x, y] pair.
type Point [2]int

// Location converts the point to a model location.
func (p Point) Location() (model.Location, error) {
	return model.NewLocation(p[0], p[1], "")
}

// RequestDef is one ScheduleVehicle call. Scheduled and Vehicle are checked
// when set.
type RequestDef struct {
	GroupSize   int    `yaml:"group_size"`
	Pickup      Point  `yaml:"pickup"`
	Destination Point  `yaml:"destination"`
	Scheduled   *bool  `yaml:"scheduled,omitempty"`
	Vehicle     string `yaml:"vehicle,omitempty"`
}

// NotifyDef is one driver notification addressed by plate. Unknown plates
// are sent to a vehicle id that does not exist.
type NotifyDef struct {
	Plate string `yaml:"plate"`
	Event string `yaml:"event"`
}

// MaintenanceDef switches a vehicle in or out of service.
type MaintenanceDef struct {
	Plate       string `yaml:"plate"`
	On          bool   `yaml:"on"`
	ExpectError bool   `yaml:"expect_error,omitempty"`
}

// Step holds exactly one action.
type Step struct {
	Request     *RequestDef     `yaml:"request,omitempty"`
	Notify      *NotifyDef      `yaml:"notify,omitempty"`
	Maintenance *MaintenanceDef `yaml:"maintenance,omitempty"`
}

// Expected describes the company state after the last step.
type Expected struct {
	Active    int               `yaml:"active"`
	Completed int               `yaml:"completed"`
	Lost      int               `yaml:"lost"`
	Statuses  map[string]string `yaml:"statuses,omitempty"`
	Locations map[string]Point  `yaml:"locations,omitempty"`
}

type Scenario struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description,omitempty"`
	Matcher     string                 `yaml:"matcher,omitempty"`
	Vehicles    []config.VehicleConfig `yaml:"vehicles"`
	Steps       []Step                 `yaml:"steps"`
	Expected    Expected               `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario name is required", path)
	}
	for i, s := range sc.Steps {
		n := 0
		if s.Request != nil {
			n++
		}
		if s.Notify != nil {
			n++
		}
		if s.Maintenance != nil {
			n++
		}
		if n != 1 {
			return nil, fmt.Errorf("%s: step %d must hold exactly one action", path, i+1)
		}
	}
	return &sc, nil
}
