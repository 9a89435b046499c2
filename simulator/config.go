package simulator

import "fmt"

// Config holds parameters for request generation and the driver simulation.
type Config struct {
	MinCoord      int      `json:"min_coord"`
	MaxCoord      int      `json:"max_coord"`
	MaxGroupSize  int      `json:"max_group_size"`
	Seed          int64    `json:"seed"`
	Sources       []string `json:"sources"`
	Requests      int      `json:"requests"`
	Concurrent    bool     `json:"concurrent"`
	StepEvery     int      `json:"step_every"`
	DuplicateRate float64  `json:"duplicate_rate"`
	DrainSteps    int      `json:"drain_steps"`
}

// DefaultRequests is the request count used when the configuration does not
// set one. SetDefaults leaves Requests alone since zero is a valid count.
const DefaultRequests = 5

// SetDefaults fills empty fields. Coordinates default to the closed range
// [0,100] and group sizes to 1..6.
func (c *Config) SetDefaults() {
	if c.MaxCoord == 0 && c.MinCoord == 0 {
		c.MaxCoord = 100
	}
	if c.MaxGroupSize == 0 {
		c.MaxGroupSize = 6
	}
	if len(c.Sources) == 0 {
		c.Sources = []string{"hotel", "corporate"}
	}
}

// Validate checks ranges and rates.
func (c Config) Validate() error {
	if c.MinCoord < 0 || c.MaxCoord < c.MinCoord {
		return fmt.Errorf("source coordinate range [%d,%d] is invalid", c.MinCoord, c.MaxCoord)
	}
	if c.MaxGroupSize < 1 {
		return fmt.Errorf("source.max_group_size must be at least 1")
	}
	if c.Requests < 0 {
		return fmt.Errorf("source.requests must not be negative")
	}
	if c.StepEvery < 0 || c.DrainSteps < 0 {
		return fmt.Errorf("driver step settings must not be negative")
	}
	if c.DuplicateRate < 0 || c.DuplicateRate > 1 {
		return fmt.Errorf("source.duplicate_rate must be within [0,1]")
	}
	return nil
}
