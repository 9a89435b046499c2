package model

import (
	"fmt"
	"math"
)

// Location is an immutable point on the simulation grid. Equality ignores
// the label.
type Location struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Label string `json:"label,omitempty"`
}

// NewLocation validates the coordinates and returns a Location. An empty label
// is replaced by a generated one.
func NewLocation(x, y int, label string) (Location, error) {
	if x < 0 || y < 0 {
		return Location{}, fmt.Errorf("location (%d,%d): %w", x, y, ErrInvalidCoordinate)
	}
	if label == "" {
		label = fmt.Sprintf("Location(%d,%d)", x, y)
	}
	return Location{X: x, Y: y, Label: label}, nil
}

// DistanceTo returns the Euclidean distance between both points.
func (l Location) DistanceTo(other Location) float64 {
	return math.Hypot(float64(l.X-other.X), float64(l.Y-other.Y))
}

// Equal reports whether both locations share the same coordinates.
func (l Location) Equal(other Location) bool {
	return l.X == other.X && l.Y == other.Y
}

func (l Location) String() string {
	return fmt.Sprintf("%s (%d,%d)", l.Label, l.X, l.Y)
}
