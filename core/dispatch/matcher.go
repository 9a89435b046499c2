package dispatch

import (
	"github.com/kilianp07/ridedispatch/core/factory"
	"github.com/kilianp07/ridedispatch/core/model"
)

// Registered matcher names.
const (
	MatcherFirstFit = "first_fit"
	MatcherNearest  = "nearest"
)

// VehicleMatcher picks the vehicle serving a request. fleet is in insertion
// order. The returned index refers to fleet; ok is false when no vehicle
// qualifies.
type VehicleMatcher interface {
	Match(fleet []model.Vehicle, p model.Passenger, pickup model.Location) (idx int, ok bool)
}

// Eligible reports whether v may take a party of the given size.
func Eligible(v model.Vehicle, groupSize int) bool {
	return v.IsAvailable() && v.CanAccommodate(groupSize)
}

// FirstFitMatcher selects the first eligible vehicle in fleet order.
type FirstFitMatcher struct{}

func (FirstFitMatcher) Match(fleet []model.Vehicle, p model.Passenger, _ model.Location) (int, bool) {
	for i, v := range fleet {
		if Eligible(v, p.GroupSize) {
			return i, true
		}
	}
	return -1, false
}

// NearestMatcher selects the eligible vehicle closest to the pickup point.
// Ties go to the earlier vehicle in fleet order.
type NearestMatcher struct{}

func (NearestMatcher) Match(fleet []model.Vehicle, p model.Passenger, pickup model.Location) (int, bool) {
	best, bestDist := -1, 0.0
	for i, v := range fleet {
		if !Eligible(v, p.GroupSize) {
			continue
		}
		d := v.Location.DistanceTo(pickup)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}

var matcherRegistry = factory.NewRegistry[VehicleMatcher]()

func init() {
	_ = RegisterMatcher(MatcherFirstFit, func(map[string]any) (VehicleMatcher, error) { return FirstFitMatcher{}, nil })
	_ = RegisterMatcher(MatcherNearest, func(map[string]any) (VehicleMatcher, error) { return NearestMatcher{}, nil })
}

// RegisterMatcher adds a matcher factory identified by name.
func RegisterMatcher(name string, f factory.Factory[VehicleMatcher]) error {
	return matcherRegistry.Register(name, f)
}

// MatcherTypes lists the registered matcher names.
func MatcherTypes() []string { return matcherRegistry.Names() }

// NewMatcher builds the named matcher. An empty name selects first fit.
func NewMatcher(name string) (VehicleMatcher, error) {
	if name == "" {
		name = MatcherFirstFit
	}
	return matcherRegistry.Create(factory.ModuleConfig{Type: name})
}
