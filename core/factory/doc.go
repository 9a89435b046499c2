// Package factory provides a small generic registry used to instantiate modules
// from configuration. Modules are defined by a type string and a map of raw
// settings. Factories decode the settings into typed structs and return the
// concrete implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[dispatch.VehicleMatcher]()
//	reg.Register("nearest", func(conf map[string]any) (dispatch.VehicleMatcher, error) {
//	    return dispatch.NearestMatcher{}, nil
//	})
//	m, err := reg.Create(factory.ModuleConfig{Type: "nearest"})
package factory
