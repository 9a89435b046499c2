package metrics

import "errors"

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordTripOutcome forwards the record to all sinks. Every sink is tried;
// the returned error joins the individual failures.
func (m *MultiSink) RecordTripOutcome(rec TripOutcome) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordTripOutcome(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordVehicleStatus forwards status transitions to sinks that support them.
func (m *MultiSink) RecordVehicleStatus(ev VehicleStatusEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(VehicleStatusRecorder); ok {
			if err := rec.RecordVehicleStatus(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecordFleetState forwards fleet snapshots to sinks that support them.
func (m *MultiSink) RecordFleetState(st FleetState) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(FleetStateRecorder); ok {
			if err := rec.RecordFleetState(st); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes the sinks that hold resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
