package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/ridedispatch/core/metrics"
	"github.com/kilianp07/ridedispatch/core/model"
)

// PromSink records trip outcomes, status transitions and fleet snapshots in
// Prometheus collectors.
type PromSink struct {
	outcomes    *prometheus.CounterVec
	wait        *prometheus.HistogramVec
	distance    *prometheus.HistogramVec
	transitions *prometheus.CounterVec
	fleet       *prometheus.GaugeVec
}

// NewPromSink registers the sink collectors on the default Prometheus
// registerer. The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	s, err := NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	var err error
	s := &PromSink{}
	if s.outcomes, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ridedispatch_trip_outcomes_total",
		Help: "Trip lifecycle steps by outcome and vehicle class",
	}, []string{"outcome", "class"})); err != nil {
		return nil, err
	}
	if s.wait, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ridedispatch_trip_wait_seconds",
		Help:    "Time between request and pickup",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"class"})); err != nil {
		return nil, err
	}
	if s.distance, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ridedispatch_trip_distance_units",
		Help:    "Straight-line distance of completed trips in grid units",
		Buckets: prometheus.LinearBuckets(10, 10, 14),
	}, []string{"class"})); err != nil {
		return nil, err
	}
	if s.transitions, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ridedispatch_vehicle_transitions_total",
		Help: "Vehicle status transitions",
	}, []string{"from", "to"})); err != nil {
		return nil, err
	}
	if s.fleet, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ridedispatch_fleet_state",
		Help: "Latest fleet snapshot by counter",
	}, []string{"counter"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func classLabel(c model.CapacityClass) string {
	if c.Capacity() == 0 {
		return "none"
	}
	return c.String()
}

// RecordTripOutcome increments the outcome counter and observes wait time
// on pickup and distance on completion.
func (s *PromSink) RecordTripOutcome(rec coremetrics.TripOutcome) error {
	class := classLabel(rec.Class)
	s.outcomes.WithLabelValues(rec.Outcome, class).Inc()
	switch rec.Outcome {
	case coremetrics.OutcomePickedUp:
		s.wait.WithLabelValues(class).Observe(rec.WaitTime.Seconds())
	case coremetrics.OutcomeCompleted:
		s.distance.WithLabelValues(class).Observe(rec.Distance)
	}
	return nil
}

// RecordVehicleStatus counts the transition.
func (s *PromSink) RecordVehicleStatus(ev coremetrics.VehicleStatusEvent) error {
	s.transitions.WithLabelValues(ev.From.String(), ev.To.String()).Inc()
	return nil
}

// RecordFleetState sets one gauge per counter.
func (s *PromSink) RecordFleetState(st coremetrics.FleetState) error {
	s.fleet.WithLabelValues("vehicles").Set(float64(st.Vehicles))
	s.fleet.WithLabelValues("available").Set(float64(st.Available))
	s.fleet.WithLabelValues("maintenance").Set(float64(st.Maintenance))
	s.fleet.WithLabelValues("active_trips").Set(float64(st.ActiveTrips))
	s.fleet.WithLabelValues("completed_trips").Set(float64(st.CompletedTrips))
	s.fleet.WithLabelValues("lost_fares").Set(float64(st.LostFares))
	return nil
}
