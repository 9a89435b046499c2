package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	tripsScheduled    *prometheus.CounterVec
	faresLost         prometheus.Counter
	tripsCompleted    *prometheus.CounterVec
	vehiclesAvailable *prometheus.GaugeVec
	scheduleLatency   prometheus.Histogram
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Counter, *prometheus.CounterVec, *prometheus.GaugeVec, prometheus.Histogram) {
	sched := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trips_scheduled_total",
			Help: "Number of requests matched to a vehicle",
		},
		[]string{"class"},
	)
	lost := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fares_lost_total",
			Help: "Number of requests without an eligible vehicle",
		},
	)
	done := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trips_completed_total",
			Help: "Number of trips that reached drop-off",
		},
		[]string{"class"},
	)
	avail := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vehicles_available",
			Help: "Vehicles currently able to accept a trip",
		},
		[]string{"company"},
	)
	lat := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_schedule_duration_seconds",
			Help:    "Time spent matching a request to the fleet",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		},
	)
	return sched, lost, done, avail, lat
}

func init() {
	tripsScheduled, faresLost, tripsCompleted, vehiclesAvailable, scheduleLatency = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(tripsScheduled, faresLost, tripsCompleted, vehiclesAvailable, scheduleLatency)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	tripsScheduled, faresLost, tripsCompleted, vehiclesAvailable, scheduleLatency = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
