package dispatch

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridedispatch/core/model"
)

func TestMetricsRegistration(t *testing.T) {
	ResetMetrics(nil)
	t.Cleanup(func() { ResetMetrics(nil) })
	reg := prometheus.NewRegistry()
	MustRegisterMetrics(reg)
	// touch metrics so they are exported
	tripsScheduled.WithLabelValues("small").Inc()
	tripsCompleted.WithLabelValues("small").Inc()
	vehiclesAvailable.WithLabelValues("test").Set(1)
	faresLost.Inc()
	scheduleLatency.Observe(0.001)
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, mf := range mfs {
		names[*mf.Name] = true
	}
	expected := []string{
		"trips_scheduled_total",
		"fares_lost_total",
		"trips_completed_total",
		"vehicles_available",
		"dispatch_schedule_duration_seconds",
	}
	for _, n := range expected {
		if !names[n] {
			t.Errorf("metric %s not registered", n)
		}
	}
}

func TestCompanyUpdatesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	ResetMetrics(reg)
	t.Cleanup(func() { ResetMetrics(nil) })

	c, ids := newTestCompany(t, model.ClassSmall)
	require.True(t, c.ScheduleVehicle(passenger(t, 1, 2), loc(t, 0, 0), loc(t, 1, 1)))
	assert.False(t, c.ScheduleVehicle(passenger(t, 2, 2), loc(t, 0, 0), loc(t, 1, 1)))
	assert.Equal(t, 0.0, testutil.ToFloat64(vehiclesAvailable.WithLabelValues("test")))
	c.NotifyArrivedAtPickup(ids[0])
	c.NotifyDroppedOff(ids[0])

	assert.Equal(t, 1.0, testutil.ToFloat64(tripsScheduled.WithLabelValues("small")))
	assert.Equal(t, 1.0, testutil.ToFloat64(faresLost))
	assert.Equal(t, 1.0, testutil.ToFloat64(tripsCompleted.WithLabelValues("small")))
	assert.Equal(t, 1.0, testutil.ToFloat64(vehiclesAvailable.WithLabelValues("test")))
}
