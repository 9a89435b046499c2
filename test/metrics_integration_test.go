package test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridedispatch/app"
	"github.com/kilianp07/ridedispatch/core/dispatch"
	"github.com/kilianp07/ridedispatch/core/events"
	"github.com/kilianp07/ridedispatch/infra/metrics"
	"github.com/kilianp07/ridedispatch/internal/eventbus"
	"github.com/kilianp07/ridedispatch/simulator"
	"github.com/kilianp07/ridedispatch/test/util"
)

func TestSimulationMetricsEndpoint(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	bus := eventbus.NewWithBuffer[events.Event](4096)
	company, err := util.DemoCompany(dispatch.WithBus(bus))
	require.NoError(t, err)
	collected := metrics.StartEventCollector(ctx, bus, sink, app.FleetState(company), nil)

	addr, err := util.FreeAddr()
	require.NoError(t, err)
	go func() { _ = metrics.StartPromServerWithGatherer(ctx, addr, reg) }()

	runner, err := simulator.NewRunner(company, simulator.Config{Seed: 5, Requests: 30, StepEvery: 1, DrainSteps: 10}, nil)
	require.NoError(t, err)
	rep, err := runner.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 30, rep.Requests)

	waitCtx, waitCancel := context.WithTimeout(ctx, util.MetricTimeout)
	defer waitCancel()
	url := "http://" + addr + "/metrics"
	require.NoError(t, util.WaitForMetric(waitCtx, url, `ridedispatch_trip_outcomes_total{class="large",outcome="scheduled"}`))
	require.NoError(t, util.WaitForMetric(waitCtx, url, `ridedispatch_fleet_state{counter="vehicles"} 3`))

	bus.Close()
	<-collected
}
