package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/kilianp07/ridedispatch/config"
	"github.com/kilianp07/ridedispatch/core/dispatch"
	"github.com/kilianp07/ridedispatch/core/dispatch/journal"
	"github.com/kilianp07/ridedispatch/core/events"
	"github.com/kilianp07/ridedispatch/core/kpi"
	coremetrics "github.com/kilianp07/ridedispatch/core/metrics"
	"github.com/kilianp07/ridedispatch/core/monitoring"
	infrakpi "github.com/kilianp07/ridedispatch/infra/kpi"
	"github.com/kilianp07/ridedispatch/infra/logger"
	"github.com/kilianp07/ridedispatch/infra/metrics"
	"github.com/kilianp07/ridedispatch/infra/mqtt"
	"github.com/kilianp07/ridedispatch/internal/eventbus"
	"github.com/kilianp07/ridedispatch/jobs/tripkpi"
	"github.com/kilianp07/ridedispatch/simulator"
)

// busBuffer holds a full burst of simulation events per subscriber.
const busBuffer = 4096

// Service wires the company to its metrics, journal and driver bridge and
// drives it with the request simulation.
type Service struct {
	Company *dispatch.Company
	Runner  *simulator.Runner

	cfg    *config.Config
	bus    *eventbus.Bus[events.Event]
	sink   coremetrics.MetricsSink
	store  journal.Store
	kpi    kpi.Store
	bridge *mqtt.PahoClient
	log    logger.Logger
}

// New builds the company and its fleet from cfg and opens the configured
// adapters.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	bus := eventbus.NewWithBuffer[events.Event](busBuffer)

	company, err := dispatch.NewCompanyFromConfig(cfg.Company,
		dispatch.WithBus(bus),
		dispatch.WithLogger(logger.New("company")),
	)
	if err != nil {
		return nil, err
	}
	vehicles, err := cfg.Fleet.Build()
	if err != nil {
		return nil, fmt.Errorf("fleet: %w", err)
	}
	for _, v := range vehicles {
		if _, err := company.AddVehicle(v); err != nil {
			return nil, fmt.Errorf("fleet: %w", err)
		}
	}

	runner, err := simulator.NewRunner(company, cfg.Source, logger.New("simulator"))
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	svc := &Service{
		Company: company,
		Runner:  runner,
		cfg:     cfg,
		bus:     bus,
		sink:    sink,
		log:     logg,
	}
	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg.Journal)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("journal: %w", err)
		}
		svc.store = store
	}
	if cfg.KPI.Enabled {
		store, err := infrakpi.Open(cfg.KPI)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("kpi: %w", err)
		}
		svc.kpi = store
	}
	if cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT, company)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.bridge = client
	}
	logg.Infow("service ready", map[string]any{
		"company":  company.Name(),
		"vehicles": len(vehicles),
		"journal":  cfg.Journal.Enabled,
		"kpi":      cfg.KPI.Enabled,
		"mqtt":     cfg.MQTT.Enabled,
	})
	return svc, nil
}

// FleetState adapts the company counters to the metrics snapshot.
func FleetState(c *dispatch.Company) metrics.FleetStateFunc {
	return func() coremetrics.FleetState {
		st := c.Stats()
		return coremetrics.FleetState{
			Vehicles:       st.Vehicles,
			Available:      st.Available,
			Maintenance:    st.Maintenance,
			ActiveTrips:    st.ActiveTrips,
			CompletedTrips: st.CompletedTrips,
			LostFares:      st.LostFares,
		}
	}
}

// Run starts the event consumers, runs the simulation and waits for the
// consumers to drain. When hold is set the metrics endpoint and the driver
// bridge keep serving until ctx is canceled. The bus is closed on return,
// so Run is called once per Service.
func (s *Service) Run(ctx context.Context, hold bool) (simulator.Report, error) {
	consumerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()

	done := []<-chan struct{}{
		metrics.StartEventCollector(consumerCtx, s.bus, s.sink, FleetState(s.Company), logger.New("collector")),
		journal.StartRecorder(consumerCtx, s.bus, s.store, logger.New("journal")),
	}
	if s.bridge != nil {
		done = append(done, mqtt.StartAssignmentPublisher(consumerCtx, s.bus, s.bridge))
	}

	serverCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()
	serverErr := make(chan error, 1)
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() { serverErr <- metrics.StartPromServer(serverCtx, addr) }()
	}

	rep, err := s.Runner.Run(ctx)
	if err == nil && hold {
		s.log.Infof("simulation finished, serving until interrupted")
		select {
		case <-ctx.Done():
		case err = <-serverErr:
		}
	}

	s.bus.Close()
	for _, d := range done {
		<-d
	}
	if n := s.bus.Dropped(); n > 0 {
		s.log.Warnf("%d events dropped by slow consumers", n)
	}
	s.recordKPIs()
	return rep, err
}

// KPIs returns the KPI store, nil when disabled.
func (s *Service) KPIs() kpi.Store { return s.kpi }

func (s *Service) recordKPIs() {
	if s.kpi == nil {
		return
	}
	n, err := tripkpi.Backfill(s.kpi, s.Company.Fleet(), s.Company.CompletedTrips())
	if err != nil {
		monitoring.CaptureException(err, map[string]string{"module": "kpi"})
		s.log.Errorf("kpi backfill after %d trips: %v", n, err)
		return
	}
	s.log.Infof("recorded %d completed trips in kpi store", n)
}

// Close releases the adapters.
func (s *Service) Close() error {
	var errs []error
	if s.bridge != nil {
		s.bridge.Disconnect()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("journal close: %w", err))
		}
	}
	if c, ok := s.kpi.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("kpi close: %w", err))
		}
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return errors.Join(errs...)
}
