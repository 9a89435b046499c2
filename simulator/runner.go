package simulator

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/ridedispatch/core/idgen"
	"github.com/kilianp07/ridedispatch/core/logger"
	infralogger "github.com/kilianp07/ridedispatch/infra/logger"
)

// Dispatcher is everything the runner drives and reports on.
type Dispatcher interface {
	Scheduler
	Fleet
	History
	IDs() *idgen.Generator
}

// Runner issues requests round-robin over its sources while the driver
// simulation advances busy vehicles.
type Runner struct {
	d       Dispatcher
	cfg     Config
	sources []*PassengerSource
	drivers *DriverSimulator
	log     logger.Logger

	mu    sync.Mutex
	stats map[string]SourceStats
}

// NewRunner builds one PassengerSource per configured source name. Sources
// share the dispatcher id generator and are seeded from cfg.Seed; a zero
// seed uses the current time. cfg.Requests is used as given.
func NewRunner(d Dispatcher, cfg Config, log logger.Logger) (*Runner, error) {
	if d == nil {
		return nil, errors.New("runner: dispatcher is required")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if log == nil {
		log = infralogger.NopLogger{}
	}
	r := &Runner{
		d:       d,
		cfg:     cfg,
		drivers: NewDriverSimulator(d, cfg.DuplicateRate, cfg.Seed),
		log:     log,
		stats:   make(map[string]SourceStats, len(cfg.Sources)),
	}
	for i, name := range cfg.Sources {
		src, err := NewPassengerSource(name, d, d.IDs(), cfg, cfg.Seed+int64(i)+1)
		if err != nil {
			return nil, err
		}
		r.sources = append(r.sources, src)
	}
	return r, nil
}

// Drivers exposes the driver simulation.
func (r *Runner) Drivers() *DriverSimulator { return r.drivers }

// Run issues cfg.Requests requests and returns the resulting report. A
// canceled context stops issuing requests and returns its error.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	var err error
	if r.cfg.Concurrent {
		err = r.runConcurrent(ctx)
	} else {
		err = r.runSequential(ctx)
	}
	if err != nil {
		return Report{}, err
	}
	if r.cfg.DrainSteps > 0 {
		steps := r.drivers.Drain(r.cfg.DrainSteps)
		r.log.Debugf("drained fleet in %d steps", steps)
	}
	return r.report(), nil
}

func (r *Runner) runSequential(ctx context.Context) error {
	for i := 0; i < r.cfg.Requests; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.request(r.sources[i%len(r.sources)], i); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runConcurrent(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for idx, src := range r.sources {
		idx, src := idx, src
		g.Go(func() error {
			for i := idx; i < r.cfg.Requests; i += len(r.sources) {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := r.request(src, i); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func (r *Runner) request(src *PassengerSource, i int) error {
	ok, err := src.Request()
	if err != nil {
		return err
	}
	r.mu.Lock()
	s := r.stats[src.Name()]
	s.Requests++
	if ok {
		s.Scheduled++
	}
	r.stats[src.Name()] = s
	r.mu.Unlock()
	r.log.Debugw("pickup requested", map[string]any{
		"source":    src.Name(),
		"request":   i + 1,
		"scheduled": ok,
	})
	if r.cfg.StepEvery > 0 && (i+1)%r.cfg.StepEvery == 0 {
		r.drivers.Step()
	}
	return nil
}

func (r *Runner) report() Report {
	rep := BuildReport(r.d)
	rep.Notifications, rep.Duplicates = r.drivers.Sent()
	r.mu.Lock()
	rep.Sources = make(map[string]SourceStats, len(r.stats))
	for k, v := range r.stats {
		rep.Sources[k] = v
	}
	r.mu.Unlock()
	return rep
}
