package simulator

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/kilianp07/ridedispatch/core/idgen"
	"github.com/kilianp07/ridedispatch/core/model"
)

// Scheduler is the only dispatcher operation a request source uses.
type Scheduler interface {
	ScheduleVehicle(p model.Passenger, pickup, dest model.Location) bool
}

var (
	passengerNames    = []string{"John Doe", "Jane Smith", "Alice Johnson", "Bob Wilson", "Carol Brown"}
	passengerContacts = []string{"+256701234567", "+256702345678", "+256703456789", "+256704567890", "+256705678901"}
)

// PassengerSource generates random ride requests for a scheduler. Several
// sources may share one scheduler and one id generator.
type PassengerSource struct {
	name  string
	sched Scheduler
	ids   *idgen.Generator
	cfg   Config

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPassengerSource creates a source drawing from a generator seeded with
// seed. cfg is completed with defaults and rejected when invalid.
func NewPassengerSource(name string, sched Scheduler, ids *idgen.Generator, cfg Config, seed int64) (*PassengerSource, error) {
	if sched == nil {
		return nil, errors.New("source " + name + ": scheduler is required")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("source %s: %w", name, err)
	}
	if ids == nil {
		ids = idgen.New()
	}
	return &PassengerSource{
		name:  name,
		sched: sched,
		ids:   ids,
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(seed)),
	}, nil
}

// Name identifies the source in reports.
func (s *PassengerSource) Name() string { return s.name }

// RequestPickup builds one random passenger and trip and asks the scheduler
// for a vehicle. The scheduler's answer is returned unchanged; a request
// that cannot be built is not sent and reports false.
func (s *PassengerSource) RequestPickup() bool {
	ok, _ := s.Request()
	return ok
}

// Request is RequestPickup with the build error exposed.
func (s *PassengerSource) Request() (bool, error) {
	p, pickup, dest, err := s.next()
	if err != nil {
		return false, fmt.Errorf("source %s: %w", s.name, err)
	}
	return s.sched.ScheduleVehicle(p, pickup, dest), nil
}

func (s *PassengerSource) next() (model.Passenger, model.Location, model.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := passengerNames[s.rng.Intn(len(passengerNames))]
	contact := passengerContacts[s.rng.Intn(len(passengerContacts))]
	size := 1 + s.rng.Intn(s.cfg.MaxGroupSize)
	p, err := model.NewPassenger(s.ids.NextPassenger(), name, contact, size)
	if err != nil {
		return model.Passenger{}, model.Location{}, model.Location{}, err
	}
	pickup, err := s.location()
	if err != nil {
		return model.Passenger{}, model.Location{}, model.Location{}, err
	}
	dest, err := s.location()
	if err != nil {
		return model.Passenger{}, model.Location{}, model.Location{}, err
	}
	return p, pickup, dest, nil
}

func (s *PassengerSource) location() (model.Location, error) {
	span := s.cfg.MaxCoord - s.cfg.MinCoord + 1
	return model.NewLocation(s.cfg.MinCoord+s.rng.Intn(span), s.cfg.MinCoord+s.rng.Intn(span), "")
}
