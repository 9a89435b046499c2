package dispatch

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kilianp07/ridedispatch/core/events"
	"github.com/kilianp07/ridedispatch/core/idgen"
	"github.com/kilianp07/ridedispatch/core/logger"
	"github.com/kilianp07/ridedispatch/core/model"
	infralogger "github.com/kilianp07/ridedispatch/infra/logger"
)

// Company owns a fleet and the trips it serves. Vehicles and trips live in
// id keyed arenas and refer to each other by id. Every trip id is in exactly
// one of the active, completed or lost collections.
type Company struct {
	name string

	mu        sync.Mutex
	pubMu     sync.Mutex
	order     []model.VehicleID
	vehicles  map[model.VehicleID]*model.Vehicle
	plates    map[string]model.VehicleID
	trips     map[model.TripID]*model.Trip
	active    []model.TripID
	completed []model.TripID
	lost      []model.TripID

	ids     *idgen.Generator
	clock   func() time.Time
	logger  logger.Logger
	bus     events.Bus
	matcher VehicleMatcher
}

// Option configures a Company.
type Option func(*Company)

// WithIDGenerator shares an id generator between companies or sources.
func WithIDGenerator(g *idgen.Generator) Option {
	return func(c *Company) {
		if g != nil {
			c.ids = g
		}
	}
}

// WithClock overrides the time source used for trip timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Company) {
		if now != nil {
			c.clock = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Company) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBus publishes dispatch events on b.
func WithBus(b events.Bus) Option {
	return func(c *Company) { c.bus = b }
}

// WithMatcher replaces the first-fit policy.
func WithMatcher(m VehicleMatcher) Option {
	return func(c *Company) {
		if m != nil {
			c.matcher = m
		}
	}
}

// NewCompany returns an empty company.
func NewCompany(name string, opts ...Option) *Company {
	c := &Company{
		name:     name,
		vehicles: make(map[model.VehicleID]*model.Vehicle),
		plates:   make(map[string]model.VehicleID),
		trips:    make(map[model.TripID]*model.Trip),
		ids:      idgen.New(),
		clock:    time.Now,
		logger:   infralogger.NopLogger{},
		matcher:  FirstFitMatcher{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewCompanyFromConfig builds a company using the configured matcher.
func NewCompanyFromConfig(cfg Config, opts ...Option) (*Company, error) {
	cfg.SetDefaults()
	m, err := NewMatcher(cfg.Matcher)
	if err != nil {
		return nil, fmt.Errorf("company %s: %w", cfg.Name, err)
	}
	return NewCompany(cfg.Name, append([]Option{WithMatcher(m)}, opts...)...), nil
}

// Name returns the company name.
func (c *Company) Name() string { return c.name }

// IDs returns the generator used for new entities.
func (c *Company) IDs() *idgen.Generator { return c.ids }

// AddVehicle appends v to the fleet. A zero id is replaced by a generated
// one. Duplicate ids and plates are rejected.
func (c *Company) AddVehicle(v model.Vehicle) (model.VehicleID, error) {
	if strings.TrimSpace(v.Plate) == "" || v.Class.Capacity() == 0 {
		return 0, fmt.Errorf("add vehicle %q: %w", v.Plate, model.ErrInvalidVehicle)
	}
	if v.ID < 0 {
		return 0, fmt.Errorf("add vehicle %q: %w", v.Plate, model.ErrInvalidID)
	}
	c.mu.Lock()
	if _, ok := c.plates[v.Plate]; ok {
		c.mu.Unlock()
		return 0, fmt.Errorf("plate %q: %w", v.Plate, ErrDuplicateVehicle)
	}
	if v.ID == 0 {
		v.ID = c.ids.NextVehicle()
		for c.vehicles[v.ID] != nil {
			v.ID = c.ids.NextVehicle()
		}
	} else {
		if _, ok := c.vehicles[v.ID]; ok {
			c.mu.Unlock()
			return 0, fmt.Errorf("vehicle %d: %w", v.ID, ErrDuplicateVehicle)
		}
		c.ids.ObserveVehicle(v.ID)
	}
	v.Status = model.StatusAvailable
	v.CurrentTrip = 0
	c.vehicles[v.ID] = &v
	c.plates[v.Plate] = v.ID
	c.order = append(c.order, v.ID)
	c.updateAvailableLocked()
	c.mu.Unlock()

	c.logger.Infow("vehicle added", map[string]any{
		"vehicle_id": int(v.ID),
		"plate":      v.Plate,
		"class":      v.Class.String(),
	})
	return v.ID, nil
}

// ScheduleVehicle matches the request against the fleet. It reports true
// when a vehicle was assigned; otherwise the request is recorded as a lost
// fare. Unmet demand is not retried.
func (c *Company) ScheduleVehicle(p model.Passenger, pickup, dest model.Location) bool {
	start := time.Now()
	c.mu.Lock()
	now := c.clock()
	trip := model.NewTrip(c.ids.NextTrip(), p, pickup, dest, now)

	fleet := c.snapshotLocked()
	idx, ok := c.matcher.Match(fleet, p, pickup)
	if ok && (idx < 0 || idx >= len(fleet) || !Eligible(fleet[idx], p.GroupSize)) {
		c.logger.Errorf("matcher returned ineligible vehicle index %d", idx)
		ok = false
	}
	var v *model.Vehicle
	var from model.VehicleStatus
	if ok {
		v = c.vehicles[fleet[idx].ID]
		from = v.Status
		if err := v.AssignTrip(trip.ID); err != nil {
			c.logger.Errorf("assign trip %d: %v", trip.ID, err)
			ok = false
		}
	}
	if !ok {
		c.trips[trip.ID] = &trip
		c.lost = append(c.lost, trip.ID)
		c.unlockAndPublish(events.FareLost{Trip: trip, At: now})
		scheduleLatency.Observe(time.Since(start).Seconds())
		faresLost.Inc()
		c.logger.Infow("fare lost", map[string]any{
			"trip_id":    int(trip.ID),
			"group_size": p.GroupSize,
		})
		return false
	}

	trip.Vehicle = v.ID
	c.trips[trip.ID] = &trip
	c.active = append(c.active, trip.ID)
	c.updateAvailableLocked()
	vCopy, tCopy := *v, trip
	c.unlockAndPublish(
		events.VehicleStatusChanged{VehicleID: vCopy.ID, Class: vCopy.Class, From: from, To: vCopy.Status, At: now},
		events.TripScheduled{Trip: tCopy, Vehicle: vCopy, At: now},
	)

	scheduleLatency.Observe(time.Since(start).Seconds())
	tripsScheduled.WithLabelValues(vCopy.Class.String()).Inc()
	c.logger.Infow("trip scheduled", map[string]any{
		"trip_id":    int(tCopy.ID),
		"vehicle_id": int(vCopy.ID),
		"group_size": p.GroupSize,
	})
	return true
}

// snapshotLocked copies the fleet in insertion order. c.mu must be held.
func (c *Company) snapshotLocked() []model.Vehicle {
	out := make([]model.Vehicle, len(c.order))
	for i, id := range c.order {
		out[i] = *c.vehicles[id]
	}
	return out
}

// updateAvailableLocked refreshes the availability gauge. c.mu must be held.
func (c *Company) updateAvailableLocked() {
	n := 0
	for _, v := range c.vehicles {
		if v.IsAvailable() {
			n++
		}
	}
	vehiclesAvailable.WithLabelValues(c.name).Set(float64(n))
}

// unlockAndPublish releases c.mu and publishes evs. pubMu is taken before
// c.mu is released, so events reach the bus in the order the state changed.
func (c *Company) unlockAndPublish(evs ...events.Event) {
	c.pubMu.Lock()
	c.mu.Unlock()
	defer c.pubMu.Unlock()
	c.publish(evs...)
}

func (c *Company) publish(evs ...events.Event) {
	if c.bus == nil {
		return
	}
	for _, e := range evs {
		c.bus.Publish(e)
	}
}

func (c *Company) String() string {
	st := c.Stats()
	return fmt.Sprintf("Company{name=%q, vehicles=%d, active=%d, completed=%d, lost=%d}",
		c.name, st.Vehicles, st.ActiveTrips, st.CompletedTrips, st.LostFares)
}
