package scenarios

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kilianp07/ridedispatch/config"
	"github.com/kilianp07/ridedispatch/core/dispatch"
	"github.com/kilianp07/ridedispatch/core/model"
	"github.com/kilianp07/ridedispatch/infra/mqtt"
)

// Result is the outcome of one scenario run. Failures lists every
// expectation that did not hold.
type Result struct {
	Name     string
	Stats    dispatch.Stats
	Failures []string
}

// OK reports whether every expectation held.
func (r Result) OK() bool { return len(r.Failures) == 0 }

func (r *Result) failf(format string, args ...any) {
	r.Failures = append(r.Failures, fmt.Sprintf(format, args...))
}

// Run plays the scenario against a fresh company. An error means the
// scenario itself is malformed.
func Run(sc *Scenario, opts ...dispatch.Option) (Result, error) {
	res := Result{Name: sc.Name}
	company, err := dispatch.NewCompanyFromConfig(dispatch.Config{Name: sc.Name, Matcher: sc.Matcher}, opts...)
	if err != nil {
		return res, err
	}
	vehicles, err := config.FleetConfig{Vehicles: sc.Vehicles}.Build()
	if err != nil {
		return res, err
	}
	plates := make(map[string]model.VehicleID, len(vehicles))
	for _, v := range vehicles {
		id, err := company.AddVehicle(v)
		if err != nil {
			return res, err
		}
		plates[v.Plate] = id
	}
	// unknown plates address an id no vehicle holds
	idOf := func(plate string) model.VehicleID {
		if id, ok := plates[plate]; ok {
			return id
		}
		return model.VehicleID(len(plates) + 1000)
	}

	for i, step := range sc.Steps {
		n := i + 1
		switch {
		case step.Request != nil:
			if err := runRequest(company, step.Request, plates, n, &res); err != nil {
				return res, err
			}
		case step.Notify != nil:
			notify, ok := notifications(company)[step.Notify.Event]
			if !ok {
				return res, fmt.Errorf("step %d: unknown event %q", n, step.Notify.Event)
			}
			notify(idOf(step.Notify.Plate))
		case step.Maintenance != nil:
			m := step.Maintenance
			err := company.SetMaintenance(idOf(m.Plate), m.On)
			if m.ExpectError && err == nil {
				res.failf("step %d: maintenance on %s succeeded, want error", n, m.Plate)
			}
			if !m.ExpectError && err != nil {
				res.failf("step %d: maintenance on %s: %v", n, m.Plate, err)
			}
		}
	}

	res.Stats = company.Stats()
	checkExpected(company, sc.Expected, plates, &res)
	return res, nil
}

func runRequest(c *dispatch.Company, r *RequestDef, plates map[string]model.VehicleID, n int, res *Result) error {
	p, err := model.NewPassenger(c.IDs().NextPassenger(), fmt.Sprintf("passenger %d", n), "", r.GroupSize)
	if err != nil {
		return fmt.Errorf("step %d: %w", n, err)
	}
	pickup, err := r.Pickup.Location()
	if err != nil {
		return fmt.Errorf("step %d: %w", n, err)
	}
	dest, err := r.Destination.Location()
	if err != nil {
		return fmt.Errorf("step %d: %w", n, err)
	}
	before := len(c.ActiveTrips())
	ok := c.ScheduleVehicle(p, pickup, dest)
	if r.Scheduled != nil && ok != *r.Scheduled {
		res.failf("step %d: scheduled = %t, want %t", n, ok, *r.Scheduled)
	}
	if r.Vehicle == "" {
		return nil
	}
	want, known := plates[r.Vehicle]
	if !known {
		return fmt.Errorf("step %d: unknown plate %q", n, r.Vehicle)
	}
	active := c.ActiveTrips()
	if !ok || len(active) == before {
		res.failf("step %d: no trip assigned, want %s", n, r.Vehicle)
		return nil
	}
	if got := active[len(active)-1].Vehicle; got != want {
		res.failf("step %d: assigned vehicle %d, want %s (%d)", n, got, r.Vehicle, want)
	}
	return nil
}

func notifications(c *dispatch.Company) map[string]func(model.VehicleID) {
	return map[string]func(model.VehicleID){
		mqtt.EventArrivedAtPickup:      c.NotifyArrivedAtPickup,
		mqtt.EventDepartedPickup:       c.NotifyDepartedPickup,
		mqtt.EventArrivedAtDestination: c.NotifyArrivedAtDestination,
		mqtt.EventDroppedOff:           c.NotifyDroppedOff,
	}
}

func checkExpected(c *dispatch.Company, exp Expected, plates map[string]model.VehicleID, res *Result) {
	st := res.Stats
	if st.ActiveTrips != exp.Active {
		res.failf("active trips = %d, want %d", st.ActiveTrips, exp.Active)
	}
	if st.CompletedTrips != exp.Completed {
		res.failf("completed trips = %d, want %d", st.CompletedTrips, exp.Completed)
	}
	if st.LostFares != exp.Lost {
		res.failf("lost fares = %d, want %d", st.LostFares, exp.Lost)
	}
	for _, plate := range sortedKeys(exp.Statuses) {
		v, ok := c.Vehicle(plates[plate])
		if !ok {
			res.failf("status of unknown vehicle %s", plate)
			continue
		}
		want, err := model.ParseVehicleStatus(exp.Statuses[plate])
		if err != nil {
			res.failf("vehicle %s: %v", plate, err)
			continue
		}
		if v.Status != want {
			res.failf("vehicle %s status = %s, want %s", plate, v.Status, want)
		}
	}
	for _, plate := range sortedKeys(exp.Locations) {
		v, ok := c.Vehicle(plates[plate])
		p := exp.Locations[plate]
		if !ok || v.Location.X != p[0] || v.Location.Y != p[1] {
			res.failf("vehicle %s location = (%d,%d), want (%d,%d)", plate, v.Location.X, v.Location.Y, p[0], p[1])
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ErrFailed is returned by RunFiles when a scenario did not hold.
var ErrFailed = errors.New("scenario failed")

// RunFiles loads and runs every file, stopping at the first malformed one.
func RunFiles(paths []string) ([]Result, error) {
	var (
		out    []Result
		failed bool
	)
	for _, p := range paths {
		sc, err := Load(p)
		if err != nil {
			return out, err
		}
		res, err := Run(sc)
		if err != nil {
			return out, fmt.Errorf("%s: %w", sc.Name, err)
		}
		failed = failed || !res.OK()
		out = append(out, res)
	}
	if failed {
		return out, ErrFailed
	}
	return out, nil
}
