package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridedispatch/core/events"
	"github.com/kilianp07/ridedispatch/core/idgen"
	"github.com/kilianp07/ridedispatch/core/model"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time {
	f.now = f.now.Add(time.Minute)
	return f.now
}

func newTestCompany(t *testing.T, classes ...model.CapacityClass) (*Company, []model.VehicleID) {
	t.Helper()
	clk := &fakeClock{now: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}
	c := NewCompany("test", WithClock(clk.Now))
	ids := make([]model.VehicleID, 0, len(classes))
	for i, cl := range classes {
		loc, err := model.NewLocation(i, i, "")
		require.NoError(t, err)
		v, err := model.NewVehicle(plate(i), cl, "driver", loc)
		require.NoError(t, err)
		id, err := c.AddVehicle(v)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return c, ids
}

func plate(i int) string { return "AB-" + string(rune('A'+i)) + "-01" }

func passenger(t *testing.T, id, size int) model.Passenger {
	t.Helper()
	p, err := model.NewPassenger(model.PassengerID(id), "Ann", "ann@example.com", size)
	require.NoError(t, err)
	return p
}

func loc(t *testing.T, x, y int) model.Location {
	t.Helper()
	l, err := model.NewLocation(x, y, "")
	require.NoError(t, err)
	return l
}

func TestSchedule_EmptyFleetLosesFare(t *testing.T) {
	c, _ := newTestCompany(t)
	ok := c.ScheduleVehicle(passenger(t, 1, 1), loc(t, 0, 0), loc(t, 5, 5))
	assert.False(t, ok)
	assert.Equal(t, 1, c.TotalLostFares())
	assert.Equal(t, 0, c.ActiveTripsCount())
	lost := c.LostFares()
	require.Len(t, lost, 1)
	assert.True(t, lost[0].IsLost())
}

func TestSchedule_AssignsSmallVehicle(t *testing.T) {
	c, ids := newTestCompany(t, model.ClassSmall)
	ok := c.ScheduleVehicle(passenger(t, 1, 2), loc(t, 1, 1), loc(t, 10, 10))
	require.True(t, ok)
	v, found := c.Vehicle(ids[0])
	require.True(t, found)
	assert.Equal(t, model.StatusEnRouteToPickup, v.Status)
	assert.Equal(t, 1, c.ActiveTripsCount())
	trips := c.ActiveTrips()
	require.Len(t, trips, 1)
	assert.Equal(t, ids[0], trips[0].Vehicle)
	assert.Equal(t, trips[0].ID, v.CurrentTrip)
}

func TestSchedule_GroupTooLargeForFleet(t *testing.T) {
	c, ids := newTestCompany(t, model.ClassSmall)
	ok := c.ScheduleVehicle(passenger(t, 1, 5), loc(t, 1, 1), loc(t, 10, 10))
	assert.False(t, ok)
	assert.Equal(t, 1, c.TotalLostFares())
	v, _ := c.Vehicle(ids[0])
	assert.True(t, v.IsAvailable())
}

func TestSchedule_FullLifecycle(t *testing.T) {
	c, ids := newTestCompany(t, model.ClassSmall)
	dest := loc(t, 10, 12)
	require.True(t, c.ScheduleVehicle(passenger(t, 1, 2), loc(t, 1, 1), dest))

	c.NotifyArrivedAtPickup(ids[0])
	c.NotifyDroppedOff(ids[0])

	assert.Equal(t, 0, c.ActiveTripsCount())
	assert.Equal(t, 1, c.TotalCompletedTrips())
	v, _ := c.Vehicle(ids[0])
	assert.Equal(t, model.StatusAvailable, v.Status)
	assert.True(t, v.Location.Equal(dest))
	assert.False(t, v.HasTrip())

	done := c.CompletedTrips()
	require.Len(t, done, 1)
	assert.True(t, done[0].IsPickedUp())
	assert.True(t, done[0].IsCompleted())
	assert.True(t, done[0].DroppedOffAt.After(done[0].PickedUpAt))
	assert.True(t, done[0].PickedUpAt.After(done[0].RequestedAt))
}

func TestSchedule_FirstFitNotBestFit(t *testing.T) {
	c, ids := newTestCompany(t, model.ClassSmall, model.ClassLarge)
	require.True(t, c.ScheduleVehicle(passenger(t, 1, 2), loc(t, 0, 0), loc(t, 1, 1)))
	require.True(t, c.ScheduleVehicle(passenger(t, 2, 10), loc(t, 0, 0), loc(t, 1, 1)))
	trips := c.ActiveTrips()
	require.Len(t, trips, 2)
	assert.Equal(t, ids[0], trips[0].Vehicle)
	assert.Equal(t, ids[1], trips[1].Vehicle)
}

func TestSchedule_SmallPartyTakesLargeWhenFirst(t *testing.T) {
	c, ids := newTestCompany(t, model.ClassLarge, model.ClassSmall)
	require.True(t, c.ScheduleVehicle(passenger(t, 1, 1), loc(t, 0, 0), loc(t, 1, 1)))
	assert.Equal(t, ids[0], c.ActiveTrips()[0].Vehicle)
	// the large vehicle is busy so the next party of ten is lost
	assert.False(t, c.ScheduleVehicle(passenger(t, 2, 10), loc(t, 0, 0), loc(t, 1, 1)))
}

func TestSchedule_BusyVehicleSkipped(t *testing.T) {
	c, ids := newTestCompany(t, model.ClassSmall, model.ClassSmall)
	require.True(t, c.ScheduleVehicle(passenger(t, 1, 1), loc(t, 0, 0), loc(t, 1, 1)))
	require.True(t, c.ScheduleVehicle(passenger(t, 2, 1), loc(t, 0, 0), loc(t, 1, 1)))
	assert.False(t, c.ScheduleVehicle(passenger(t, 3, 1), loc(t, 0, 0), loc(t, 1, 1)))
	trips := c.ActiveTrips()
	assert.Equal(t, ids[0], trips[0].Vehicle)
	assert.Equal(t, ids[1], trips[1].Vehicle)
	assert.Empty(t, c.AvailableVehicles())
}

func TestSchedule_MaintenanceVehicleSkipped(t *testing.T) {
	c, ids := newTestCompany(t, model.ClassSmall, model.ClassSmall)
	require.NoError(t, c.SetMaintenance(ids[0], true))
	require.True(t, c.ScheduleVehicle(passenger(t, 1, 1), loc(t, 0, 0), loc(t, 1, 1)))
	assert.Equal(t, ids[1], c.ActiveTrips()[0].Vehicle)
}

func TestAddVehicle_AssignsAndRejects(t *testing.T) {
	c := NewCompany("test")
	v, err := model.NewVehicle("XY-1", model.ClassSmall, "Bob", model.Location{})
	require.NoError(t, err)

	id, err := c.AddVehicle(v)
	require.NoError(t, err)
	assert.Equal(t, model.VehicleID(1), id)

	_, err = c.AddVehicle(v)
	assert.ErrorIs(t, err, ErrDuplicateVehicle)

	v2, _ := model.NewVehicle("XY-2", model.ClassLarge, "Eve", model.Location{})
	v2.ID = id
	_, err = c.AddVehicle(v2)
	assert.ErrorIs(t, err, ErrDuplicateVehicle)

	v2.ID = 7
	id2, err := c.AddVehicle(v2)
	require.NoError(t, err)
	assert.Equal(t, model.VehicleID(7), id2)

	v3, _ := model.NewVehicle("XY-3", model.ClassSmall, "Max", model.Location{})
	id3, err := c.AddVehicle(v3)
	require.NoError(t, err)
	assert.Equal(t, model.VehicleID(8), id3)

	_, err = c.AddVehicle(model.Vehicle{Plate: "", Class: model.ClassSmall})
	assert.ErrorIs(t, err, model.ErrInvalidVehicle)

	fleet := c.Fleet()
	require.Len(t, fleet, 3)
	assert.Equal(t, []model.VehicleID{1, 7, 8}, []model.VehicleID{fleet[0].ID, fleet[1].ID, fleet[2].ID})
}

func TestAddVehicle_ResetsStatus(t *testing.T) {
	c := NewCompany("test")
	v, _ := model.NewVehicle("XY-1", model.ClassSmall, "Bob", model.Location{})
	v.Status = model.StatusTransporting
	v.CurrentTrip = 9
	id, err := c.AddVehicle(v)
	require.NoError(t, err)
	got, _ := c.Vehicle(id)
	assert.True(t, got.IsAvailable())
	assert.False(t, got.HasTrip())
}

func TestSharedIDGenerator(t *testing.T) {
	ids := idgen.New()
	a := NewCompany("a", WithIDGenerator(ids))
	b := NewCompany("b", WithIDGenerator(ids))
	a.ScheduleVehicle(passenger(t, 1, 1), loc(t, 0, 0), loc(t, 1, 1))
	b.ScheduleVehicle(passenger(t, 2, 1), loc(t, 0, 0), loc(t, 1, 1))
	assert.Equal(t, model.TripID(1), a.LostFares()[0].ID)
	assert.Equal(t, model.TripID(2), b.LostFares()[0].ID)
	assert.Same(t, ids, a.IDs())
}

func TestDefensiveCopies(t *testing.T) {
	c, ids := newTestCompany(t, model.ClassSmall)
	require.True(t, c.ScheduleVehicle(passenger(t, 1, 1), loc(t, 0, 0), loc(t, 1, 1)))

	fleet := c.Fleet()
	fleet[0].Status = model.StatusMaintenance
	trips := c.ActiveTrips()
	trips[0].Vehicle = 0

	v, _ := c.Vehicle(ids[0])
	assert.Equal(t, model.StatusEnRouteToPickup, v.Status)
	assert.Equal(t, ids[0], c.ActiveTrips()[0].Vehicle)
}

func TestStatsConsistent(t *testing.T) {
	c, ids := newTestCompany(t, model.ClassSmall, model.ClassSmall, model.ClassLarge)
	require.NoError(t, c.SetMaintenance(ids[2], true))
	c.ScheduleVehicle(passenger(t, 1, 2), loc(t, 0, 0), loc(t, 1, 1))
	c.ScheduleVehicle(passenger(t, 2, 8), loc(t, 0, 0), loc(t, 1, 1))
	c.NotifyArrivedAtPickup(ids[0])
	c.NotifyDroppedOff(ids[0])
	c.ScheduleVehicle(passenger(t, 3, 3), loc(t, 0, 0), loc(t, 1, 1))

	st := c.Stats()
	assert.Equal(t, Stats{Vehicles: 3, Available: 1, Busy: 1, Maintenance: 1, ActiveTrips: 1, CompletedTrips: 1, LostFares: 1}, st)
	assert.Equal(t, 3, st.Requests())
	assert.Equal(t, 2, st.Scheduled())
	assert.InDelta(t, 1.0/3.0, st.LostFareRate(), 1e-9)
	assert.Contains(t, c.String(), `name="test"`)
}

func TestEventsPublished(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()
	sub := bus.Subscribe()
	c := NewCompany("test", WithBus(bus))
	v, _ := model.NewVehicle("XY-1", model.ClassSmall, "Bob", model.Location{})
	id, err := c.AddVehicle(v)
	require.NoError(t, err)

	c.ScheduleVehicle(passenger(t, 1, 9), loc(t, 0, 0), loc(t, 1, 1))
	c.ScheduleVehicle(passenger(t, 2, 1), loc(t, 0, 0), loc(t, 1, 1))
	c.NotifyArrivedAtPickup(id)
	c.NotifyArrivedAtPickup(id)
	c.NotifyDroppedOff(id)

	var names []string
	for len(sub) > 0 {
		names = append(names, (<-sub).Name())
	}
	assert.Equal(t, []string{
		events.NameFareLost,
		events.NameVehicleStatusChanged,
		events.NameTripScheduled,
		events.NameVehicleStatusChanged,
		events.NamePassengerPickedUp,
		events.NameVehicleStatusChanged,
		events.NameTripCompleted,
	}, names)
}

func TestNewCompanyFromConfig(t *testing.T) {
	c, err := NewCompanyFromConfig(Config{Matcher: MatcherNearest})
	require.NoError(t, err)
	assert.Equal(t, DefaultName, c.Name())
	assert.IsType(t, NearestMatcher{}, c.matcher)

	_, err = NewCompanyFromConfig(Config{Name: "x", Matcher: "best_fit"})
	assert.Error(t, err)
}
