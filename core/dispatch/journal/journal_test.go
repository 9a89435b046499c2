package journal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridedispatch/core/events"
	"github.com/kilianp07/ridedispatch/core/model"
	"github.com/kilianp07/ridedispatch/core/monitoring"
	"github.com/kilianp07/ridedispatch/infra/logger"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func sampleRecords() []TripRecord {
	return []TripRecord{
		{Timestamp: t0, Event: events.NameTripScheduled, TripID: 1, VehicleID: 1, GroupSize: 2},
		{Timestamp: t0.Add(time.Minute), Event: events.NameFareLost, TripID: 2, GroupSize: 9},
		{Timestamp: t0.Add(2 * time.Minute), Event: events.NamePassengerPickedUp, TripID: 1, VehicleID: 1, GroupSize: 2},
		{Timestamp: t0.Add(3 * time.Minute), Event: events.NameTripCompleted, TripID: 1, VehicleID: 1, GroupSize: 2},
	}
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	for _, r := range sampleRecords() {
		require.NoError(t, store.Append(ctx, r))
	}

	all, err := store.Query(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, events.NameTripScheduled, all[0].Event)
	assert.True(t, all[0].Timestamp.Equal(t0))

	byVehicle, err := store.Query(ctx, Query{VehicleID: 1})
	require.NoError(t, err)
	assert.Len(t, byVehicle, 3)

	lost, err := store.Query(ctx, Query{Event: events.NameFareLost})
	require.NoError(t, err)
	require.Len(t, lost, 1)
	assert.Equal(t, model.TripID(2), lost[0].TripID)

	window, err := store.Query(ctx, Query{Start: t0.Add(time.Minute), End: t0.Add(2 * time.Minute)})
	require.NoError(t, err)
	assert.Len(t, window, 2)

	trip, err := store.Query(ctx, Query{TripID: 1, Event: events.NameTripCompleted})
	require.NoError(t, err)
	assert.Len(t, trip, 1)
}

func TestJSONLStore(t *testing.T) {
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "trips.jsonl"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	exerciseStore(t, store)
}

func TestRotatingJSONLStore(t *testing.T) {
	store, err := NewRotatingJSONLStore(filepath.Join(t.TempDir(), "nested", "trips.jsonl"), 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	exerciseStore(t, store)
}

func TestRotatingJSONLStore_Rotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trips.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 5, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	rec := TripRecord{Timestamp: t0, Event: events.NameFareLost, Pickup: model.Location{Label: string(make([]byte, 2048))}}
	for i := 0; i < 600; i++ {
		rec.TripID = model.TripID(i + 1)
		require.NoError(t, store.Append(context.Background(), rec))
	}
	files, _ := filepath.Glob(filepath.Join(dir, "trips*"))
	assert.Greater(t, len(files), 1, "expected rotated files")
	out, err := store.Query(context.Background(), Query{TripID: 600})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "trips.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	exerciseStore(t, store)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{BackendJSONL, BackendRotating, BackendSQLite} {
		s, err := Open(Config{Backend: backend, Path: filepath.Join(dir, backend)})
		require.NoError(t, err, backend)
		require.NoError(t, s.Close())
	}
	_, err := Open(Config{Backend: "postgres"})
	assert.Error(t, err)
}

func TestConfigDefaultPathPerBackend(t *testing.T) {
	tests := []struct {
		backend string
		want    string
	}{
		{"", "trips.jsonl"},
		{BackendJSONL, "trips.jsonl"},
		{BackendRotating, "trips.jsonl"},
		{BackendSQLite, "trips.db"},
	}
	for _, tt := range tests {
		c := Config{Backend: tt.backend}
		c.SetDefaults()
		assert.Equal(t, tt.want, c.Path, tt.backend)
	}

	c := Config{Backend: BackendSQLite, Path: "fleet.sqlite"}
	c.SetDefaults()
	assert.Equal(t, "fleet.sqlite", c.Path)
}

func TestFromEvent(t *testing.T) {
	p := model.Passenger{ID: 3, Name: "Ann", GroupSize: 2}
	trip := model.NewTrip(5, p, model.Location{X: 0, Y: 0}, model.Location{X: 3, Y: 4}, t0)
	trip.Vehicle = 8
	trip.MarkPickedUp(t0.Add(2 * time.Minute))
	v := model.Vehicle{ID: 8, Class: model.ClassSmall, Status: model.StatusPickingUp}

	rec, ok := FromEvent(events.PassengerPickedUp{Trip: trip, Vehicle: v, At: t0.Add(2 * time.Minute)})
	require.True(t, ok)
	assert.Equal(t, events.NamePassengerPickedUp, rec.Event)
	assert.Equal(t, model.VehicleID(8), rec.VehicleID)
	assert.Equal(t, "small", rec.Class)
	assert.Equal(t, 120.0, rec.WaitSeconds)
	assert.Equal(t, model.StatusPickingUp, rec.Status)

	_, ok = FromEvent(events.VehicleStatusChanged{VehicleID: 8})
	assert.False(t, ok)
}

func TestStartRecorder(t *testing.T) {
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "trips.jsonl"))
	require.NoError(t, err)
	bus := events.NewBus()
	done := StartRecorder(context.Background(), bus, store, logger.NopLogger{})

	lost := model.NewTrip(1, model.Passenger{ID: 1, GroupSize: 20}, model.Location{}, model.Location{}, t0)
	bus.Publish(events.FareLost{Trip: lost, At: t0})
	bus.Publish(events.VehicleStatusChanged{VehicleID: 1, At: t0})
	bus.Close()
	<-done

	out, err := store.Query(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, events.NameFareLost, out[0].Event)
	assert.Equal(t, 20, out[0].GroupSize)
}

type failingStore struct{ Store }

func (failingStore) Append(context.Context, TripRecord) error { return errors.New("disk full") }

type countingMonitor struct {
	monitoring.NopMonitor
	n int
}

func (m *countingMonitor) CaptureException(error, map[string]string) { m.n++ }

func TestStartRecorderReportsAppendFailure(t *testing.T) {
	mon := &countingMonitor{}
	monitoring.Init(mon)
	defer monitoring.Init(nil)

	bus := events.NewBus()
	done := StartRecorder(context.Background(), bus, failingStore{}, logger.NopLogger{})
	bus.Publish(events.FareLost{Trip: model.Trip{ID: 1}, At: t0})
	bus.Close()
	<-done
	assert.Equal(t, 1, mon.n)
}

func TestJSONLStoreAppendAfterClose(t *testing.T) {
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "trips.jsonl"))
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
	assert.ErrorIs(t, store.Append(context.Background(), TripRecord{TripID: 1}), os.ErrClosed)
}

func TestQueryWhere(t *testing.T) {
	clause, args := Query{}.where()
	assert.Empty(t, clause)
	assert.Empty(t, args)

	clause, args = Query{Event: events.NameFareLost, TripID: 4, Start: t0}.where()
	assert.Equal(t, " WHERE at_ns >= ? AND event = ? AND trip_id = ?", clause)
	assert.Equal(t, []any{t0.UnixNano(), events.NameFareLost, 4}, args)
}
