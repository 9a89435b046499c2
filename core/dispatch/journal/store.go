// Package journal keeps an append-only audit log of trip events. It is not
// used to restore dispatcher state. Records are appended in the order the
// company published them, which follows the order of its state changes;
// events dropped by a full bus buffer are missing from the log.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/ridedispatch/core/events"
	"github.com/kilianp07/ridedispatch/core/model"
)

// TripRecord captures one trip event.
type TripRecord struct {
	Timestamp   time.Time           `json:"timestamp"`
	Event       string              `json:"event"`
	TripID      model.TripID        `json:"trip_id"`
	VehicleID   model.VehicleID     `json:"vehicle_id,omitempty"`
	Class       string              `json:"class,omitempty"`
	PassengerID model.PassengerID   `json:"passenger_id"`
	GroupSize   int                 `json:"group_size"`
	Pickup      model.Location      `json:"pickup"`
	Destination model.Location      `json:"destination"`
	WaitSeconds float64             `json:"wait_seconds,omitempty"`
	RideSeconds float64             `json:"ride_seconds,omitempty"`
	Status      model.VehicleStatus `json:"vehicle_status"`
}

// Query defines filters for retrieving records. Zero fields match all.
type Query struct {
	Start     time.Time
	End       time.Time
	Event     string
	TripID    model.TripID
	VehicleID model.VehicleID
}

// Match reports whether r satisfies every filter of q.
func (q Query) Match(r TripRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Event != "" && r.Event != q.Event {
		return false
	}
	if q.TripID != 0 && r.TripID != q.TripID {
		return false
	}
	if q.VehicleID != 0 && r.VehicleID != q.VehicleID {
		return false
	}
	return true
}

// Store persists TripRecords and supports querying.
type Store interface {
	Append(ctx context.Context, rec TripRecord) error
	Query(ctx context.Context, q Query) ([]TripRecord, error)
	Close() error
}

// FromEvent converts a trip event into a record. Vehicle status events are
// not journaled and return false.
func FromEvent(ev events.Event) (TripRecord, bool) {
	var (
		t model.Trip
		v *model.Vehicle
	)
	switch e := ev.(type) {
	case events.TripScheduled:
		t, v = e.Trip, &e.Vehicle
	case events.FareLost:
		t = e.Trip
	case events.PassengerPickedUp:
		t, v = e.Trip, &e.Vehicle
	case events.TripCompleted:
		t, v = e.Trip, &e.Vehicle
	default:
		return TripRecord{}, false
	}
	rec := TripRecord{
		Timestamp:   ev.Time(),
		Event:       ev.Name(),
		TripID:      t.ID,
		VehicleID:   t.Vehicle,
		PassengerID: t.Passenger.ID,
		GroupSize:   t.Passenger.GroupSize,
		Pickup:      t.Pickup,
		Destination: t.Destination,
		WaitSeconds: t.WaitTime().Seconds(),
		RideSeconds: t.RideTime().Seconds(),
	}
	if v != nil {
		rec.Class = v.Class.String()
		rec.Status = v.Status
	}
	return rec, true
}

// Config selects and configures the journal backend.
type Config struct {
	Enabled    bool   `json:"enabled"`
	Backend    string `json:"backend"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// Backend names.
const (
	BackendJSONL    = "jsonl"
	BackendRotating = "rotating"
	BackendSQLite   = "sqlite"
)

// SetDefaults fills empty fields. The default path follows the backend:
// trips.db for sqlite, trips.jsonl otherwise.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendJSONL
	}
	if c.Path == "" {
		c.Path = "trips.jsonl"
		if c.Backend == BackendSQLite {
			c.Path = "trips.db"
		}
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 3
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = 7
	}
}

// Validate checks the backend name and rotation settings.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendJSONL, BackendRotating, BackendSQLite:
	default:
		return fmt.Errorf("journal.backend %q is not supported", c.Backend)
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("journal rotation settings must not be negative")
	}
	return nil
}

// Open creates the configured store.
func Open(c Config) (Store, error) {
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	switch c.Backend {
	case BackendRotating:
		return NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	case BackendSQLite:
		return NewSQLiteStore(c.Path)
	default:
		return NewJSONLStore(c.Path)
	}
}
