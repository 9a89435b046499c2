// Package kpi aggregates completed trips into per-vehicle daily figures.
package kpi

import (
	"fmt"
	"time"
)

// Store persists KPI records. Add merges into the record of the same plate
// and day.
type Store interface {
	Add(Record) error
	Query(plate string, start, end time.Time) ([]Record, error)
}

// Day aligns t to the start of its day in UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config selects the KPI backend.
type Config struct {
	Enabled bool   `json:"enabled"`
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendSQLite
	}
	if c.Path == "" {
		c.Path = "kpi.db"
	}
}

func (c Config) Validate() error {
	switch c.Backend {
	case "", BackendMemory, BackendSQLite:
		return nil
	default:
		return fmt.Errorf("kpi.backend %q is not supported", c.Backend)
	}
}
