package kpi

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	core "github.com/kilianp07/ridedispatch/core/kpi"
)

// SQLiteStore persists KPI records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS trip_kpi (
        plate TEXT,
        day INTEGER,
        trips INTEGER,
        passengers INTEGER,
        distance REAL,
        wait_seconds REAL,
        PRIMARY KEY(plate, day)
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Add inserts or merges the KPI record.
func (s *SQLiteStore) Add(r core.Record) error {
	_, err := s.db.Exec(`INSERT INTO trip_kpi (plate, day, trips, passengers, distance, wait_seconds)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(plate, day) DO UPDATE SET
            trips = trips + excluded.trips,
            passengers = passengers + excluded.passengers,
            distance = distance + excluded.distance,
            wait_seconds = wait_seconds + excluded.wait_seconds`,
		r.Plate, core.Day(r.Date).Unix(), r.Trips, r.Passengers, r.Distance, r.WaitSeconds)
	return err
}

// Query returns records in the range [start,end].
func (s *SQLiteStore) Query(plate string, start, end time.Time) ([]core.Record, error) {
	rows, err := s.db.Query(`SELECT plate, day, trips, passengers, distance, wait_seconds
        FROM trip_kpi WHERE plate = ? AND day >= ? AND day <= ? ORDER BY day`,
		plate, core.Day(start).Unix(), core.Day(end).Unix())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []core.Record
	for rows.Next() {
		var (
			r  core.Record
			ts int64
		)
		if err := rows.Scan(&r.Plate, &ts, &r.Trips, &r.Passengers, &r.Distance, &r.WaitSeconds); err != nil {
			return nil, err
		}
		r.Date = time.Unix(ts, 0).UTC()
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Open returns the store selected by c.
func Open(c core.Config) (core.Store, error) {
	switch c.Backend {
	case core.BackendMemory:
		return core.NewMemoryStore(), nil
	case "", core.BackendSQLite:
		return NewSQLiteStore(c.Path)
	default:
		return nil, fmt.Errorf("kpi.backend %q is not supported", c.Backend)
	}
}
