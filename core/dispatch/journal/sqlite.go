package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS trip_journal (
    seq        INTEGER PRIMARY KEY AUTOINCREMENT,
    at_ns      INTEGER NOT NULL,
    event      TEXT    NOT NULL,
    trip_id    INTEGER NOT NULL,
    vehicle_id INTEGER NOT NULL DEFAULT 0,
    body       TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS trip_journal_trip ON trip_journal (trip_id);`

// SQLiteStore keeps records in a SQLite table. The filter columns are
// stored next to the JSON body so queries run in SQL.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(journalSchema); err != nil {
		return nil, errors.Join(fmt.Errorf("create journal schema: %w", err), db.Close())
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, rec TripRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO trip_journal (at_ns, event, trip_id, vehicle_id, body) VALUES (?, ?, ?, ?, ?)`,
		rec.Timestamp.UnixNano(), rec.Event, int(rec.TripID), int(rec.VehicleID), string(body))
	return err
}

// where translates q into a WHERE clause and its arguments.
func (q Query) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		conds = append(conds, cond)
		args = append(args, v)
	}
	if !q.Start.IsZero() {
		add("at_ns >= ?", q.Start.UnixNano())
	}
	if !q.End.IsZero() {
		add("at_ns <= ?", q.End.UnixNano())
	}
	if q.Event != "" {
		add("event = ?", q.Event)
	}
	if q.TripID != 0 {
		add("trip_id = ?", int(q.TripID))
	}
	if q.VehicleID != 0 {
		add("vehicle_id = ?", int(q.VehicleID))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Query returns the records matching q in insertion order.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]TripRecord, error) {
	where, args := q.where()
	rows, err := s.db.QueryContext(ctx, "SELECT body FROM trip_journal"+where+" ORDER BY seq", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []TripRecord
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var r TripRecord
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, fmt.Errorf("decode journal row: %w", err)
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
