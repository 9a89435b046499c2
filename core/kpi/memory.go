package kpi

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps records in memory.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[time.Time]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]map[time.Time]*Record{}}
}

func (s *MemoryStore) Add(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[r.Plate] == nil {
		s.data[r.Plate] = map[time.Time]*Record{}
	}
	d := Day(r.Date)
	rec := s.data[r.Plate][d]
	if rec == nil {
		rec = &Record{Plate: r.Plate, Date: d}
		s.data[r.Plate][d] = rec
	}
	rec.merge(r)
	return nil
}

// Query returns records between start and end inclusive, oldest first.
func (s *MemoryStore) Query(plate string, start, end time.Time) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start, end = Day(start), Day(end)
	var res []Record
	for d, r := range s.data[plate] {
		if d.Before(start) || d.After(end) {
			continue
		}
		res = append(res, *r)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date.Before(res[j].Date) })
	return res, nil
}
