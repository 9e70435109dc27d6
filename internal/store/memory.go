package store

import (
	"context"
	"sort"
	"sync"

	"github.com/tradehouse/bardata/internal/model"
)

// Compile-time interface check.
var _ BarStore = (*MemoryStore)(nil)

type barKey struct {
	instrument int64
	cadence    model.Cadence
	ts         int64
}

// MemoryStore is an in-memory BarStore with the same write semantics as the
// Postgres store (insert-or-ignore keyed by identity). Used in tests and dry
// runs.
type MemoryStore struct {
	mu   sync.RWMutex
	bars map[barKey]model.Bar
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bars: make(map[barKey]model.Bar)}
}

func (s *MemoryStore) ReadBars(_ context.Context, instrumentID int64, cadence model.Cadence, rng model.Range, sessionOnly bool) ([]model.Bar, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Bar
	for k, b := range s.bars {
		if k.instrument != instrumentID || k.cadence != cadence {
			continue
		}
		if !rng.Contains(k.ts) {
			continue
		}
		if sessionOnly && !b.IsRegularSession {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

func (s *MemoryStore) WriteBars(_ context.Context, cadence model.Cadence, bars []model.Bar) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	written := 0
	for _, b := range bars {
		k := barKey{instrument: b.InstrumentID, cadence: cadence, ts: b.Timestamp}
		if _, exists := s.bars[k]; exists {
			continue
		}
		s.bars[k] = b
		written++
	}
	return written, nil
}

// Len returns the total number of stored bars.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bars)
}
