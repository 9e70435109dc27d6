package provider

import (
	"context"
	"sync"
	"time"

	"github.com/tradehouse/bardata/internal/model"
)

// Compile-time interface check.
var _ Provider = (*Static)(nil)

// Static serves a fixed set of observations and records every fetch it
// receives. It backs orchestration tests and offline dry runs: failures can be
// injected per call, and the recorded windows show exactly what was requested.
type Static struct {
	name     string
	lookback time.Duration

	mu    sync.Mutex
	data  []Observation
	fail  map[int]error // call index (0-based) -> injected error
	calls []model.Range
}

// NewStatic creates a scripted provider with the given per-request lookback
// applied to every cadence.
func NewStatic(name string, lookback time.Duration, data []Observation) *Static {
	return &Static{
		name:     name,
		lookback: lookback,
		data:     data,
		fail:     make(map[int]error),
	}
}

// FailOn injects err for the n-th Fetch call.
func (s *Static) FailOn(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[n] = err
}

// Calls returns the windows fetched so far, in order.
func (s *Static) Calls() []model.Range {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Range, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *Static) Name() string { return s.name }

func (s *Static) MaxLookback(model.Cadence) time.Duration { return s.lookback }

func (s *Static) Fetch(ctx context.Context, _ model.Instrument, _ model.Cadence, rng model.Range, _ bool) ([]Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.calls)
	s.calls = append(s.calls, rng)
	if err, ok := s.fail[n]; ok {
		return nil, err
	}

	var out []Observation
	for _, o := range s.data {
		if rng.Contains(o.Timestamp) {
			out = append(out, o)
		}
	}
	return out, nil
}
