package store

import (
	"context"
	"testing"
	"time"

	"github.com/tradehouse/bardata/internal/model"
)

func bar(instrument, ts int64, regular bool) model.Bar {
	c := 100.0
	return model.Bar{
		InstrumentID: instrument,
		Timestamp:    ts,
		Open:         100, High: 101, Low: 99, Close: &c,
		Volume:           1000,
		IsRegularSession: regular,
		Source:           "test",
		FetchedAt:        time.Now().UnixMilli(),
		FetchedBy:        "memory-test",
	}
}

func TestMemoryStoreReadOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	// Write out of order.
	_, err := s.WriteBars(ctx, model.Cadence1Day, []model.Bar{
		bar(1, 300, true), bar(1, 100, true), bar(1, 200, true),
	})
	if err != nil {
		t.Fatalf("WriteBars error: %v", err)
	}

	got, err := s.ReadBars(ctx, 1, model.Cadence1Day, model.Range{Start: 0, End: 1000}, false)
	if err != nil {
		t.Fatalf("ReadBars error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Timestamp >= got[i].Timestamp {
			t.Errorf("bars not ascending: %d before %d", got[i-1].Timestamp, got[i].Timestamp)
		}
	}
}

func TestMemoryStoreWriteIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	n, err := s.WriteBars(ctx, model.Cadence1Day, []model.Bar{bar(1, 100, true), bar(1, 200, true)})
	if err != nil {
		t.Fatalf("WriteBars error: %v", err)
	}
	if n != 2 {
		t.Errorf("first write = %d, want 2", n)
	}

	// Duplicate identities are ignored, not errors.
	n, err = s.WriteBars(ctx, model.Cadence1Day, []model.Bar{bar(1, 100, true), bar(1, 300, true)})
	if err != nil {
		t.Fatalf("WriteBars error: %v", err)
	}
	if n != 1 {
		t.Errorf("second write = %d, want 1 (one conflict ignored)", n)
	}
	if s.Len() != 3 {
		t.Errorf("Len = %d, want 3", s.Len())
	}
}

func TestMemoryStoreRangeAndSessionFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.WriteBars(ctx, model.Cadence1Hour, []model.Bar{
		bar(1, 100, true), bar(1, 200, false), bar(1, 300, true), bar(2, 200, true),
	})
	if err != nil {
		t.Fatalf("WriteBars error: %v", err)
	}

	// Half-open range excludes ts=300; session filter excludes ts=200.
	got, err := s.ReadBars(ctx, 1, model.Cadence1Hour, model.Range{Start: 100, End: 300}, true)
	if err != nil {
		t.Fatalf("ReadBars error: %v", err)
	}
	if len(got) != 1 || got[0].Timestamp != 100 {
		t.Errorf("ReadBars = %v, want single bar at ts=100", got)
	}

	// Cadence isolation.
	got, err = s.ReadBars(ctx, 1, model.Cadence1Day, model.Range{Start: 0, End: 1000}, false)
	if err != nil {
		t.Fatalf("ReadBars error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ReadBars(other cadence) = %v, want empty", got)
	}
}
