package window

import (
	"reflect"
	"testing"
	"time"

	"github.com/tradehouse/bardata/internal/model"
)

func r(start, end int64) model.Range { return model.Range{Start: start, End: end} }

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []model.Range
		want []model.Range
	}{
		{"nil", nil, nil},
		{"single", []model.Range{r(0, 10)}, []model.Range{r(0, 10)}},
		{"disjoint sorted", []model.Range{r(0, 10), r(20, 30)}, []model.Range{r(0, 10), r(20, 30)}},
		{"unsorted", []model.Range{r(20, 30), r(0, 10)}, []model.Range{r(0, 10), r(20, 30)}},
		{"overlapping", []model.Range{r(0, 15), r(10, 30)}, []model.Range{r(0, 30)}},
		{"touching", []model.Range{r(0, 10), r(10, 20)}, []model.Range{r(0, 20)}},
		{"contained", []model.Range{r(0, 100), r(20, 30)}, []model.Range{r(0, 100)}},
		{"drops degenerate", []model.Range{r(5, 5), r(10, 2), r(0, 10)}, []model.Range{r(0, 10)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	in := []model.Range{r(50, 60), r(0, 15), r(10, 30), r(30, 40), r(90, 91)}
	once := Normalize(in)
	twice := Normalize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Normalize(Normalize(x)) = %v, want %v", twice, once)
	}
}

func TestSplit(t *testing.T) {
	maxW := 10 * time.Millisecond

	tests := []struct {
		name string
		in   []model.Range
		want []model.Range
	}{
		{"under max", []model.Range{r(0, 7)}, []model.Range{r(0, 7)}},
		{"exact max", []model.Range{r(0, 10)}, []model.Range{r(0, 10)}},
		{"with remainder", []model.Range{r(0, 25)}, []model.Range{r(0, 10), r(10, 20), r(20, 25)}},
		{"exact multiple", []model.Range{r(0, 20)}, []model.Range{r(0, 10), r(10, 20)}},
		{"merges then splits", []model.Range{r(0, 8), r(8, 16)}, []model.Range{r(0, 10), r(10, 16)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.in, maxW)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitCoverage(t *testing.T) {
	in := []model.Range{r(3, 137)}
	maxW := 11 * time.Millisecond

	chunks := Split(in, maxW)
	for i, c := range chunks {
		if c.Validate() != nil {
			t.Errorf("chunk %d is degenerate: %v", i, c)
		}
		if c.Duration() > maxW {
			t.Errorf("chunk %d width %v exceeds %v", i, c.Duration(), maxW)
		}
		if i > 0 && chunks[i-1].End != c.Start {
			t.Errorf("gap introduced between chunk %d and %d: %v, %v", i-1, i, chunks[i-1], c)
		}
	}
	if got := Normalize(chunks); !reflect.DeepEqual(got, in) {
		t.Errorf("union of chunks = %v, want %v", got, in)
	}
}

func TestSubtract(t *testing.T) {
	tests := []struct {
		name    string
		target  []model.Range
		covered []model.Range
		want    []model.Range
	}{
		{"self", []model.Range{r(0, 10)}, []model.Range{r(0, 10)}, nil},
		{"nothing covered", []model.Range{r(0, 10), r(20, 30)}, nil, []model.Range{r(0, 10), r(20, 30)}},
		{"front covered", []model.Range{r(0, 10)}, []model.Range{r(0, 4)}, []model.Range{r(4, 10)}},
		{"back covered", []model.Range{r(0, 10)}, []model.Range{r(6, 10)}, []model.Range{r(0, 6)}},
		{"middle covered", []model.Range{r(0, 10)}, []model.Range{r(3, 7)}, []model.Range{r(0, 3), r(7, 10)}},
		{"covered exceeds target", []model.Range{r(5, 10)}, []model.Range{r(0, 20)}, nil},
		{"multi-range", []model.Range{r(0, 10), r(20, 30)}, []model.Range{r(5, 25)}, []model.Range{r(0, 5), r(25, 30)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Subtract(tt.target, tt.covered)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Subtract(%v, %v) = %v, want %v", tt.target, tt.covered, got, tt.want)
			}
		})
	}
}

func TestSubtractNormalizesInputs(t *testing.T) {
	target := []model.Range{r(20, 30), r(0, 10), r(5, 12)}
	got := Subtract(target, nil)
	want := Normalize(target)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Subtract(x, nil) = %v, want Normalize(x) = %v", got, want)
	}
}
