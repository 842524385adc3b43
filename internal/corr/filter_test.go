package corr

import (
	"errors"
	"math"
	"testing"
)

func sampleRows() []Row {
	return []Row{
		{FieldX: 500, FieldY: 400, FieldRA: 83.0, FieldDec: -0.3, MatchWeight: 0.999},
		{FieldX: 620, FieldY: 330, FieldRA: 84.0, FieldDec: -1.2, MatchWeight: 0.9999},
		{FieldX: 380, FieldY: 470, FieldRA: 85.2, FieldDec: -1.9, MatchWeight: 0.998},
		{FieldX: 450, FieldY: 300, FieldRA: 81.3, FieldDec: 6.3, MatchWeight: 0.995}, // not strictly above
		{FieldX: 560, FieldY: 520, FieldRA: 78.6, FieldDec: -8.2, MatchWeight: 0.2},
	}
}

func TestFilter_KeepsStrictlyConfidentRows(t *testing.T) {
	rows := sampleRows()
	res, err := Filter(rows, DefaultOptions())
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if res.Kept != 3 || len(res.Stars) != 3 {
		t.Fatalf("kept %d rows (%d stars), want 3", res.Kept, len(res.Stars))
	}
	if res.Total != len(rows) {
		t.Errorf("Total = %d, want %d", res.Total, len(rows))
	}
	if len(res.Stars) > len(rows) {
		t.Error("output larger than input")
	}
}

func TestFilter_AnchorAtOrigin(t *testing.T) {
	res, err := Filter(sampleRows(), DefaultOptions())
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}

	a := res.Stars[res.Anchor]
	if a.Measured.X != 0 || a.Measured.Y != 0 {
		t.Errorf("anchor at (%v, %v), want (0, 0)", a.Measured.X, a.Measured.Y)
	}
	// Centroid of the three kept points (flipped y) is (500, -400): row 0.
	if math.Abs(a.RA.Deg()-83.0) > 1e-12 {
		t.Errorf("anchor RA = %v, want 83.0", a.RA.Deg())
	}
}

func TestFilter_FlipsYAndConvertsDegrees(t *testing.T) {
	res, err := Filter(sampleRows(), DefaultOptions())
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}

	// Row 1 is 120 px right of and 70 px above the anchor in image terms.
	s := res.Stars[1]
	if s.Measured.X != 120 || s.Measured.Y != 70 {
		t.Errorf("star 1 at (%v, %v), want (120, 70)", s.Measured.X, s.Measured.Y)
	}
	if s.Normal != s.Measured {
		t.Error("new stars should start with Normal equal to Measured")
	}
	if math.Abs(s.Dec.Rad()-(-1.2*math.Pi/180)) > 1e-15 {
		t.Errorf("Dec = %v rad, want %v", s.Dec.Rad(), -1.2*math.Pi/180)
	}
}

func TestFilter_NoConfidentRows(t *testing.T) {
	rows := []Row{{FieldX: 1, FieldY: 1, MatchWeight: 0.5}}

	_, err := Filter(rows, DefaultOptions())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrNoUsableStars) {
		t.Errorf("error %v does not wrap ErrNoUsableStars", err)
	}
	var ie *InputError
	if !errors.As(err, &ie) {
		t.Errorf("error %T is not an *InputError", err)
	}
}

func TestFilter_Bounds(t *testing.T) {
	opts := DefaultOptions()
	opts.Width = 600
	opts.Height = 1000

	res, err := Filter(sampleRows(), opts)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if res.Kept != 2 {
		t.Errorf("kept %d rows, want 2 (one row lies beyond the width)", res.Kept)
	}
}

func TestFilter_MaxStarsIsSeeded(t *testing.T) {
	var rows []Row
	for i := 0; i < 30; i++ {
		rows = append(rows, Row{
			FieldX:      float64(10 * i),
			FieldY:      float64(7 * (i % 5)),
			FieldRA:     float64(i),
			FieldDec:    float64(i) / 2,
			MatchWeight: 1,
		})
	}

	opts := DefaultOptions()
	opts.MaxStars = 10
	opts.Seed = 42

	a, err := Filter(append([]Row(nil), rows...), opts)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	b, err := Filter(append([]Row(nil), rows...), opts)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}

	if len(a.Stars) != 10 {
		t.Fatalf("got %d stars, want 10", len(a.Stars))
	}
	for i := range a.Stars {
		if a.Stars[i] != b.Stars[i] {
			t.Fatalf("selection differs at %d with the same seed", i)
		}
	}
}
