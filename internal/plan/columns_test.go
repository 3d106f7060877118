package plan

import (
	"math"
	"testing"
)

// testGrid builds a grid from horizontal Y and vertical X coordinates,
// all lines at the given confidence.
func testGrid(hCoords, vCoords []float64, conf float64) *Grid {
	g := &Grid{Bounds: emptyBox()}
	for i, y := range hCoords {
		g.Horizontal = append(g.Horizontal, GridLine{
			Label: gridLabel(Horizontal, i), Orientation: Horizontal,
			Coordinate: y, ExtentMin: 0, ExtentMax: 10000, Confidence: conf,
		})
		g.Bounds = g.Bounds.AddPoint(Point{X: 0, Y: y}).AddPoint(Point{X: 10000, Y: y})
	}
	for i, x := range vCoords {
		g.Vertical = append(g.Vertical, GridLine{
			Label: gridLabel(Vertical, i), Orientation: Vertical,
			Coordinate: x, ExtentMin: 0, ExtentMax: 8000, Confidence: conf,
		})
		g.Bounds = g.Bounds.AddPoint(Point{X: x, Y: 0}).AddPoint(Point{X: x, Y: 8000})
	}
	return g
}

func TestGenerateColumnsFullGrid(t *testing.T) {
	g := testGrid([]float64{0, 4000}, []float64{0, 3000, 6000}, 1.0)
	cols := GenerateColumns(g, nil, "L1", DefaultParams())

	if len(cols) != 6 {
		t.Fatalf("columns = %d, want 2x3 = 6", len(cols))
	}

	// Ordering is vertical-major: all columns on line 1 first.
	wantRefs := []string{"A1", "B1", "A2", "B2", "A3", "B3"}
	for i, c := range cols {
		if c.GridRef != wantRefs[i] {
			t.Errorf("column[%d].GridRef = %q, want %q", i, c.GridRef, wantRefs[i])
		}
	}

	c := cols[3] // B2
	if c.Position != (Point{3000, 4000}) {
		t.Errorf("B2 position = %v, want (3000, 4000)", c.Position)
	}
	if c.SourceGrids != [2]string{"B", "2"} {
		t.Errorf("B2 source grids = %v", c.SourceGrids)
	}
	if c.Size != DefaultColumnSize {
		t.Errorf("size = %v, want %v", c.Size, DefaultColumnSize)
	}
}

func TestGenerateColumnsConfidenceIsMinOfLines(t *testing.T) {
	g := testGrid([]float64{0}, []float64{0}, 1.0)
	g.Horizontal[0].Confidence = 0.55

	cols := GenerateColumns(g, nil, "L1", DefaultParams())
	if len(cols) != 1 {
		t.Fatalf("columns = %d, want 1", len(cols))
	}
	if cols[0].Confidence != 0.55 {
		t.Errorf("confidence = %v, want min 0.55", cols[0].Confidence)
	}
	if !cols[0].NeedsReview {
		t.Error("column below the review threshold must be flagged")
	}
}

func TestGenerateColumnsCornerBonus(t *testing.T) {
	g := testGrid([]float64{0}, []float64{0}, 0.8)

	// Wall corner exactly at the only grid intersection.
	walls := []WallSegment{
		makeWall(Horizontal, 0, 0, 4000),
		makeWall(Vertical, 0, 0, 5000),
	}
	ResolveIntersections(walls, DefaultParams())

	cols := GenerateColumns(g, walls, "L1", DefaultParams())
	if len(cols) != 1 {
		t.Fatalf("columns = %d, want 1", len(cols))
	}
	want := 0.8 + DefaultColumnCornerBonus
	if math.Abs(cols[0].Confidence-want) > 1e-9 {
		t.Errorf("confidence = %v, want %v", cols[0].Confidence, want)
	}

	// The bonus never pushes past 1.0.
	g.Horizontal[0].Confidence = 1.0
	g.Vertical[0].Confidence = 1.0
	cols = GenerateColumns(g, walls, "L1", DefaultParams())
	if cols[0].Confidence != 1.0 {
		t.Errorf("confidence = %v, want capped 1.0", cols[0].Confidence)
	}
}

func TestGenerateColumnsExclusions(t *testing.T) {
	g := testGrid([]float64{0, 4000, 8000}, []float64{0, 3000, 6000}, 1.0)

	params := DefaultParams()
	params.ExcludedIntersections = []string{"B2"}
	cols := GenerateColumns(g, nil, "L1", params)
	if len(cols) != 8 {
		t.Fatalf("columns = %d, want 8 after excluding B2", len(cols))
	}
	for _, c := range cols {
		if c.GridRef == "B2" {
			t.Error("excluded intersection still produced a column")
		}
	}

	params = DefaultParams()
	params.ExcludePerimeterColumns = true
	cols = GenerateColumns(g, nil, "L1", params)
	if len(cols) != 1 || cols[0].GridRef != "B2" {
		t.Fatalf("perimeter exclusion on 3x3 grid should leave only B2, got %v", cols)
	}
}

func TestGenerateColumnsEmptyGrid(t *testing.T) {
	if cols := GenerateColumns(nil, nil, "L1", DefaultParams()); cols != nil {
		t.Errorf("nil grid should produce no columns, got %v", cols)
	}
	g := testGrid([]float64{0, 4000}, nil, 1.0)
	if cols := GenerateColumns(g, nil, "L1", DefaultParams()); cols != nil {
		t.Errorf("one-orientation grid should produce no columns, got %v", cols)
	}
}

func TestGenerateColumnsStableGUIDs(t *testing.T) {
	g := testGrid([]float64{0, 4000}, []float64{0, 3000}, 1.0)
	a := GenerateColumns(g, nil, "L1", DefaultParams())
	b := GenerateColumns(g, nil, "L1", DefaultParams())
	for i := range a {
		if a[i].GUID != b[i].GUID {
			t.Errorf("column %s GUID not stable across runs", a[i].GridRef)
		}
	}
	other := GenerateColumns(g, nil, "L2", DefaultParams())
	if a[0].GUID == other[0].GUID {
		t.Error("different floors must yield different GUIDs")
	}
}
