package plan

import (
	"errors"
	"math"
	"strings"
	"testing"
)

// line builds a single-segment line primitive for tests.
func line(id, layer string, x1, y1, x2, y2 float64) RawPrimitive {
	return RawPrimitive{
		ID:     id,
		Kind:   KindLine,
		Layer:  layer,
		Points: []Point{{X: x1, Y: y1}, {X: x2, Y: y2}},
	}
}

func TestClassifyDefaultMapping(t *testing.T) {
	m := DefaultLayerMapping()
	cases := []struct {
		layer string
		want  Role
	}{
		{"A-GRID", RoleGridCandidate},
		{"S-GRID-IDEN", RoleGridCandidate},
		{"axis-main", RoleGridCandidate},
		{"A-WALL", RoleWallCandidate},
		{"A-WALL-EXTR", RoleWallCandidate},
		{"A-WALL-PATT", RoleIgnored},
		{"A-WALL-HATCH", RoleIgnored},
		{"A-FURN", RoleIgnored},
	}
	for _, c := range cases {
		if got := classify(c.layer, m); got != c.want {
			t.Errorf("classify(%q) = %v, want %v", c.layer, got, c.want)
		}
	}
}

func TestIngestClassifiesAndCounts(t *testing.T) {
	prims := []RawPrimitive{
		line("g1", "A-GRID", 0, 0, 1000, 0),
		line("w1", "A-WALL", 0, 0, 1000, 0),
		line("x1", "A-FURN", 0, 0, 100, 100),
	}
	res, err := Ingest(prims, DefaultLayerMapping(), DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if got := len(res.GridCandidates()); got != 1 {
		t.Errorf("grid candidates = %d, want 1", got)
	}
	if got := len(res.WallCandidates()); got != 1 {
		t.Errorf("wall candidates = %d, want 1", got)
	}
	if res.RoleCounts[RoleIgnored] != 1 {
		t.Errorf("ignored count = %d, want 1", res.RoleCounts[RoleIgnored])
	}
	if len(res.Rejections) != 0 {
		t.Errorf("unexpected rejections: %v", res.Rejections)
	}
}

func TestIngestFailsFastOnNonFinite(t *testing.T) {
	prims := []RawPrimitive{
		line("g1", "A-GRID", 0, 0, 1000, 0),
		line("bad", "A-WALL", 0, 0, math.NaN(), 0),
	}
	_, err := Ingest(prims, DefaultLayerMapping(), DefaultParams())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want *ValidationError, got %v", err)
	}
	if verr.Stage != StageIngest {
		t.Errorf("stage = %q, want %q", verr.Stage, StageIngest)
	}
}

func TestIngestFailsFastOnZeroLength(t *testing.T) {
	prims := []RawPrimitive{
		line("g1", "A-GRID", 0, 0, 1000, 0),
		line("dot", "A-WALL", 5, 5, 5, 5),
	}
	_, err := Ingest(prims, DefaultLayerMapping(), DefaultParams())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want *ValidationError, got %v", err)
	}
	if !strings.Contains(verr.Msg, "zero-length") {
		t.Errorf("unexpected message: %q", verr.Msg)
	}
}

func TestIngestFailsFastWithoutGridCandidates(t *testing.T) {
	prims := []RawPrimitive{
		line("w1", "A-WALL", 0, 0, 1000, 0),
	}
	_, err := Ingest(prims, DefaultLayerMapping(), DefaultParams())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want *ValidationError, got %v", err)
	}
	if !strings.Contains(verr.Msg, "grid-candidate") {
		t.Errorf("unexpected message: %q", verr.Msg)
	}
}

func TestIngestFailsFastOnAmbiguousMapping(t *testing.T) {
	m := LayerMapping{Grid: []string{"*S-*"}, Wall: []string{"*WALL*"}}
	prims := []RawPrimitive{
		line("g1", "S-GRID", 0, 0, 1000, 0),
		line("w1", "S-WALL", 0, 0, 1000, 0), // matches both roles
	}
	_, err := Ingest(prims, m, DefaultParams())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want *ValidationError, got %v", err)
	}
	if !strings.Contains(verr.Msg, "both grid and wall") {
		t.Errorf("unexpected message: %q", verr.Msg)
	}
}

func TestIngestFailsFastOnMalformedPattern(t *testing.T) {
	m := LayerMapping{Grid: []string{"[unclosed"}, Wall: []string{"*WALL*"}}
	_, err := Ingest([]RawPrimitive{line("g1", "GRID", 0, 0, 1, 0)}, m, DefaultParams())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want *ValidationError, got %v", err)
	}
}

func TestIngestRejectsArcsButContinues(t *testing.T) {
	prims := []RawPrimitive{
		line("g1", "A-GRID", 0, 0, 1000, 0),
		{ID: "a1", Kind: KindArc, Layer: "A-WALL", Points: []Point{{0, 0}, {50, 50}, {100, 0}}},
	}
	res, err := Ingest(prims, DefaultLayerMapping(), DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Rejections) != 1 {
		t.Fatalf("rejections = %d, want 1", len(res.Rejections))
	}
	r := res.Rejections[0]
	if r.PrimitiveID != "a1" || r.Stage != StageIngest {
		t.Errorf("unexpected rejection: %+v", r)
	}
}

func TestIngestMinLineLengthFilter(t *testing.T) {
	params := DefaultParams()
	params.MinLineLength = 100

	prims := []RawPrimitive{
		line("g1", "A-GRID", 0, 0, 1000, 0),
		line("tiny", "A-WALL", 0, 0, 10, 0),
	}
	res, err := Ingest(prims, DefaultLayerMapping(), params)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.WallCandidates()) != 0 {
		t.Error("short candidate should have been filtered")
	}
	if len(res.Rejections) != 1 {
		t.Fatalf("rejections = %d, want 1", len(res.Rejections))
	}
}

func TestIngestPolylineSegments(t *testing.T) {
	p := RawPrimitive{
		ID: "pl", Kind: KindPolyline, Layer: "A-WALL",
		Points: []Point{{0, 0}, {1000, 0}, {1000, 1000}},
	}
	segs := p.Segments()
	if len(segs) != 2 {
		t.Fatalf("segments = %d, want 2", len(segs))
	}
	if segs[1].Start != (Point{1000, 0}) || segs[1].End != (Point{1000, 1000}) {
		t.Errorf("unexpected second segment: %+v", segs[1])
	}
}
