package plan

import "testing"

func TestPointIndexAnyWithin(t *testing.T) {
	pts := []Point{{0, 0}, {100, 100}, {-250, 400}}
	idx := NewPointIndex(pts, 50)

	if !idx.AnyWithin(Point{X: 10, Y: 10}, 50) {
		t.Error("point within radius not found")
	}
	if !idx.AnyWithin(Point{X: -251, Y: 401}, 50) {
		t.Error("negative-coordinate point not found")
	}
	if idx.AnyWithin(Point{X: 500, Y: 500}, 50) {
		t.Error("distant query should find nothing")
	}

	// Boundary: distance exactly equal to the radius counts.
	if !idx.AnyWithin(Point{X: 50, Y: 0}, 50) {
		t.Error("point at exactly the radius should be found")
	}
}

func TestPointIndexEmpty(t *testing.T) {
	idx := NewPointIndex(nil, 50)
	if idx.AnyWithin(Point{}, 50) {
		t.Error("empty index should find nothing")
	}
}

func TestAnnotateThreshold(t *testing.T) {
	conf, review := annotate(0.59, 0.6)
	if !review {
		t.Error("score below threshold must be flagged")
	}
	conf, review = annotate(0.6, 0.6)
	if review {
		t.Error("score at the threshold must not be flagged")
	}
	conf, review = annotate(1.7, 0.6)
	if conf != 1.0 {
		t.Errorf("confidence = %v, want clamped 1.0", conf)
	}
	if review {
		t.Error("clamped high score must not be flagged")
	}
}
