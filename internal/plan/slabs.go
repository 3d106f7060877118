package plan

import (
	"fmt"
	"math"

	"github.com/draftworks/plan2model/internal/monitoring"
)

// GenerateSlabs derives the floor outline: the bounding rectangle of
// the dominant source (grid extents by default, wall footprint when
// configured), expanded by the edge offset. Slabs are coarse
// placeholders by design, so their confidence is a fixed configured
// constant rather than intersection-derived. Multi-outline derivation
// from wall footprints is a future extension; the minimal contract is
// one rectangle per floor.
func GenerateSlabs(grid *Grid, walls []WallSegment, floor string, elevation float64, params Params) []Slab {
	bounds := emptyBox()
	source := params.SlabSource

	if source == SlabFromWalls && len(walls) == 0 {
		monitoring.Debugf("slabs: floor %s has no walls, falling back to grid extents", floor)
		source = SlabFromGrid
	}

	switch source {
	case SlabFromWalls:
		for _, w := range walls {
			for _, p := range w.Centerline {
				bounds = bounds.AddPoint(p)
			}
		}
	default:
		if grid != nil {
			bounds = grid.Bounds
		}
	}

	if math.IsInf(bounds.MinX, 1) {
		return nil
	}

	bounds = bounds.Expand(params.SlabEdgeOffset)
	boundary := []Point{
		{X: bounds.MinX, Y: bounds.MinY},
		{X: bounds.MaxX, Y: bounds.MinY},
		{X: bounds.MaxX, Y: bounds.MaxY},
		{X: bounds.MinX, Y: bounds.MaxY},
	}

	confidence, review := annotate(params.SlabConfidence, params.NeedsReviewThreshold)
	return []Slab{{
		GUID:        ElementGUID(floor, "slab", fmt.Sprintf("%g", elevation)),
		Boundary:    boundary,
		Elevation:   elevation,
		Thickness:   params.SlabThickness,
		Confidence:  confidence,
		Reason:      fmt.Sprintf("bounding rectangle of %s extents with %g edge offset", source, params.SlabEdgeOffset),
		NeedsReview: review,
	}}
}
