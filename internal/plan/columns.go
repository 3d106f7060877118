package plan

import (
	"fmt"
	"math"

	"github.com/draftworks/plan2model/internal/monitoring"
)

// GenerateColumns places a column at every horizontal × vertical grid
// intersection not excluded by configuration. Column confidence is the
// minimum of the two intersecting line confidences (taken as value
// snapshots, never live references); a wall corner coinciding with the
// intersection adds the configured bonus, capped at 1.0. This is the
// only place wall information feeds back into column placement.
//
// Output ordering is deterministic: sorted by (vertical label,
// horizontal label) in ascending coordinate order.
func GenerateColumns(grid *Grid, walls []WallSegment, floor string, params Params) []Column {
	if grid == nil || len(grid.Horizontal) == 0 || len(grid.Vertical) == 0 {
		return nil
	}

	excluded := make(map[string]struct{}, len(params.ExcludedIntersections))
	for _, ref := range params.ExcludedIntersections {
		excluded[ref] = struct{}{}
	}

	var corners *PointIndex
	if len(walls) > 0 {
		if pts := CornerPoints(walls); len(pts) > 0 {
			corners = NewPointIndex(pts, math.Max(params.SnapTolerance, 1))
		}
	}

	columns := make([]Column, 0, len(grid.Horizontal)*len(grid.Vertical))
	for vi, v := range grid.Vertical {
		for hi, h := range grid.Horizontal {
			ref := h.Label + v.Label
			if _, skip := excluded[ref]; skip {
				continue
			}
			if params.ExcludePerimeterColumns &&
				(hi == 0 || hi == len(grid.Horizontal)-1 || vi == 0 || vi == len(grid.Vertical)-1) {
				continue
			}

			pos := Point{X: v.Coordinate, Y: h.Coordinate}
			conf := math.Min(h.Confidence, v.Confidence)
			reason := fmt.Sprintf("grid intersection %s (min of line confidences)", ref)
			if corners != nil && corners.AnyWithin(pos, params.SnapTolerance) {
				conf += params.ColumnCornerBonus
				reason += "; wall corner coincides"
			}
			confidence, review := annotate(conf, params.NeedsReviewThreshold)

			columns = append(columns, Column{
				GUID:        ElementGUID(floor, "column", ref),
				GridRef:     ref,
				Position:    pos,
				Size:        params.DefaultColumnSize,
				SourceGrids: [2]string{h.Label, v.Label},
				Confidence:  confidence,
				Reason:      reason,
				NeedsReview: review,
			})
		}
	}

	monitoring.Debugf("columns: floor %s placed %d columns on %dx%d grid",
		floor, len(columns), len(grid.Horizontal), len(grid.Vertical))

	return columns
}
