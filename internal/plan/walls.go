package plan

import (
	"fmt"
	"math"
	"sort"

	"github.com/draftworks/plan2model/internal/monitoring"
)

// wallCandidate is one orthogonal wall segment reduced to its inferred
// centerline coordinate and the interval it covers along that line.
type wallCandidate struct {
	coord     float64
	start     float64
	end       float64
	src       string
	thickness float64 // encoded in source metadata, 0 when absent
}

// DetectWalls merges wall-candidate entities into continuous wall
// segments. The grid set is a validation hint only: agreement with a
// grid coordinate nudges confidence up, disagreement costs nothing.
//
// Collinear candidates separated by a gap of at least the snap
// tolerance stay distinct: small corner gaps are expected provisional
// geometry, left for manual correction rather than bridged. A gap
// exactly equal to the tolerance does not merge (conservative reading
// of the boundary condition).
func DetectWalls(entities []ClassifiedEntity, grid *Grid, floor string, params Params) ([]WallSegment, []Rejection) {
	var rejections []Rejection
	byOrient := map[Orientation][]wallCandidate{}

	for _, e := range entities {
		p := e.Primitive
		segs := p.Segments()
		if len(segs) == 0 || primitiveLength(p) == 0 {
			rejections = append(rejections, Rejection{
				PrimitiveID: p.ID, Layer: p.Layer, Stage: StageWalls,
				Reason: "zero-length wall candidate",
			})
			continue
		}
		if selfIntersecting(segs) {
			rejections = append(rejections, Rejection{
				PrimitiveID: p.ID, Layer: p.Layer, Stage: StageWalls,
				Reason: "self-intersecting centerline",
			})
			continue
		}

		for _, seg := range segs {
			dev, orient := orthogonalDeviation(seg.AngleDeg())
			if dev > params.AngleToleranceDeg {
				rejections = append(rejections, Rejection{
					PrimitiveID: p.ID, Layer: p.Layer, Stage: StageWalls,
					Reason: fmt.Sprintf("segment angle deviates %.2f° from nearest axis (tolerance %.2f°)", dev, params.AngleToleranceDeg),
				})
				continue
			}
			c := wallCandidate{src: p.ID, thickness: p.Thickness}
			if orient == Horizontal {
				c.coord = (seg.Start.Y + seg.End.Y) / 2
				c.start = math.Min(seg.Start.X, seg.End.X)
				c.end = math.Max(seg.Start.X, seg.End.X)
			} else {
				c.coord = (seg.Start.X + seg.End.X) / 2
				c.start = math.Min(seg.Start.Y, seg.End.Y)
				c.end = math.Max(seg.Start.Y, seg.End.Y)
			}
			byOrient[orient] = append(byOrient[orient], c)
		}
	}

	var walls []WallSegment
	for _, orient := range []Orientation{Horizontal, Vertical} {
		walls = append(walls, mergeWallCandidates(byOrient[orient], orient, grid, floor, params)...)
	}

	monitoring.Debugf("walls: floor %s merged %d candidates into %d segments, %d rejected",
		floor, len(entities), len(walls), len(rejections))

	return walls, rejections
}

// mergeWallCandidates clusters candidates onto shared centerlines (same
// fold as grid detection) and unions overlapping-or-touching intervals
// per centerline.
func mergeWallCandidates(cands []wallCandidate, orient Orientation, grid *Grid, floor string, params Params) []WallSegment {
	if len(cands) == 0 {
		return nil
	}

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].coord != cands[j].coord {
			return cands[i].coord < cands[j].coord
		}
		if cands[i].start != cands[j].start {
			return cands[i].start < cands[j].start
		}
		return cands[i].src < cands[j].src
	})

	// Fold by coordinate into centerline clusters.
	type lineCluster struct {
		sum   float64
		n     int
		cands []wallCandidate
	}
	var clusters []*lineCluster
	for _, c := range cands {
		if len(clusters) > 0 {
			cur := clusters[len(clusters)-1]
			if math.Abs(c.coord-cur.sum/float64(cur.n)) < params.SnapTolerance {
				cur.sum += c.coord
				cur.n++
				cur.cands = append(cur.cands, c)
				continue
			}
		}
		clusters = append(clusters, &lineCluster{sum: c.coord, n: 1, cands: []wallCandidate{c}})
	}

	var walls []WallSegment
	for _, cl := range clusters {
		coord := cl.sum / float64(cl.n)
		walls = append(walls, mergeIntervals(cl.cands, coord, orient, grid, floor, params)...)
	}
	return walls
}

// mergeIntervals unions the sorted intervals of one centerline. Two
// intervals merge only when the gap between them is strictly below the
// snap tolerance; a gap equal to the tolerance keeps them distinct.
func mergeIntervals(cands []wallCandidate, coord float64, orient Orientation, grid *Grid, floor string, params Params) []WallSegment {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].start != cands[j].start {
			return cands[i].start < cands[j].start
		}
		return cands[i].src < cands[j].src
	})

	type run struct {
		start, end float64
		members    []wallCandidate
	}
	var runs []run
	for _, c := range cands {
		if len(runs) > 0 {
			cur := &runs[len(runs)-1]
			if c.start-cur.end < params.SnapTolerance {
				if c.end > cur.end {
					cur.end = c.end
				}
				cur.members = append(cur.members, c)
				continue
			}
		}
		runs = append(runs, run{start: c.start, end: c.end, members: []wallCandidate{c}})
	}

	walls := make([]WallSegment, 0, len(runs))
	for _, r := range runs {
		var sources []string
		seen := make(map[string]struct{})
		encoded := 0.0
		thicknessConflict := false
		for _, m := range r.members {
			if _, ok := seen[m.src]; !ok {
				seen[m.src] = struct{}{}
				sources = append(sources, m.src)
			}
			if m.thickness > 0 {
				if encoded == 0 {
					encoded = m.thickness
				} else if m.thickness != encoded {
					thicknessConflict = true
				}
			}
		}
		sort.Strings(sources)

		thickness := params.DefaultWallThickness
		if encoded > 0 {
			thickness = encoded
		}

		conf, reason := wallConfidence(len(r.members), encoded, coord, orient, grid, params)
		if thicknessConflict {
			reason += "; members encode conflicting thicknesses, kept the first"
		}
		confidence, review := annotate(conf, params.NeedsReviewThreshold)

		var centerline []Point
		if orient == Horizontal {
			centerline = []Point{{X: r.start, Y: coord}, {X: r.end, Y: coord}}
		} else {
			centerline = []Point{{X: coord, Y: r.start}, {X: coord, Y: r.end}}
		}

		walls = append(walls, WallSegment{
			GUID:        ElementGUID(floor, "wall", string(orient), fmt.Sprintf("%.3f/%.3f", coord, r.start)),
			Centerline:  centerline,
			Orientation: orient,
			Coordinate:  coord,
			Thickness:   thickness,
			SourceIDs:   sources,
			MergedCount: len(r.members),
			Confidence:  confidence,
			Reason:      reason,
			NeedsReview: review,
		})
	}
	return walls
}

// wallConfidence scores one merged run from its member count and the
// agreement between configured and encoded thickness, with a small
// bonus when the centerline lands on a detected grid coordinate.
func wallConfidence(merged int, encoded, coord float64, orient Orientation, grid *Grid, params Params) (float64, string) {
	conf := params.DefaultWallConfidence
	reason := "no encoded thickness, using configured default"
	if encoded > 0 {
		ratio := params.DefaultWallThickness / encoded
		if math.Abs(ratio-1) < 1e-9 {
			conf = 1.0
			reason = "encoded thickness matches configured default"
		} else {
			conf = clampConfidence(1 - math.Abs(ratio-1))
			if conf < params.ConfidenceFloor {
				conf = params.ConfidenceFloor
			}
			reason = fmt.Sprintf("encoded thickness %g deviates from default %g", encoded, params.DefaultWallThickness)
		}
	}
	if merged >= 2 {
		conf += 0.1
		reason = fmt.Sprintf("%s; merged from %d segments", reason, merged)
	}
	if grid != nil && onGridCoordinate(coord, orient, grid, params.SnapTolerance) {
		conf += 0.05
		reason += "; centerline on grid"
	}
	return conf, reason
}

// onGridCoordinate reports whether coord falls within tol of a
// same-orientation grid line coordinate.
func onGridCoordinate(coord float64, orient Orientation, grid *Grid, tol float64) bool {
	lines := grid.Horizontal
	if orient == Vertical {
		lines = grid.Vertical
	}
	for _, gl := range lines {
		if math.Abs(gl.Coordinate-coord) <= tol {
			return true
		}
	}
	return false
}

// selfIntersecting reports whether any two non-adjacent segments of a
// polyline cross.
func selfIntersecting(segs []Segment) bool {
	for i := 0; i < len(segs); i++ {
		for j := i + 2; j < len(segs); j++ {
			if segmentsIntersect(segs[i], segs[j]) {
				return true
			}
		}
	}
	return false
}
