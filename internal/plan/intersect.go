package plan

import (
	"runtime"
	"sync"
)

// wallHit is one classified meeting of a horizontal and a vertical wall
// segment, keyed by indices into the flat wall slice.
type wallHit struct {
	h, v int
	kind IntersectionKind
	at   Point
}

// ResolveIntersections classifies every T/L/CROSS meeting between wall
// centerlines and records the relation bidirectionally on both
// segments. Only perpendicular pairs can meet: collinear neighbours are
// deliberately left unrelated (the merge pass already decided their
// gaps stay open).
//
// The pairwise computation is embarrassingly parallel: it only reads
// finalized centerlines, so pairs are fanned out over index batches and
// joined before any segment is annotated. The output is deterministic
// regardless of worker count.
func ResolveIntersections(walls []WallSegment, params Params) {
	var hIdx, vIdx []int
	for i, w := range walls {
		switch w.Orientation {
		case Horizontal:
			hIdx = append(hIdx, i)
		case Vertical:
			vIdx = append(vIdx, i)
		}
	}
	if len(hIdx) == 0 || len(vIdx) == 0 {
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(hIdx) {
		workers = len(hIdx)
	}
	batches := make([][]wallHit, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			var hits []wallHit
			for bi := w; bi < len(hIdx); bi += workers {
				h := hIdx[bi]
				for _, v := range vIdx {
					if kind, at, ok := classifyPair(&walls[h], &walls[v], params.SnapTolerance); ok {
						hits = append(hits, wallHit{h: h, v: v, kind: kind, at: at})
					}
				}
			}
			batches[w] = hits
		}(w)
	}
	wg.Wait()

	// Merge batches back in pair order so the recorded relations are
	// stable across runs.
	all := make([]wallHit, 0)
	for _, hits := range batches {
		all = append(all, hits...)
	}
	sortHits(all)

	for _, hit := range all {
		walls[hit.h].Intersections = append(walls[hit.h].Intersections,
			IntersectionRef{Other: hit.v, Kind: hit.kind, At: hit.at})
		walls[hit.v].Intersections = append(walls[hit.v].Intersections,
			IntersectionRef{Other: hit.h, Kind: hit.kind, At: hit.at})
	}
}

func sortHits(hits []wallHit) {
	// Insertion sort keeps the dependency surface small; hit counts are
	// modest (bounded by wall pairs actually meeting).
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && less(hits[j], hits[j-1]); j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
}

func less(a, b wallHit) bool {
	if a.h != b.h {
		return a.h < b.h
	}
	return a.v < b.v
}

// classifyPair decides how a horizontal and a vertical segment meet.
// The candidate point is the crossing of their centerlines; each
// segment sees it as an endpoint (within tol of either end) or as
// interior (within its extended extent). Endpoint/endpoint is an L,
// endpoint/interior a T, interior/interior a CROSS.
func classifyPair(h, v *WallSegment, tol float64) (IntersectionKind, Point, bool) {
	px := v.Coordinate
	py := h.Coordinate

	hMin, hMax := extentOf(h)
	vMin, vMax := extentOf(v)

	if px < hMin-tol || px > hMax+tol || py < vMin-tol || py > vMax+tol {
		return IntersectionNone, Point{}, false
	}

	hEnd := px <= hMin+tol || px >= hMax-tol
	vEnd := py <= vMin+tol || py >= vMax-tol

	switch {
	case hEnd && vEnd:
		return IntersectionL, Point{X: px, Y: py}, true
	case hEnd || vEnd:
		return IntersectionT, Point{X: px, Y: py}, true
	default:
		return IntersectionCross, Point{X: px, Y: py}, true
	}
}

// extentOf returns the running-axis interval of a wall centerline.
func extentOf(w *WallSegment) (min, max float64) {
	first, last := w.Centerline[0], w.Centerline[len(w.Centerline)-1]
	if w.Orientation == Horizontal {
		if first.X <= last.X {
			return first.X, last.X
		}
		return last.X, first.X
	}
	if first.Y <= last.Y {
		return first.Y, last.Y
	}
	return last.Y, first.Y
}

// CornerPoints returns the L-intersection points of the wall set, used
// by column placement for corner-coincidence validation.
func CornerPoints(walls []WallSegment) []Point {
	var pts []Point
	for i := range walls {
		for _, ref := range walls[i].Intersections {
			if ref.Kind == IntersectionL && ref.Other > i {
				pts = append(pts, ref.At)
			}
		}
	}
	return pts
}
