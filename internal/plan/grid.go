package plan

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/draftworks/plan2model/internal/monitoring"
)

// gridCandidate is one orthogonal segment reduced to its constant-axis
// coordinate and running extent.
type gridCandidate struct {
	coord    float64
	extMin   float64
	extMax   float64
	angleDev float64
	src      string
}

// gridCluster accumulates candidates whose coordinates agree within the
// snap tolerance. The fold keeps a running centroid rather than a
// mutable global registry.
type gridCluster struct {
	sum      float64
	n        int
	extMin   float64
	extMax   float64
	maxDev   float64
	sources  []string
	srcSeen  map[string]struct{}
}

func newGridCluster(c gridCandidate) *gridCluster {
	cl := &gridCluster{extMin: c.extMin, extMax: c.extMax, srcSeen: make(map[string]struct{})}
	cl.add(c)
	return cl
}

func (cl *gridCluster) add(c gridCandidate) {
	cl.sum += c.coord
	cl.n++
	cl.extMin = math.Min(cl.extMin, c.extMin)
	cl.extMax = math.Max(cl.extMax, c.extMax)
	cl.maxDev = math.Max(cl.maxDev, c.angleDev)
	if _, ok := cl.srcSeen[c.src]; !ok {
		cl.srcSeen[c.src] = struct{}{}
		cl.sources = append(cl.sources, c.src)
	}
}

func (cl *gridCluster) centroid() float64 { return cl.sum / float64(cl.n) }

func (cl *gridCluster) absorb(o *gridCluster) {
	cl.sum += o.sum
	cl.n += o.n
	cl.extMin = math.Min(cl.extMin, o.extMin)
	cl.extMax = math.Max(cl.extMax, o.extMax)
	cl.maxDev = math.Max(cl.maxDev, o.maxDev)
	for _, s := range o.sources {
		if _, ok := cl.srcSeen[s]; !ok {
			cl.srcSeen[s] = struct{}{}
			cl.sources = append(cl.sources, s)
		}
	}
}

// DetectGrid clusters grid-candidate entities into a regular orthogonal
// grid. Non-orthogonal candidates are rejected, never approximated.
// Detection is deterministic: identical input yields identical
// coordinates, labels and confidences regardless of input order.
func DetectGrid(entities []ClassifiedEntity, floor string, params Params) (*Grid, []Rejection) {
	var rejections []Rejection
	byOrient := map[Orientation][]gridCandidate{}

	for _, e := range entities {
		p := e.Primitive
		for _, seg := range p.Segments() {
			dev, orient := orthogonalDeviation(seg.AngleDeg())
			if dev > params.AngleToleranceDeg {
				rejections = append(rejections, Rejection{
					PrimitiveID: p.ID, Layer: p.Layer, Stage: StageGrid,
					Reason: fmt.Sprintf("segment angle deviates %.2f° from nearest axis (tolerance %.2f°)", dev, params.AngleToleranceDeg),
				})
				continue
			}
			var c gridCandidate
			c.angleDev = dev
			c.src = p.ID
			if orient == Horizontal {
				c.coord = (seg.Start.Y + seg.End.Y) / 2
				c.extMin = math.Min(seg.Start.X, seg.End.X)
				c.extMax = math.Max(seg.Start.X, seg.End.X)
			} else {
				c.coord = (seg.Start.X + seg.End.X) / 2
				c.extMin = math.Min(seg.Start.Y, seg.End.Y)
				c.extMax = math.Max(seg.Start.Y, seg.End.Y)
			}
			byOrient[orient] = append(byOrient[orient], c)
		}
	}

	g := &Grid{Bounds: emptyBox()}
	g.Horizontal = collapseGridLines(byOrient[Horizontal], Horizontal, floor, params)
	g.Vertical = collapseGridLines(byOrient[Vertical], Vertical, floor, params)

	for _, gl := range g.Horizontal {
		g.Bounds = g.Bounds.AddPoint(Point{X: gl.ExtentMin, Y: gl.Coordinate})
		g.Bounds = g.Bounds.AddPoint(Point{X: gl.ExtentMax, Y: gl.Coordinate})
	}
	for _, gl := range g.Vertical {
		g.Bounds = g.Bounds.AddPoint(Point{X: gl.Coordinate, Y: gl.ExtentMin})
		g.Bounds = g.Bounds.AddPoint(Point{X: gl.Coordinate, Y: gl.ExtentMax})
	}

	g.MeanHSpacing, g.DominantHSpacing = spacingStats(g.Horizontal)
	g.MeanVSpacing, g.DominantVSpacing = spacingStats(g.Vertical)
	g.Regular = spacingRegular(g.Horizontal, g.MeanHSpacing, params.SpacingTolerance) &&
		spacingRegular(g.Vertical, g.MeanVSpacing, params.SpacingTolerance)

	conf := 0.0
	if n := len(g.Horizontal) + len(g.Vertical); n > 0 {
		for _, gl := range g.Lines() {
			conf += gl.Confidence
		}
		conf /= float64(n)
	}
	if g.Regular {
		conf += 0.1
	}
	g.Confidence, g.NeedsReview = annotate(conf, params.NeedsReviewThreshold)
	g.Reason = fmt.Sprintf("%d horizontal and %d vertical lines, regular spacing: %v",
		len(g.Horizontal), len(g.Vertical), g.Regular)

	monitoring.Debugf("grid: floor %s detected %dx%d lines, regular=%v, %d rejected",
		floor, len(g.Horizontal), len(g.Vertical), g.Regular, len(rejections))

	return g, rejections
}

// collapseGridLines is the pure reduction at the heart of grid
// detection: candidates are sorted by coordinate and greedily folded
// into clusters, each cluster collapsing into one GridLine.
func collapseGridLines(cands []gridCandidate, orient Orientation, floor string, params Params) []GridLine {
	if len(cands) == 0 {
		return nil
	}

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].coord != cands[j].coord {
			return cands[i].coord < cands[j].coord
		}
		return cands[i].src < cands[j].src
	})

	var clusters []*gridCluster
	for _, c := range cands {
		if len(clusters) > 0 {
			cur := clusters[len(clusters)-1]
			if math.Abs(c.coord-cur.centroid()) < params.SnapTolerance {
				cur.add(c)
				continue
			}
		}
		clusters = append(clusters, newGridCluster(c))
	}

	// Collapsing can pull centroids together; fold again until no two
	// adjacent lines sit within the snap tolerance.
	for {
		merged := false
		out := clusters[:0]
		for _, cl := range clusters {
			if len(out) > 0 && math.Abs(cl.centroid()-out[len(out)-1].centroid()) < params.SnapTolerance {
				out[len(out)-1].absorb(cl)
				merged = true
				continue
			}
			out = append(out, cl)
		}
		clusters = out
		if !merged {
			break
		}
	}

	lines := make([]GridLine, 0, len(clusters))
	for i, cl := range clusters {
		sort.Strings(cl.sources)
		label := gridLabel(orient, i)
		conf, reason := gridLineConfidence(cl, params)
		confidence, review := annotate(conf, params.NeedsReviewThreshold)
		lines = append(lines, GridLine{
			GUID:        ElementGUID(floor, "grid", string(orient), label),
			Label:       label,
			Orientation: orient,
			Coordinate:  cl.centroid(),
			ExtentMin:   cl.extMin,
			ExtentMax:   cl.extMax,
			SourceIDs:   cl.sources,
			Confidence:  confidence,
			Reason:      reason,
			NeedsReview: review,
		})
	}
	return lines
}

// gridLineConfidence scores one collapsed cluster: full confidence for
// well-populated clusters within half the angle tolerance, degrading
// linearly to the configured floor at the tolerance boundary. A lone
// unclustered candidate sits at the floor.
func gridLineConfidence(cl *gridCluster, params Params) (float64, string) {
	if cl.n < 2 {
		return params.ConfidenceFloor, "single unclustered segment"
	}
	half := params.AngleToleranceDeg / 2
	if cl.maxDev <= half {
		return 1.0, fmt.Sprintf("merged %d collinear segments, angular deviation %.2f°", cl.n, cl.maxDev)
	}
	frac := (cl.maxDev - half) / half
	conf := 1.0 - frac*(1.0-params.ConfidenceFloor)
	if conf < params.ConfidenceFloor {
		conf = params.ConfidenceFloor
	}
	return conf, fmt.Sprintf("merged %d segments with angular deviation %.2f° near tolerance", cl.n, cl.maxDev)
}

// gridLabel produces the stable naming convention: horizontal lines get
// letters (A, B, … Z, AA, AB, …), vertical lines get numbers (1, 2, …),
// both ascending by coordinate.
func gridLabel(orient Orientation, i int) string {
	if orient == Vertical {
		return fmt.Sprintf("%d", i+1)
	}
	if i < 26 {
		return string(rune('A' + i))
	}
	first := rune('A' + i/26 - 1)
	second := rune('A' + i%26)
	return string(first) + string(second)
}

// spacingStats returns the mean and median spacing between consecutive
// lines. Zero values mean fewer than two lines.
func spacingStats(lines []GridLine) (mean, dominant float64) {
	if len(lines) < 2 {
		return 0, 0
	}
	spacings := make([]float64, 0, len(lines)-1)
	for i := 0; i+1 < len(lines); i++ {
		spacings = append(spacings, lines[i+1].Coordinate-lines[i].Coordinate)
	}
	mean = stat.Mean(spacings, nil)
	sort.Float64s(spacings)
	dominant = stat.Quantile(0.5, stat.Empirical, spacings, nil)
	return mean, dominant
}

func spacingRegular(lines []GridLine, mean, tolerance float64) bool {
	if len(lines) < 2 || mean <= 0 {
		return true
	}
	for i := 0; i+1 < len(lines); i++ {
		spacing := lines[i+1].Coordinate - lines[i].Coordinate
		if math.Abs(spacing-mean)/mean > tolerance {
			return false
		}
	}
	return true
}
