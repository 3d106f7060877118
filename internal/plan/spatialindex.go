package plan

import "math"

// PointIndex accelerates proximity queries over a fixed point set using
// a regular grid of cells. Cell size should approximately match the
// query radius.
type PointIndex struct {
	cellSize float64
	points   []Point
	grid     map[int64][]int
}

// NewPointIndex builds an index over pts with the given cell size.
func NewPointIndex(pts []Point, cellSize float64) *PointIndex {
	if cellSize <= 0 {
		cellSize = 1
	}
	idx := &PointIndex{
		cellSize: cellSize,
		points:   pts,
		grid:     make(map[int64][]int, len(pts)),
	}
	for i, p := range pts {
		id := idx.cellID(idx.cell(p.X), idx.cell(p.Y))
		idx.grid[id] = append(idx.grid[id], i)
	}
	return idx
}

func (idx *PointIndex) cell(v float64) int64 {
	return int64(math.Floor(v / idx.cellSize))
}

// cellID maps a signed cell pair to a unique id via zigzag encoding and
// Szudzik's pairing function, handling negative coordinates correctly.
func (idx *PointIndex) cellID(cx, cy int64) int64 {
	var a, b int64
	if cx >= 0 {
		a = 2 * cx
	} else {
		a = -2*cx - 1
	}
	if cy >= 0 {
		b = 2 * cy
	} else {
		b = -2*cy - 1
	}
	if a >= b {
		return a*a + a + b
	}
	return a + b*b
}

// AnyWithin reports whether any indexed point lies within radius of q.
// Searches the 3x3 cell neighbourhood; radius must not exceed the cell
// size for the search to be exhaustive.
func (idx *PointIndex) AnyWithin(q Point, radius float64) bool {
	r2 := radius * radius
	cx := idx.cell(q.X)
	cy := idx.cell(q.Y)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, i := range idx.grid[idx.cellID(cx+dx, cy+dy)] {
				p := idx.points[i]
				ddx := p.X - q.X
				ddy := p.Y - q.Y
				if ddx*ddx+ddy*ddy <= r2 {
					return true
				}
			}
		}
	}
	return false
}
