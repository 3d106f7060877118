// Package plot renders per-floor plan drawings of a reconstructed
// model for visual QA: grid lines, wall centerlines, column markers
// and the slab boundary on one canvas. Elements flagged for review
// are drawn in red so they stand out during inspection.
package plot

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/draftworks/plan2model/internal/plan"
)

var (
	gridColor   = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	wallColor   = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	slabColor   = color.RGBA{R: 80, G: 140, B: 200, A: 255}
	columnColor = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	reviewColor = color.RGBA{R: 200, G: 40, B: 40, A: 255}
)

// WriteFloorPlans renders one PNG per floor into outputDir. Returns
// the number of plots written.
func WriteFloorPlans(m *plan.Model, outputDir string) (int, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create plot output dir: %w", err)
	}

	count := 0
	for i := range m.Floors {
		f := &m.Floors[i]
		file := filepath.Join(outputDir, fmt.Sprintf("floor_%s.png", f.Floor))
		if err := renderFloor(f, file); err != nil {
			return count, fmt.Errorf("floor %s: %w", f.Floor, err)
		}
		count++
	}
	return count, nil
}

// renderFloor draws one floor's elements onto a single square canvas.
func renderFloor(f *plan.FloorModel, file string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Floor %s (elev %.0f)", f.Floor, f.Elevation)
	p.X.Label.Text = "X (mm)"
	p.Y.Label.Text = "Y (mm)"

	// Slab boundary first so everything else draws on top of it.
	for _, s := range f.Slabs {
		if len(s.Boundary) < 2 {
			continue
		}
		pts := make(plotter.XYs, 0, len(s.Boundary)+1)
		for _, bp := range s.Boundary {
			pts = append(pts, plotter.XY{X: bp.X, Y: bp.Y})
		}
		pts = append(pts, plotter.XY{X: s.Boundary[0].X, Y: s.Boundary[0].Y})
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = elementColor(slabColor, s.NeedsReview)
		line.Width = vg.Points(1)
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(line)
	}

	if f.Grid != nil {
		for _, gl := range f.Grid.Lines() {
			line, err := plotter.NewLine(gridLinePoints(gl))
			if err != nil {
				return err
			}
			line.Color = elementColor(gridColor, gl.NeedsReview)
			line.Width = vg.Points(0.5)
			line.Dashes = []vg.Length{vg.Points(8), vg.Points(3)}
			p.Add(line)
		}
	}

	for _, w := range f.Walls {
		if len(w.Centerline) < 2 {
			continue
		}
		pts := make(plotter.XYs, 0, len(w.Centerline))
		for _, cp := range w.Centerline {
			pts = append(pts, plotter.XY{X: cp.X, Y: cp.Y})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = elementColor(wallColor, w.NeedsReview)
		line.Width = vg.Points(2)
		p.Add(line)
	}

	var colPts, colReviewPts plotter.XYs
	for _, c := range f.Columns {
		xy := plotter.XY{X: c.Position.X, Y: c.Position.Y}
		if c.NeedsReview {
			colReviewPts = append(colReviewPts, xy)
		} else {
			colPts = append(colPts, xy)
		}
	}
	if err := addColumnScatter(p, colPts, columnColor); err != nil {
		return err
	}
	if err := addColumnScatter(p, colReviewPts, reviewColor); err != nil {
		return err
	}

	return p.Save(10*vg.Inch, 10*vg.Inch, file)
}

func addColumnScatter(p *plot.Plot, pts plotter.XYs, c color.Color) error {
	if len(pts) == 0 {
		return nil
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Shape = draw.BoxGlyph{}
	scatter.GlyphStyle.Color = c
	scatter.GlyphStyle.Radius = vg.Points(3)
	p.Add(scatter)
	return nil
}

func gridLinePoints(gl plan.GridLine) plotter.XYs {
	if gl.Orientation == plan.Horizontal {
		return plotter.XYs{
			{X: gl.ExtentMin, Y: gl.Coordinate},
			{X: gl.ExtentMax, Y: gl.Coordinate},
		}
	}
	return plotter.XYs{
		{X: gl.Coordinate, Y: gl.ExtentMin},
		{X: gl.Coordinate, Y: gl.ExtentMax},
	}
}

func elementColor(base color.Color, needsReview bool) color.Color {
	if needsReview {
		return reviewColor
	}
	return base
}
