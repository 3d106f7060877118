package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/draftworks/plan2model/internal/plan"
)

func sampleModel() *plan.Model {
	return &plan.Model{Floors: []plan.FloorModel{{
		Floor: "ground",
		Grid: &plan.Grid{
			Horizontal: []plan.GridLine{
				{Label: "A", Orientation: plan.Horizontal, Coordinate: 0, ExtentMin: 0, ExtentMax: 4000, Confidence: 1.0},
			},
			Vertical: []plan.GridLine{
				{Label: "1", Orientation: plan.Vertical, Coordinate: 0, ExtentMin: 0, ExtentMax: 5000, Confidence: 0.5, NeedsReview: true},
			},
		},
		Walls: []plan.WallSegment{{
			Centerline:  []plan.Point{{X: 0, Y: 0}, {X: 4000, Y: 0}},
			Orientation: plan.Horizontal,
			Confidence:  0.75,
		}},
		Columns: []plan.Column{{GridRef: "A1", Position: plan.Point{X: 0, Y: 0}, Confidence: 0.5, NeedsReview: true}},
		Diagnostics: plan.Diagnostics{
			Stages: []plan.StageCounts{
				{Stage: "ingest", Input: 4, Produced: 4},
				{Stage: "grid", Input: 2, Produced: 2, Rejected: 1},
			},
		},
	}}}
}

func TestWriteRendersHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	if err := Write(path, sampleModel()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	html := string(data)
	if !strings.Contains(html, "Floor ground element confidence") {
		t.Error("scatter title missing from rendered report")
	}
	if !strings.Contains(html, "Floor ground stage counts") {
		t.Error("stage bar title missing from rendered report")
	}
	if !strings.Contains(html, "Floor ground confidence distribution") {
		t.Error("confidence histogram title missing from rendered report")
	}
	if !strings.Contains(html, "needs_review=2") {
		t.Error("needs-review count missing from subtitle")
	}
}

func TestWriteBadPath(t *testing.T) {
	if err := Write(filepath.Join(t.TempDir(), "missing", "report.html"), sampleModel()); err == nil {
		t.Error("unwritable path should be an error")
	}
}
