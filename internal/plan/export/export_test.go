package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/draftworks/plan2model/internal/plan"
)

func sampleModel() *plan.Model {
	return &plan.Model{Floors: []plan.FloorModel{{
		Floor:     "ground",
		Elevation: 0,
		Grid: &plan.Grid{
			Horizontal: []plan.GridLine{
				{GUID: "g-a", Label: "A", Confidence: 1.0},
				{GUID: "g-b", Label: "B", Confidence: 0.5, NeedsReview: true},
			},
			Vertical: []plan.GridLine{
				{GUID: "g-1", Label: "1", Confidence: 0.9},
			},
		},
		Walls: []plan.WallSegment{
			{GUID: "w-1", Confidence: 0.75},
			{GUID: "w-2", Confidence: 0.55, NeedsReview: true},
		},
		Columns: []plan.Column{
			{GUID: "c-a1", GridRef: "A1", Confidence: 0.9},
		},
		Slabs: []plan.Slab{
			{GUID: "s-0", Confidence: 0.6},
		},
		Diagnostics: plan.Diagnostics{
			Rejections: []plan.Rejection{{PrimitiveID: "x", Stage: "ingest", Reason: "arc"}},
		},
	}}}
}

func TestBuildSummary(t *testing.T) {
	doc := Build(sampleModel(), time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC))

	if doc.Schema != SchemaVersion {
		t.Errorf("schema = %q, want %q", doc.Schema, SchemaVersion)
	}
	if !doc.Provisional {
		t.Error("document must be marked provisional")
	}

	s := doc.Summary
	if s.GridLines != 3 || s.Walls != 2 || s.Columns != 1 || s.Slabs != 1 {
		t.Errorf("summary counts = %+v", s)
	}
	if s.NeedsReview != 2 {
		t.Errorf("needs_review = %d, want 2", s.NeedsReview)
	}
	if s.Rejections != 1 {
		t.Errorf("rejections = %d, want 1", s.Rejections)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	if err := Write(path, sampleModel(), now); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if !doc.GeneratedAt.Equal(now) {
		t.Errorf("generated_at = %v, want %v", doc.GeneratedAt, now)
	}
	if len(doc.Floors) != 1 || doc.Floors[0].Floor != "ground" {
		t.Errorf("floors round-trip mismatch: %+v", doc.Floors)
	}
	if doc.Floors[0].Grid.Horizontal[1].NeedsReview != true {
		t.Error("needs_review flag lost in round trip")
	}
}
