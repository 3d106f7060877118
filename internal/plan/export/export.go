// Package export serializes a pipeline run into the provisional BIM
// exchange document consumed by the external model-authoring codec.
// Every element keeps its stable identifier, confidence and
// needs-review metadata; the document is explicitly marked provisional
// so downstream tooling never treats it as authoritative geometry.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/draftworks/plan2model/internal/plan"
)

// SchemaVersion identifies the exchange document layout.
const SchemaVersion = "plan2model/1"

// Document is the exchange root handed to the authoring codec.
type Document struct {
	Schema      string    `json:"schema"`
	GeneratedAt time.Time `json:"generated_at"`

	// Provisional marks the whole element set as first-pass scaffold
	// geometry expected to need manual correction.
	Provisional bool `json:"provisional"`

	Floors  []plan.FloorModel `json:"floors"`
	Summary Summary           `json:"summary"`
}

// Summary aggregates element and review counts across floors.
type Summary struct {
	GridLines   int `json:"grid_lines"`
	Walls       int `json:"walls"`
	Columns     int `json:"columns"`
	Slabs       int `json:"slabs"`
	NeedsReview int `json:"needs_review"`
	Rejections  int `json:"rejections"`
}

// Build assembles the exchange document for a completed run.
func Build(m *plan.Model, now time.Time) *Document {
	doc := &Document{
		Schema:      SchemaVersion,
		GeneratedAt: now.UTC(),
		Provisional: true,
		Floors:      m.Floors,
	}
	for _, f := range m.Floors {
		if f.Grid != nil {
			doc.Summary.GridLines += len(f.Grid.Horizontal) + len(f.Grid.Vertical)
			for _, gl := range f.Grid.Lines() {
				if gl.NeedsReview {
					doc.Summary.NeedsReview++
				}
			}
		}
		doc.Summary.Walls += len(f.Walls)
		doc.Summary.Columns += len(f.Columns)
		doc.Summary.Slabs += len(f.Slabs)
		for _, w := range f.Walls {
			if w.NeedsReview {
				doc.Summary.NeedsReview++
			}
		}
		for _, c := range f.Columns {
			if c.NeedsReview {
				doc.Summary.NeedsReview++
			}
		}
		for _, s := range f.Slabs {
			if s.NeedsReview {
				doc.Summary.NeedsReview++
			}
		}
		doc.Summary.Rejections += len(f.Diagnostics.Rejections)
	}
	return doc
}

// Write builds and writes the document as indented JSON.
func Write(path string, m *plan.Model, now time.Time) error {
	doc := Build(m, now)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode model document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model document: %w", err)
	}
	return nil
}
