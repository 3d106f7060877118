package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/draftworks/plan2model/internal/plan"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadFullFile(t *testing.T) {
	path := writeTemp(t, "ground.json", `{
		"floor": "ground",
		"elevation": 150,
		"primitives": [
			{"id": "g1", "kind": "line", "layer": "A-GRID", "points": [{"x": 0, "y": 0}, {"x": 4000, "y": 0}]},
			{"kind": "polyline", "layer": "A-WALL", "points": [{"x": 0, "y": 0}, {"x": 4000, "y": 0}, {"x": 4000, "y": 5000}], "thickness": 200}
		]
	}`)

	f, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.Floor != "ground" || f.Elevation != 150 {
		t.Errorf("header = %q/%v", f.Floor, f.Elevation)
	}
	if len(f.Primitives) != 2 {
		t.Fatalf("primitives = %d, want 2", len(f.Primitives))
	}
	if f.Primitives[0].ID != "g1" {
		t.Errorf("explicit id overwritten: %q", f.Primitives[0].ID)
	}
	// Missing id gets a deterministic positional one.
	if f.Primitives[1].ID != "ground#1" {
		t.Errorf("positional id = %q, want %q", f.Primitives[1].ID, "ground#1")
	}
	if f.Primitives[1].Thickness != 200 {
		t.Errorf("thickness = %v, want 200", f.Primitives[1].Thickness)
	}
}

func TestReadDefaultsFloorFromFilename(t *testing.T) {
	path := writeTemp(t, "level-02.json", `{"primitives": [{"points": [{"x": 0, "y": 0}, {"x": 1, "y": 0}], "layer": "A-GRID"}]}`)
	f, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.Floor != "level-02" {
		t.Errorf("floor = %q, want %q", f.Floor, "level-02")
	}
	if f.Primitives[0].Kind != plan.KindLine {
		t.Errorf("kind = %q, want default line", f.Primitives[0].Kind)
	}
	if f.Primitives[0].ID != "level-02#0" {
		t.Errorf("id = %q", f.Primitives[0].ID)
	}
}

func TestReadRejectsWrongExtension(t *testing.T) {
	path := writeTemp(t, "floor.txt", "{}")
	if _, err := Read(path); err == nil {
		t.Error("non-json extension should be rejected")
	}
}

func TestReadRejectsMalformedJSON(t *testing.T) {
	path := writeTemp(t, "bad.json", "{not json")
	if _, err := Read(path); err == nil {
		t.Error("malformed JSON should be rejected")
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("missing file should be an error")
	}
}
