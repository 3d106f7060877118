// Package source reads RawPrimitive records from the JSON interchange
// files the external drawing codec produces. The CAD format itself
// (DXF/DWG parsing) stays outside this module; this is the input
// boundary contract only.
package source

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/draftworks/plan2model/internal/plan"
)

// maxFileSize guards against accidentally pointing the reader at a
// non-interchange file (64MB covers any realistic floor export).
const maxFileSize = 64 * 1024 * 1024

// File is the on-disk shape of one floor export.
type File struct {
	Floor      string              `json:"floor,omitempty"`
	Elevation  float64             `json:"elevation,omitempty"`
	Primitives []plan.RawPrimitive `json:"primitives"`
}

// Read loads one floor export. Primitives without an id get a
// deterministic positional one so rejections stay traceable.
func Read(path string) (*File, error) {
	clean := filepath.Clean(path)
	if ext := filepath.Ext(clean); ext != ".json" {
		return nil, fmt.Errorf("primitive file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to stat primitive file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("primitive file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to read primitive file: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse primitive JSON: %w", err)
	}

	if f.Floor == "" {
		base := filepath.Base(clean)
		f.Floor = base[:len(base)-len(filepath.Ext(base))]
	}
	for i := range f.Primitives {
		if f.Primitives[i].ID == "" {
			f.Primitives[i].ID = fmt.Sprintf("%s#%d", f.Floor, i)
		}
		if f.Primitives[i].Kind == "" {
			f.Primitives[i].Kind = plan.KindLine
		}
	}
	return &f, nil
}
