// Package config loads reconstruction tuning from disk. A tuning file
// is a partial JSON document: fields omitted fall back to the built-in
// defaults, so project files only state what they change. Presets
// (drawing-convention bundles) layer on top via YAML, see preset.go.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/draftworks/plan2model/internal/plan"
)

// TuningConfig is the on-disk tuning schema. Pointer fields
// distinguish "absent" from "explicitly zero".
type TuningConfig struct {
	// Geometry tolerances (drawing units, assumed millimetres)
	SnapTolerance    *float64 `json:"snap_tolerance,omitempty"`
	AngleTolerance   *float64 `json:"angle_tolerance_deg,omitempty"`
	MinLineLength    *float64 `json:"min_line_length,omitempty"`
	SpacingTolerance *float64 `json:"spacing_tolerance,omitempty"`

	// Element defaults
	WallThickness  *float64 `json:"default_wall_thickness,omitempty"`
	WallConfidence *float64 `json:"default_wall_confidence,omitempty"`
	ColumnSize     *float64 `json:"default_column_size,omitempty"`
	SlabThickness  *float64 `json:"slab_thickness,omitempty"`
	SlabEdgeOffset *float64 `json:"slab_edge_offset,omitempty"`
	SlabSource     *string  `json:"slab_source,omitempty"` // "grid" or "walls"

	// Column placement rules
	ExcludePerimeterColumns *bool    `json:"exclude_perimeter_columns,omitempty"`
	ExcludedIntersections   []string `json:"excluded_intersections,omitempty"`

	// Confidence policy
	CornerBonus     *float64 `json:"corner_bonus,omitempty"`
	ConfidenceFloor *float64 `json:"confidence_floor,omitempty"`
	ReviewThreshold *float64 `json:"review_threshold,omitempty"`

	// Layer classification patterns (path.Match syntax, case-insensitive)
	GridLayers  []string `json:"grid_layers,omitempty"`
	GridExclude []string `json:"grid_exclude,omitempty"`
	WallLayers  []string `json:"wall_layers,omitempty"`
	WallExclude []string `json:"wall_exclude,omitempty"`

	// Workers caps concurrent floor processing. 0 means GOMAXPROCS.
	Workers *int `json:"workers,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a partial tuning file. Fields omitted from
// the JSON retain their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the set fields hold valid values. Cross-field
// checks happen later in plan.Params.Validate; this rejects values a
// file should never contain regardless of the rest.
func (c *TuningConfig) Validate() error {
	if c.SnapTolerance != nil && *c.SnapTolerance <= 0 {
		return fmt.Errorf("snap_tolerance must be positive, got %f", *c.SnapTolerance)
	}
	if c.AngleTolerance != nil && (*c.AngleTolerance <= 0 || *c.AngleTolerance >= 45) {
		return fmt.Errorf("angle_tolerance_deg must be in (0, 45), got %f", *c.AngleTolerance)
	}
	if c.ReviewThreshold != nil && (*c.ReviewThreshold < 0 || *c.ReviewThreshold > 1) {
		return fmt.Errorf("review_threshold must be between 0 and 1, got %f", *c.ReviewThreshold)
	}
	if c.ConfidenceFloor != nil && (*c.ConfidenceFloor < 0 || *c.ConfidenceFloor > 1) {
		return fmt.Errorf("confidence_floor must be between 0 and 1, got %f", *c.ConfidenceFloor)
	}
	if c.SlabSource != nil {
		switch plan.SlabSource(*c.SlabSource) {
		case plan.SlabFromGrid, plan.SlabFromWalls:
		default:
			return fmt.Errorf("slab_source must be %q or %q, got %q",
				plan.SlabFromGrid, plan.SlabFromWalls, *c.SlabSource)
		}
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	return nil
}

// GetSnapTolerance returns the snap_tolerance value or the default.
func (c *TuningConfig) GetSnapTolerance() float64 {
	if c.SnapTolerance == nil {
		return plan.DefaultSnapTolerance
	}
	return *c.SnapTolerance
}

// GetAngleTolerance returns the angle_tolerance_deg value or the default.
func (c *TuningConfig) GetAngleTolerance() float64 {
	if c.AngleTolerance == nil {
		return plan.DefaultAngleToleranceDeg
	}
	return *c.AngleTolerance
}

// GetReviewThreshold returns the review_threshold value or the default.
func (c *TuningConfig) GetReviewThreshold() float64 {
	if c.ReviewThreshold == nil {
		return plan.DefaultNeedsReviewThreshold
	}
	return *c.ReviewThreshold
}

// GetWorkers returns the workers value or 0 (auto).
func (c *TuningConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}

// Params converts the file values into pipeline parameters, filling
// defaults for unset fields.
func (c *TuningConfig) Params() plan.Params {
	p := plan.DefaultParams()
	setFloat(&p.SnapTolerance, c.SnapTolerance)
	setFloat(&p.AngleToleranceDeg, c.AngleTolerance)
	setFloat(&p.MinLineLength, c.MinLineLength)
	setFloat(&p.SpacingTolerance, c.SpacingTolerance)
	setFloat(&p.DefaultWallThickness, c.WallThickness)
	setFloat(&p.DefaultWallConfidence, c.WallConfidence)
	setFloat(&p.DefaultColumnSize, c.ColumnSize)
	setFloat(&p.SlabThickness, c.SlabThickness)
	setFloat(&p.SlabEdgeOffset, c.SlabEdgeOffset)
	setFloat(&p.ColumnCornerBonus, c.CornerBonus)
	setFloat(&p.ConfidenceFloor, c.ConfidenceFloor)
	setFloat(&p.NeedsReviewThreshold, c.ReviewThreshold)
	if c.SlabSource != nil {
		p.SlabSource = plan.SlabSource(*c.SlabSource)
	}
	if c.ExcludePerimeterColumns != nil {
		p.ExcludePerimeterColumns = *c.ExcludePerimeterColumns
	}
	p.ExcludedIntersections = append(p.ExcludedIntersections, c.ExcludedIntersections...)
	return p
}

// Mapping converts the layer patterns into a classification mapping,
// or the default AIA-style mapping when no patterns are set.
func (c *TuningConfig) Mapping() plan.LayerMapping {
	if len(c.GridLayers) == 0 && len(c.WallLayers) == 0 {
		m := plan.DefaultLayerMapping()
		m.GridExclude = append(m.GridExclude, c.GridExclude...)
		m.WallExclude = append(m.WallExclude, c.WallExclude...)
		return m
	}
	return plan.LayerMapping{
		Grid:        c.GridLayers,
		GridExclude: c.GridExclude,
		Wall:        c.WallLayers,
		WallExclude: c.WallExclude,
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
