package plan

import "fmt"

// Defaults for detection tuning. Units follow the drawing frame
// (millimetres for the common case).
const (
	DefaultSnapTolerance        = 50.0
	DefaultAngleToleranceDeg    = 5.0
	DefaultWallThickness        = 150.0
	DefaultWallConfidence       = 0.7
	DefaultColumnSize           = 300.0
	DefaultColumnCornerBonus    = 0.1
	DefaultConfidenceFloor      = 0.5
	DefaultNeedsReviewThreshold = 0.6
	DefaultSlabEdgeOffset       = 500.0
	DefaultSlabThickness        = 150.0
	DefaultSlabConfidence       = 0.6
	DefaultSpacingTolerance     = 0.15
)

// SlabSource selects which element set dominates slab outline
// derivation.
type SlabSource string

const (
	SlabFromGrid  SlabSource = "grid"
	SlabFromWalls SlabSource = "walls"
)

// Params holds the numeric tolerances and placement rules for one
// pipeline run. Zero values are replaced by defaults in Normalize, so a
// partially populated Params is safe.
type Params struct {
	// SnapTolerance is the coordinate distance below which two nearby
	// primitives refer to the same real-world line or edge.
	SnapTolerance float64

	// AngleToleranceDeg bounds acceptable deviation from the axis
	// directions 0/90/180/270. Entities outside it are rejected.
	AngleToleranceDeg float64

	// MinLineLength drops shorter candidates before detection.
	// 0 disables the filter.
	MinLineLength float64

	DefaultWallThickness  float64
	DefaultWallConfidence float64

	DefaultColumnSize float64
	ColumnCornerBonus float64

	// ExcludePerimeterColumns skips columns on the outermost grid lines
	// (perimeter columns typically live inside walls).
	ExcludePerimeterColumns bool

	// ExcludedIntersections lists grid references ("A1" style) where no
	// column is placed.
	ExcludedIntersections []string

	ConfidenceFloor      float64
	NeedsReviewThreshold float64

	SlabSource     SlabSource
	SlabEdgeOffset float64
	SlabThickness  float64
	SlabConfidence float64

	// SpacingTolerance is the fractional deviation from the mean grid
	// spacing still considered regular.
	SpacingTolerance float64
}

// DefaultParams returns production-default detection parameters.
func DefaultParams() Params {
	return Params{
		SnapTolerance:         DefaultSnapTolerance,
		AngleToleranceDeg:     DefaultAngleToleranceDeg,
		DefaultWallThickness:  DefaultWallThickness,
		DefaultWallConfidence: DefaultWallConfidence,
		DefaultColumnSize:     DefaultColumnSize,
		ColumnCornerBonus:     DefaultColumnCornerBonus,
		ConfidenceFloor:       DefaultConfidenceFloor,
		NeedsReviewThreshold:  DefaultNeedsReviewThreshold,
		SlabSource:            SlabFromGrid,
		SlabEdgeOffset:        DefaultSlabEdgeOffset,
		SlabThickness:         DefaultSlabThickness,
		SlabConfidence:        DefaultSlabConfidence,
		SpacingTolerance:      DefaultSpacingTolerance,
	}
}

// Normalize fills zero-valued fields with defaults.
func (p Params) Normalize() Params {
	d := DefaultParams()
	if p.SnapTolerance <= 0 {
		p.SnapTolerance = d.SnapTolerance
	}
	if p.AngleToleranceDeg <= 0 {
		p.AngleToleranceDeg = d.AngleToleranceDeg
	}
	if p.DefaultWallThickness <= 0 {
		p.DefaultWallThickness = d.DefaultWallThickness
	}
	if p.DefaultWallConfidence <= 0 {
		p.DefaultWallConfidence = d.DefaultWallConfidence
	}
	if p.DefaultColumnSize <= 0 {
		p.DefaultColumnSize = d.DefaultColumnSize
	}
	if p.ColumnCornerBonus <= 0 {
		p.ColumnCornerBonus = d.ColumnCornerBonus
	}
	if p.ConfidenceFloor <= 0 {
		p.ConfidenceFloor = d.ConfidenceFloor
	}
	if p.NeedsReviewThreshold <= 0 {
		p.NeedsReviewThreshold = d.NeedsReviewThreshold
	}
	if p.SlabSource == "" {
		p.SlabSource = d.SlabSource
	}
	if p.SlabEdgeOffset <= 0 {
		p.SlabEdgeOffset = d.SlabEdgeOffset
	}
	if p.SlabThickness <= 0 {
		p.SlabThickness = d.SlabThickness
	}
	if p.SlabConfidence <= 0 {
		p.SlabConfidence = d.SlabConfidence
	}
	if p.SpacingTolerance <= 0 {
		p.SpacingTolerance = d.SpacingTolerance
	}
	return p
}

// Validate rejects parameter combinations the detectors cannot work
// with. Call on normalized params.
func (p Params) Validate() error {
	if p.SnapTolerance <= 0 {
		return fmt.Errorf("snap_tolerance must be positive, got %g", p.SnapTolerance)
	}
	if p.AngleToleranceDeg <= 0 || p.AngleToleranceDeg >= 45 {
		return fmt.Errorf("angle_tolerance must be in (0, 45) degrees, got %g", p.AngleToleranceDeg)
	}
	if p.DefaultWallThickness <= 0 {
		return fmt.Errorf("default_wall_thickness must be positive, got %g", p.DefaultWallThickness)
	}
	if p.ConfidenceFloor < 0 || p.ConfidenceFloor > 1 {
		return fmt.Errorf("confidence_floor must be in [0,1], got %g", p.ConfidenceFloor)
	}
	if p.NeedsReviewThreshold < 0 || p.NeedsReviewThreshold > 1 {
		return fmt.Errorf("needs_review_threshold must be in [0,1], got %g", p.NeedsReviewThreshold)
	}
	if p.SlabSource != SlabFromGrid && p.SlabSource != SlabFromWalls {
		return fmt.Errorf("slab_source must be %q or %q, got %q", SlabFromGrid, SlabFromWalls, p.SlabSource)
	}
	return nil
}

// LayerMapping maps layer-name patterns (fnmatch-style globs, matched
// case-insensitively) to semantic roles. Exclusion patterns win over
// inclusion patterns, mirroring common CAD layer standards where e.g.
// A-WALL-PATT carries hatching rather than wall geometry.
type LayerMapping struct {
	Grid        []string `json:"grid" yaml:"grid"`
	GridExclude []string `json:"grid_exclude,omitempty" yaml:"grid_exclude,omitempty"`
	Wall        []string `json:"wall" yaml:"wall"`
	WallExclude []string `json:"wall_exclude,omitempty" yaml:"wall_exclude,omitempty"`
}

// DefaultLayerMapping covers the common AIA-style structural layer
// names.
func DefaultLayerMapping() LayerMapping {
	return LayerMapping{
		Grid:        []string{"*GRID*", "*AXIS*", "S-GRID*", "A-GRID*"},
		Wall:        []string{"*WALL*", "A-WALL*", "S-WALL*"},
		WallExclude: []string{"*WALL*PATT*", "*WALL*HATCH*"},
	}
}
