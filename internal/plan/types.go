package plan

import (
	"strings"

	"github.com/google/uuid"
)

// PrimitiveKind is the geometric kind of a raw drawing primitive.
type PrimitiveKind string

const (
	KindLine     PrimitiveKind = "line"
	KindPolyline PrimitiveKind = "polyline"
	KindArc      PrimitiveKind = "arc"
)

// RawPrimitive is one entity record produced by the external drawing
// codec. It is immutable after load; detectors never modify it.
type RawPrimitive struct {
	ID     string        `json:"id"`
	Kind   PrimitiveKind `json:"kind"`
	Points []Point       `json:"points"`
	Layer  string        `json:"layer"`

	// BlockRef is the originating block-insert id, when any.
	BlockRef string `json:"block_ref,omitempty"`

	// Thickness is an explicitly encoded wall thickness from source
	// metadata, or 0 when the drawing does not encode one.
	Thickness float64 `json:"thickness,omitempty"`
}

// Segments returns the consecutive segments of the primitive. A line
// yields one segment, a polyline of n points yields n-1.
func (p RawPrimitive) Segments() []Segment {
	if len(p.Points) < 2 {
		return nil
	}
	segs := make([]Segment, 0, len(p.Points)-1)
	for i := 0; i+1 < len(p.Points); i++ {
		segs = append(segs, Segment{Start: p.Points[i], End: p.Points[i+1]})
	}
	return segs
}

// Role is the semantic role assigned to a primitive by layer
// classification.
type Role string

const (
	RoleGridCandidate Role = "grid-candidate"
	RoleWallCandidate Role = "wall-candidate"
	RoleIgnored       Role = "ignored"
)

// ClassifiedEntity is a RawPrimitive tagged with its resolved role.
// One-to-one with the primitive it wraps.
type ClassifiedEntity struct {
	Primitive RawPrimitive `json:"primitive"`
	Role      Role         `json:"role"`
}

// GridLine is a named axis-aligned reference line collapsed from one or
// more collinear grid candidates.
type GridLine struct {
	GUID        string      `json:"guid"`
	Label       string      `json:"label"`
	Orientation Orientation `json:"orientation"`

	// Coordinate is the constant axis value (Y for horizontal lines,
	// X for vertical).
	Coordinate float64 `json:"coordinate"`

	// ExtentMin/ExtentMax bound the line along its running axis.
	ExtentMin float64 `json:"extent_min"`
	ExtentMax float64 `json:"extent_max"`

	SourceIDs   []string `json:"source_ids"`
	Confidence  float64  `json:"confidence"`
	Reason      string   `json:"reason"`
	NeedsReview bool     `json:"needs_review"`
}

// Grid is the per-floor grid summary: the ordered line sets plus
// spacing regularity metrics.
type Grid struct {
	Horizontal []GridLine  `json:"horizontal"`
	Vertical   []GridLine  `json:"vertical"`
	Bounds     BoundingBox `json:"bounds"`

	Regular          bool    `json:"regular"`
	MeanHSpacing     float64 `json:"mean_h_spacing,omitempty"`
	MeanVSpacing     float64 `json:"mean_v_spacing,omitempty"`
	DominantHSpacing float64 `json:"dominant_h_spacing,omitempty"`
	DominantVSpacing float64 `json:"dominant_v_spacing,omitempty"`

	Confidence  float64 `json:"confidence"`
	Reason      string  `json:"reason"`
	NeedsReview bool    `json:"needs_review"`
}

// Lines returns horizontal then vertical lines in label order.
func (g *Grid) Lines() []GridLine {
	out := make([]GridLine, 0, len(g.Horizontal)+len(g.Vertical))
	out = append(out, g.Horizontal...)
	out = append(out, g.Vertical...)
	return out
}

// IntersectionKind classifies how two wall centerlines meet.
type IntersectionKind string

const (
	IntersectionT     IntersectionKind = "T"
	IntersectionL     IntersectionKind = "L"
	IntersectionCross IntersectionKind = "CROSS"
	IntersectionNone  IntersectionKind = "NONE"
)

// IntersectionRef records one wall-to-wall relation. Other is an index
// into the flat wall slice of the same floor; index handles keep the
// relation graph free of ownership cycles even for closed rooms.
type IntersectionRef struct {
	Other int              `json:"other"`
	Kind  IntersectionKind `json:"kind"`
	At    Point            `json:"at"`
}

// WallSegment is one merged wall run: a thickness-bearing centerline
// with its intersection relations.
type WallSegment struct {
	GUID        string      `json:"guid"`
	Centerline  []Point     `json:"centerline"`
	Orientation Orientation `json:"orientation"`

	// Coordinate is the constant axis value of the centerline.
	Coordinate float64 `json:"coordinate"`

	Thickness     float64           `json:"thickness"`
	SourceIDs     []string          `json:"source_ids"`
	MergedCount   int               `json:"merged_count"`
	Intersections []IntersectionRef `json:"intersections,omitempty"`

	Confidence  float64 `json:"confidence"`
	Reason      string  `json:"reason"`
	NeedsReview bool    `json:"needs_review"`
}

// Column is a point element placed at a qualifying grid intersection.
type Column struct {
	GUID     string  `json:"guid"`
	GridRef  string  `json:"grid_ref"`
	Position Point   `json:"position"`
	Size     float64 `json:"size"`

	// SourceGrids holds the labels of the horizontal and vertical grid
	// lines whose intersection placed this column.
	SourceGrids [2]string `json:"source_grids"`

	Confidence  float64 `json:"confidence"`
	Reason      string  `json:"reason"`
	NeedsReview bool    `json:"needs_review"`
}

// Slab is a per-floor outline element.
type Slab struct {
	GUID      string  `json:"guid"`
	Boundary  []Point `json:"boundary"`
	Elevation float64 `json:"elevation"`
	Thickness float64 `json:"thickness"`

	Confidence  float64 `json:"confidence"`
	Reason      string  `json:"reason"`
	NeedsReview bool    `json:"needs_review"`
}

// Rejection is one non-fatal per-entity rejection, accumulated into the
// diagnostics report while the run continues.
type Rejection struct {
	PrimitiveID string `json:"primitive_id"`
	Layer       string `json:"layer,omitempty"`
	Stage       string `json:"stage"`
	Reason      string `json:"reason"`
}

// StageCounts summarises one pipeline stage for diagnostics.
type StageCounts struct {
	Stage    string `json:"stage"`
	Input    int    `json:"input"`
	Produced int    `json:"produced"`
	Rejected int    `json:"rejected"`
}

// Diagnostics is the per-floor detection report handed to the exporter
// boundary alongside the element set.
type Diagnostics struct {
	RoleCounts  map[Role]int   `json:"role_counts"`
	LayerCounts map[string]int `json:"layer_counts"`
	Stages      []StageCounts  `json:"stages"`
	Rejections  []Rejection    `json:"rejections"`
}

// FloorModel is the complete element set for one floor.
type FloorModel struct {
	Floor     string  `json:"floor"`
	Elevation float64 `json:"elevation"`

	Grid    *Grid         `json:"grid,omitempty"`
	Walls   []WallSegment `json:"walls"`
	Columns []Column      `json:"columns"`
	Slabs   []Slab        `json:"slabs"`

	Diagnostics Diagnostics `json:"diagnostics"`
}

// Model is the full multi-floor output of a pipeline run.
type Model struct {
	Floors []FloorModel `json:"floors"`
}

// elementNamespace seeds deterministic element identifiers. Fixed so
// that identical input yields identical GUIDs across runs, which is what
// lets reviewers trace provisional elements back to source primitives.
var elementNamespace = uuid.MustParse("7d44bf46-9f3e-4f7a-8ab1-52c28f2b10c4")

// ElementGUID derives a stable identifier from the element's defining
// parts (floor, kind, label, source ids).
func ElementGUID(parts ...string) string {
	return uuid.NewSHA1(elementNamespace, []byte(strings.Join(parts, "/"))).String()
}
