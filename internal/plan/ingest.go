package plan

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/draftworks/plan2model/internal/monitoring"
)

// Stage names used in diagnostics and rejection records.
const (
	StageIngest  = "ingest"
	StageGrid    = "grid"
	StageWalls   = "walls"
	StageColumns = "columns"
	StageSlabs   = "slabs"
)

// IngestResult is the output of the entity ingestor: the classified
// entity set plus per-entity rejections and match diagnostics.
type IngestResult struct {
	Entities    []ClassifiedEntity
	Rejections  []Rejection
	RoleCounts  map[Role]int
	LayerCounts map[string]int
}

// matchLayer reports whether the layer name matches any of the given
// fnmatch-style patterns, case-insensitively. Malformed patterns never
// match; they are caught earlier by validateMapping.
func matchLayer(layer string, patterns []string) bool {
	up := strings.ToUpper(layer)
	for _, pat := range patterns {
		if ok, err := path.Match(strings.ToUpper(pat), up); err == nil && ok {
			return true
		}
	}
	return false
}

// classify resolves the semantic role for one layer. Exclusions win
// over inclusions within a role.
func classify(layer string, m LayerMapping) Role {
	grid := matchLayer(layer, m.Grid) && !matchLayer(layer, m.GridExclude)
	wall := matchLayer(layer, m.Wall) && !matchLayer(layer, m.WallExclude)
	switch {
	case grid && wall:
		// Ambiguity is screened beforehand; classify is never reached
		// with an overlapping layer.
		return RoleIgnored
	case grid:
		return RoleGridCandidate
	case wall:
		return RoleWallCandidate
	default:
		return RoleIgnored
	}
}

// validateMapping fails on malformed patterns and on structurally
// ambiguous configuration: a layer present in the input that would
// resolve to more than one role.
func validateMapping(m LayerMapping, layers []string) error {
	for _, pats := range [][]string{m.Grid, m.GridExclude, m.Wall, m.WallExclude} {
		for _, pat := range pats {
			if _, err := path.Match(strings.ToUpper(pat), "X"); err != nil {
				return validationErrorf(StageIngest, "malformed layer pattern %q: %v", pat, err)
			}
		}
	}
	for _, layer := range layers {
		grid := matchLayer(layer, m.Grid) && !matchLayer(layer, m.GridExclude)
		wall := matchLayer(layer, m.Wall) && !matchLayer(layer, m.WallExclude)
		if grid && wall {
			return validationErrorf(StageIngest,
				"layer %q matches both grid and wall patterns; disambiguate the layer mapping", layer)
		}
	}
	return nil
}

// Ingest validates and classifies raw primitives. It fails fast with a
// *ValidationError when the configuration is ambiguous, when any
// primitive carries non-finite or zero-length coordinates, or when no
// primitive resolves to the grid-candidate role required downstream.
// Arcs are rejected per-entity (curved geometry is out of scope for the
// core), as are primitives shorter than the configured minimum.
func Ingest(primitives []RawPrimitive, mapping LayerMapping, params Params) (*IngestResult, error) {
	layerSet := make(map[string]struct{})
	for _, p := range primitives {
		layerSet[p.Layer] = struct{}{}
	}
	layers := make([]string, 0, len(layerSet))
	for l := range layerSet {
		layers = append(layers, l)
	}
	sort.Strings(layers)

	if err := validateMapping(mapping, layers); err != nil {
		return nil, err
	}

	res := &IngestResult{
		RoleCounts:  make(map[Role]int),
		LayerCounts: make(map[string]int),
	}

	for _, p := range primitives {
		if p.Kind != KindArc {
			for _, pt := range p.Points {
				if !pt.IsFinite() {
					return nil, validationErrorf(StageIngest,
						"primitive %s on layer %q has non-finite coordinates", p.ID, p.Layer)
				}
			}
			if length := primitiveLength(p); length == 0 {
				return nil, validationErrorf(StageIngest,
					"primitive %s on layer %q has zero-length geometry", p.ID, p.Layer)
			}
		}

		role := classify(p.Layer, mapping)

		switch {
		case p.Kind == KindArc:
			res.Rejections = append(res.Rejections, Rejection{
				PrimitiveID: p.ID, Layer: p.Layer, Stage: StageIngest,
				Reason: "arc primitives are not supported by the orthogonal core",
			})
			continue
		case role != RoleIgnored && params.MinLineLength > 0 && primitiveLength(p) < params.MinLineLength:
			res.Rejections = append(res.Rejections, Rejection{
				PrimitiveID: p.ID, Layer: p.Layer, Stage: StageIngest,
				Reason: fmt.Sprintf("length below configured minimum %g", params.MinLineLength),
			})
			continue
		}

		res.Entities = append(res.Entities, ClassifiedEntity{Primitive: p, Role: role})
		res.RoleCounts[role]++
		if role != RoleIgnored {
			res.LayerCounts[p.Layer]++
		}
	}

	if res.RoleCounts[RoleGridCandidate] == 0 {
		return nil, validationErrorf(StageIngest,
			"no primitives matched the grid-candidate role; grid detection is mandatory (checked %d layers)", len(layers))
	}

	monitoring.Debugf("ingest: %d primitives, %d grid candidates, %d wall candidates, %d rejected",
		len(primitives), res.RoleCounts[RoleGridCandidate], res.RoleCounts[RoleWallCandidate], len(res.Rejections))

	return res, nil
}

// byRole returns the classified entities holding the given role.
func (r *IngestResult) byRole(role Role) []ClassifiedEntity {
	var out []ClassifiedEntity
	for _, e := range r.Entities {
		if e.Role == role {
			out = append(out, e)
		}
	}
	return out
}

// GridCandidates returns entities classified for grid detection.
func (r *IngestResult) GridCandidates() []ClassifiedEntity { return r.byRole(RoleGridCandidate) }

// WallCandidates returns entities classified for wall detection.
func (r *IngestResult) WallCandidates() []ClassifiedEntity { return r.byRole(RoleWallCandidate) }

func primitiveLength(p RawPrimitive) float64 {
	total := 0.0
	for _, s := range p.Segments() {
		total += s.Length()
	}
	return total
}
