// Package pipeline is the composition root for the reconstruction
// core: it sequences the per-floor stages (ingest → grid → walls →
// columns → slabs) and fans independent floors out over workers. It
// imports the stage implementations; none of them import pipeline.
package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/draftworks/plan2model/internal/monitoring"
	"github.com/draftworks/plan2model/internal/plan"
)

// FloorInput is one floor's immutable primitive slice plus its
// elevation reference.
type FloorInput struct {
	Name       string
	Elevation  float64
	Primitives []plan.RawPrimitive
}

// Runtime bundles the run-scoped dependencies of a conversion. Passing
// a Runtime through constructors keeps wiring explicit and testing
// deterministic.
type Runtime struct {
	Params  plan.Params
	Mapping plan.LayerMapping

	// Workers caps concurrent floor processing. 0 means GOMAXPROCS.
	Workers int
}

// New returns a Runtime with normalized, validated parameters.
func New(params plan.Params, mapping plan.LayerMapping) (*Runtime, error) {
	params = params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline parameters: %w", err)
	}
	if len(mapping.Grid) == 0 {
		mapping = plan.DefaultLayerMapping()
	}
	return &Runtime{Params: params, Mapping: mapping}, nil
}

// Run converts every floor. Floors are independent and processed
// concurrently on their own immutable slices; within a floor the stages
// run in strict sequence. A *ValidationError on any floor aborts the
// whole run with no partial output; per-entity rejections accumulate in
// each floor's diagnostics instead.
func (rt *Runtime) Run(ctx context.Context, floors []FloorInput) (*plan.Model, error) {
	if len(floors) == 0 {
		return nil, fmt.Errorf("no floors to process")
	}

	results := make([]plan.FloorModel, len(floors))

	g, ctx := errgroup.WithContext(ctx)
	workers := rt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(workers)

	for i, floor := range floors {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fm, err := rt.runFloor(floor)
			if err != nil {
				return fmt.Errorf("floor %s: %w", floor.Name, err)
			}
			results[i] = *fm
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &plan.Model{Floors: results}, nil
}

// runFloor executes the strict stage sequence for one floor.
func (rt *Runtime) runFloor(floor FloorInput) (*plan.FloorModel, error) {
	ingest, err := plan.Ingest(floor.Primitives, rt.Mapping, rt.Params)
	if err != nil {
		return nil, err
	}

	gridCands := ingest.GridCandidates()
	grid, gridRejects := plan.DetectGrid(gridCands, floor.Name, rt.Params)

	wallCands := ingest.WallCandidates()
	walls, wallRejects := plan.DetectWalls(wallCands, grid, floor.Name, rt.Params)
	plan.ResolveIntersections(walls, rt.Params)

	columns := plan.GenerateColumns(grid, walls, floor.Name, rt.Params)
	slabs := plan.GenerateSlabs(grid, walls, floor.Name, floor.Elevation, rt.Params)

	diag := plan.Diagnostics{
		RoleCounts:  ingest.RoleCounts,
		LayerCounts: ingest.LayerCounts,
		Stages: []plan.StageCounts{
			{Stage: plan.StageIngest, Input: len(floor.Primitives), Produced: len(ingest.Entities), Rejected: len(ingest.Rejections)},
			{Stage: plan.StageGrid, Input: len(gridCands), Produced: len(grid.Horizontal) + len(grid.Vertical), Rejected: len(gridRejects)},
			{Stage: plan.StageWalls, Input: len(wallCands), Produced: len(walls), Rejected: len(wallRejects)},
			{Stage: plan.StageColumns, Input: len(grid.Horizontal) * len(grid.Vertical), Produced: len(columns)},
			{Stage: plan.StageSlabs, Input: 1, Produced: len(slabs)},
		},
	}
	diag.Rejections = append(diag.Rejections, ingest.Rejections...)
	diag.Rejections = append(diag.Rejections, gridRejects...)
	diag.Rejections = append(diag.Rejections, wallRejects...)

	monitoring.Logf("floor %s: %d grid lines, %d walls, %d columns, %d slabs (%d rejections)",
		floor.Name, len(grid.Horizontal)+len(grid.Vertical), len(walls), len(columns), len(slabs), len(diag.Rejections))

	return &plan.FloorModel{
		Floor:       floor.Name,
		Elevation:   floor.Elevation,
		Grid:        grid,
		Walls:       walls,
		Columns:     columns,
		Slabs:       slabs,
		Diagnostics: diag,
	}, nil
}
