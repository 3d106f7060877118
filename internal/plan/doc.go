// Package plan implements the geometric reconstruction core: a strictly
// ordered sequence of pure detectors that turn unordered 2D line-work
// (annotated with layer metadata) into semantically typed building
// elements (grid lines, walls, columns, slabs), each carrying a
// confidence score.
//
// Stages consume the previous stage's typed output and never mutate
// their input; per-run state lives entirely on the stack of the caller.
// Fatal configuration or input problems surface as *ValidationError and
// abort the run before any output exists; per-entity geometry problems
// become Rejection records in the diagnostics report while the run
// continues.
package plan
