// Package plan diffs two registry states into an ordered migration plan.
//
// Each step is symbolic: an operation kind plus an entity ref. The planner
// guarantees that drops precede anything that could reference the dropped
// entity, that creates follow their dependencies, and that recreation shows
// up as a matched drop/create pair. Validate classifies the destructive
// steps of a computed plan before it is handed to a rendering layer.
package plan
