// Package registry holds the dependency DAG of a declared schema state.
//
// Entities are keyed by ref. Registration is atomic over a whole bundle and
// keeps both forward (dependency) and reverse (dependant) adjacency, so the
// planner can walk the graph in either direction: topologically for create
// order, and branch-wise from a head for chains of stale dependants.
package registry
