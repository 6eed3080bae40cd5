// Package compare classifies the intrinsic change between two versions of
// an entity.
//
// One comparator exists per variant, each a pure function of the (old, new)
// pair. The result feeds the planner, which layers drop derivation and
// forced-recreation propagation on top.
package compare
