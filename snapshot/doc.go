// Package snapshot persists declared registry states.
//
// A Snapshot is the dict export of a manager's registry plus an identifier
// and a creation time. It travels as YAML for review, as msgpack for
// compactness, and through Store into any database/sql database for teams
// that keep the previous state next to the data it describes.
//
// The typical flow around a migration:
//
//	prev, _ := snapshot.ReadFile("schema.yaml")
//	old, _ := prev.Restore()
//	ops, _ := plan.Diff(old.Registry(), m.Registry())
//
//	next, _ := snapshot.Capture(m)
//	_ = next.WriteFile("schema.yaml")
package snapshot
