// Package entity defines the typed objects of the schema graph.
//
// Five independently managed variants exist — Schema, Table, Index,
// Function and Trigger — plus Column, which is owned by its Table and only
// serialised as part of it. Every entity carries a deterministic ref of the
// form
//
//	[<schema-ref>|]<Kind>:<name>[.<disambiguator>]
//
// and a dependency set combining refs injected explicitly at construction
// with refs inferred from its tagged SQL fragments. Constructors return a
// Bundle: the main entity plus owned children that the registry must accept
// in one atomic step.
//
// Entities reach back to the manager that created them only through the
// narrow Context interface, which keeps this package free of a dependency
// on the builder.
package entity
