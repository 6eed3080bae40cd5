// Package sqlplan computes SQL migration plans between two declared states
// of a relational schema.
//
// A desired database state is described as a graph of typed entities:
// schemas, tables with columns, indexes, functions and triggers. SQL
// fragments carry embedded references to the entities they mention, so
// dependencies are discovered from the text itself instead of being wired by
// hand. Comparing a freshly declared registry against a previously persisted
// one yields an ordered sequence of CREATE, ALTER and DROP operations.
//
// The repository is split by concern:
//
//   - [github.com/syssam/sqlplan/syntax]: tagged SQL text engine
//   - [github.com/syssam/sqlplan/entity]: the entity variants and bundles
//   - [github.com/syssam/sqlplan/registry]: the dependency DAG
//   - [github.com/syssam/sqlplan/builder]: the scoped declaration manager
//   - [github.com/syssam/sqlplan/compare]: per-variant change classification
//   - [github.com/syssam/sqlplan/plan]: the migration planner
//   - [github.com/syssam/sqlplan/snapshot]: registry persistence
//   - [github.com/syssam/sqlplan/planfile]: migration-directory output
//   - [github.com/syssam/sqlplan/gen]: Go declaration code generation
//
// # Quick Start
//
// Declare the desired state through a root manager, snapshot it, and plan
// against the previous snapshot:
//
//	m := builder.NewRoot()
//	public, _ := m.Schema("public")
//	m = m.WithSchema(public)
//
//	user, _ := m.Table("user",
//	    entity.Col("id", "uuid primary key default uuid_generate_v4()"),
//	    entity.Col("email", "varchar(255) not null"),
//	)
//	m.After(user).Index("idx_user_email", user.String(), "btree", user.C("email").String())
//
//	old, _ := snapshot.ReadFile("schema.yaml")
//	prev, _ := old.Restore()
//	ops, _ := plan.Diff(prev.Registry(), m.Registry())
//
// Each op is a symbolic (kind, ref) pair; rendering concrete DDL for a
// specific dialect is left to a rendering layer such as the one pluggable
// into [github.com/syssam/sqlplan/planfile].
//
// This package itself only carries the shared error taxonomy.
package sqlplan
