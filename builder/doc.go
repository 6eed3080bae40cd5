// Package builder provides the Manager, the contextual factory through
// which a schema state is declared.
//
// A root manager owns the syntax protocol and the registry. Scoping is done
// by derivation: WithSchema places subsequently created entities under a
// schema, After seeds their explicit dependency set:
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
// Most dependencies never need After: interpolating an entity into a SQL
// fragment tags its ref into the text, and the entity constructors pick the
// refs back up. Factory methods register the whole bundle atomically and
// return the main entity.
//
// ExportDicts and ImportDicts serialise a declared state to and from the
// dict form used by the snapshot package.
package builder
