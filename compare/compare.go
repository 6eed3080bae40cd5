package compare

import (
	"fmt"
	"slices"

	"github.com/syssam/sqlplan/entity"
	"github.com/syssam/sqlplan/syntax"
)

// Mutation classifies the change a comparator derives from an (old, new)
// entity pair. DROP is never produced here: the planner derives drops from
// presence across registries.
type Mutation string

const (
	// Create means the entity has no old counterpart.
	Create Mutation = "CREATE"

	// Unchanged means every compared field is equal.
	Unchanged Mutation = "UNCHANGED"

	// Alter means the change is patchable in place.
	Alter Mutation = "ALTER"

	// Recreate means the change requires a drop followed by a create.
	Recreate Mutation = "RECREATE"

	// Drop is never produced by a comparator; the planner assigns it to
	// entities that vanished from the new state.
	Drop Mutation = "DROP"
)

// Entities runs the variant comparator for the pair. old may be nil, which
// classifies as Create. Both sides must be the same variant: refs are
// stable, so a kind change under one ref indicates a corrupted registry.
func Entities(old, new entity.Entity) (Mutation, error) {
	if old == nil {
		return Create, nil
	}
	if old.Kind() != new.Kind() {
		return "", fmt.Errorf("sqlplan: comparing %s against %s under ref %q", old.Kind(), new.Kind(), new.Ref())
	}
	switch n := new.(type) {
	case *entity.Schema:
		return schemas(old.(*entity.Schema), n), nil
	case *entity.Table:
		return tables(old.(*entity.Table), n), nil
	case *entity.Column:
		return columns(old.(*entity.Column), n), nil
	case *entity.Index:
		return indexes(old.(*entity.Index), n), nil
	case *entity.Function:
		return functions(old.(*entity.Function), n), nil
	case *entity.Trigger:
		return triggers(old.(*entity.Trigger), n), nil
	default:
		return "", fmt.Errorf("sqlplan: no comparator for %T", new)
	}
}

// schemas: a renamed schema is patched in place.
func schemas(old, new *entity.Schema) Mutation {
	if old.Name() != new.Name() {
		return Alter
	}
	return Unchanged
}

// tables compare name and additional expressions only. Column changes
// surface through the column comparator: columns are first-class registry
// entries.
func tables(old, new *entity.Table) Mutation {
	if old.Name() != new.Name() {
		return Alter
	}
	if !textsEqual(old.AdditionalExpressions(), new.AdditionalExpressions()) {
		return Alter
	}
	return Unchanged
}

// columns: a name or definition change is an in-place patch.
func columns(old, new *entity.Column) Mutation {
	if old.Name() != new.Name() {
		return Alter
	}
	if !old.Def().Equal(new.Def()) {
		return Alter
	}
	return Unchanged
}

// functions follow CREATE OR REPLACE semantics: every change is an alter.
func functions(old, new *entity.Function) Mutation {
	if !slices.Equal(old.Args(), new.Args()) {
		return Alter
	}
	if !old.Returns().Equal(new.Returns()) {
		return Alter
	}
	if old.Language() != new.Language() {
		return Alter
	}
	if !old.Body().Equal(new.Body()) {
		return Alter
	}
	return Unchanged
}

// indexes cannot be patched: any change drops and recreates.
func indexes(old, new *entity.Index) Mutation {
	if !old.On().Equal(new.On()) {
		return Recreate
	}
	if !old.Using().Equal(new.Using()) {
		return Recreate
	}
	if !textsEqual(old.Expressions(), new.Expressions()) {
		return Recreate
	}
	return Unchanged
}

// triggers cannot be patched: any change drops and recreates.
func triggers(old, new *entity.Trigger) Mutation {
	if !old.On().Equal(new.On()) {
		return Recreate
	}
	if !old.Function().Equal(new.Function()) {
		return Recreate
	}
	if !old.Procedure().Equal(new.Procedure()) {
		return Recreate
	}
	if old.Before() != new.Before() {
		return Recreate
	}
	if old.After() != new.After() {
		return Recreate
	}
	if old.InsteadOf() != new.InsteadOf() {
		return Recreate
	}
	return Unchanged
}

// textsEqual compares fragment sequences pairwise on clean text.
func textsEqual(a, b []syntax.Text) bool {
	return slices.EqualFunc(a, b, func(x, y syntax.Text) bool {
		return x.Equal(y)
	})
}
