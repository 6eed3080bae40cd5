package builder_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlplan"
	"github.com/syssam/sqlplan/builder"
	"github.com/syssam/sqlplan/entity"
)

func TestScoping(t *testing.T) {
	t.Parallel()

	m := builder.NewRoot()
	public, err := m.Schema("public")
	require.NoError(t, err)

	scoped := m.WithSchema(public)
	user, err := scoped.Table("user", entity.Col("id", "uuid primary key"))
	require.NoError(t, err)

	assert.Equal(t, "Schema:public|Table:user", user.Ref())
	// Nothing else binds the table, so it depends on its schema.
	assert.Equal(t, []string{public.Ref()}, user.DependencyRefs())

	// The parent manager is untouched.
	assert.Nil(t, m.CurrentSchema())
	assert.Same(t, m, scoped.Root())
}

func TestAfter(t *testing.T) {
	t.Parallel()

	m := builder.NewRoot()
	user, err := m.Table("user", entity.Col("id", "uuid"))
	require.NoError(t, err)

	idx, err := m.After(user).Index("idx_user", user.String(), "btree", "id")
	require.NoError(t, err)
	assert.Contains(t, idx.DependencyRefs(), user.Ref())

	// After with no arguments clears the inherited set.
	cleared := m.After(user).After()
	assert.Empty(t, cleared.DependencyRefs())
}

func TestDependencyInferenceAcrossEntities(t *testing.T) {
	t.Parallel()

	m := builder.NewRoot()
	public, err := m.Schema("public")
	require.NoError(t, err)
	m = m.WithSchema(public)

	user, err := m.Table("user",
		entity.Col("id", "uuid primary key default uuid_generate_v4()"),
		entity.Col("subscribers_count", "integer not null default 0"),
	)
	require.NoError(t, err)

	sub, err := m.After(user).Table("subscription",
		entity.Col("subscriber_id", fmt.Sprintf("uuid not null references %s(%s)", user, user.C("id"))),
		entity.Col("subscribed_to_id", fmt.Sprintf("uuid not null references %s(%s)", user, user.C("id"))),
	)
	require.NoError(t, err)
	require.NoError(t, sub.Additional("PRIMARY KEY (subscriber_id, subscribed_to_id)"))

	// No After needed: the function body mentions the entities it uses.
	fn, err := m.Function("handle_new_subscription", entity.FunctionSpec{
		Args:    []entity.ArgDef{entity.Arg("new_subscription_id", "uuid not null")},
		Returns: "trigger",
		Body: fmt.Sprintf(
			"begin update %s set %s = %s + 1 where %s = new.%s; end;",
			user, user.C("subscribers_count"), user.C("subscribers_count"), user.C("id"), sub.C("subscribed_to_id"),
		),
	})
	require.NoError(t, err)
	assert.Contains(t, fn.DependencyRefs(), user.Ref())
	assert.Contains(t, fn.DependencyRefs(), user.C("subscribers_count").Ref())
	assert.Contains(t, fn.DependencyRefs(), sub.C("subscribed_to_id").Ref())

	trg, err := m.After(fn).Trigger("handle_new_subscription_trigger", entity.TriggerSpec{
		Before:   "insert or update",
		On:       sub.String(),
		Function: fmt.Sprintf("%s()", fn),
	})
	require.NoError(t, err)
	assert.Contains(t, trg.DependencyRefs(), fn.Ref())
	assert.Contains(t, trg.DependencyRefs(), sub.Ref())
}

func TestRegistrationAtomicity(t *testing.T) {
	t.Parallel()

	m := builder.NewRoot()
	_, err := m.Table("user", entity.Col("id", "uuid"))
	require.NoError(t, err)
	before := m.Registry().Len()

	_, err = m.Table("user", entity.Col("id", "uuid"))
	require.Error(t, err)
	assert.True(t, sqlplan.IsDuplicateRef(err))
	assert.Equal(t, before, m.Registry().Len())
}

func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()

	m := builder.NewRoot()
	public, err := m.Schema("public")
	require.NoError(t, err)
	scoped := m.WithSchema(public)

	user, err := scoped.Table("user",
		entity.Col("id", "uuid primary key"),
		entity.Col("email", "varchar(255) not null"),
	)
	require.NoError(t, err)
	_, err = scoped.After(user).Index("idx_user_email", user.String(), "btree", user.C("email").String())
	require.NoError(t, err)
	fn, err := scoped.Function("touch", entity.FunctionSpec{
		Returns: "trigger",
		Body:    fmt.Sprintf("begin update %s; end;", user),
	})
	require.NoError(t, err)
	_, err = scoped.Trigger("touch_trigger", entity.TriggerSpec{
		After:    "update",
		On:       user.String(),
		Function: fmt.Sprintf("%s()", fn),
	})
	require.NoError(t, err)

	dicts, err := m.ExportDicts()
	require.NoError(t, err)
	// Columns are not exported independently.
	for _, d := range dicts {
		assert.NotEqual(t, "Column", d[entity.TypeKey])
	}
	require.Len(t, dicts, 5)

	restored := builder.NewRoot()
	require.NoError(t, restored.ImportDicts(dicts))
	// Columns re-register from inside their table dict.
	assert.Equal(t, m.Registry().Len(), restored.Registry().Len())

	exported, err := restored.ExportDicts()
	require.NoError(t, err)
	assert.Equal(t, dicts, exported)
}

func TestImportUnknownType(t *testing.T) {
	t.Parallel()

	m := builder.NewRoot()
	err := m.ImportDicts([]map[string]any{{entity.TypeKey: "View", "ref": "View:v", "name": "v"}})
	require.Error(t, err)
	assert.True(t, sqlplan.IsConstruction(err))
}
