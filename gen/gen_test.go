package gen_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlplan/builder"
	"github.com/syssam/sqlplan/entity"
	"github.com/syssam/sqlplan/gen"
	"github.com/syssam/sqlplan/snapshot"
	"github.com/syssam/sqlplan/syntax"
)

func capture(t *testing.T) *snapshot.Snapshot {
	t.Helper()
	m := builder.NewRoot()
	public, err := m.Schema("public")
	require.NoError(t, err)
	scoped := m.WithSchema(public)

	user, err := scoped.Table("user",
		entity.Col("id", "uuid primary key"),
		entity.Col("email", "varchar(255) not null"),
	)
	require.NoError(t, err)
	sub, err := scoped.After(user).Table("subscription",
		entity.Col("subscriber_id", fmt.Sprintf("uuid references %s(%s)", user, user.C("id"))),
		entity.Col("subscribed_to_id", "uuid"),
	)
	require.NoError(t, err)
	require.NoError(t, sub.Additional("PRIMARY KEY (subscriber_id, subscribed_to_id)"))

	_, err = scoped.After(user).Index("idx_user_email", user.String(), "btree", user.C("email").String())
	require.NoError(t, err)

	fn, err := scoped.Function("touch_user", entity.FunctionSpec{
		Args:    []entity.ArgDef{entity.Arg("uid", "uuid")},
		Returns: "trigger",
		Body:    fmt.Sprintf("begin update %s; end;", user),
	})
	require.NoError(t, err)
	_, err = scoped.After(fn).Trigger("touch_user_trigger", entity.TriggerSpec{
		After:    "update",
		On:       user.String(),
		Function: fmt.Sprintf("%s()", fn),
	})
	require.NoError(t, err)

	snap, err := snapshot.Capture(m)
	require.NoError(t, err)
	return snap
}

func TestFile(t *testing.T) {
	t.Parallel()

	src, err := gen.File(capture(t), gen.Options{})
	require.NoError(t, err)
	code := string(src)

	assert.Contains(t, code, "Code generated by sqlplan/gen. DO NOT EDIT.")
	assert.Contains(t, code, "package schema")
	assert.Contains(t, code, "func Declare(m *builder.Manager) error")

	// Schemas declare first and scope their dependants.
	assert.Contains(t, code, `m.Schema("public")`)
	assert.Contains(t, code, "WithSchema(publicSchema)")

	// Tables replay their columns and additional expressions.
	assert.Contains(t, code, `entity.Col("email", "varchar(255) not null")`)
	assert.Contains(t, code, `Additional("PRIMARY KEY (subscriber_id, subscribed_to_id)")`)

	// Dependencies ride on explicit refs.
	assert.Contains(t, code, `AfterRefs("Schema:public|Table:user"`)

	// Functions and triggers carry their specs.
	assert.Contains(t, code, `entity.Arg("uid", "uuid")`)
	assert.Contains(t, code, "entity.TriggerSpec{")
	assert.Contains(t, code, `After:`)

	// Serialised SQL is clean: no sentinel tags in generated source.
	assert.NotContains(t, code, string(syntax.DefaultOpen))

	// Declarations appear in dependency order.
	schemaAt := strings.Index(code, `m.Schema("public")`)
	tableAt := strings.Index(code, `Table("user"`)
	triggerAt := strings.Index(code, `Trigger("touch_user_trigger"`)
	assert.Less(t, schemaAt, tableAt)
	assert.Less(t, tableAt, triggerAt)
}

func TestFileOptions(t *testing.T) {
	t.Parallel()

	src, err := gen.File(capture(t), gen.Options{Package: "decl", Func: "Rebuild"})
	require.NoError(t, err)
	assert.Contains(t, string(src), "package decl")
	assert.Contains(t, string(src), "func Rebuild(m *builder.Manager) error")
}

func TestFileUnknownKind(t *testing.T) {
	t.Parallel()

	snap := &snapshot.Snapshot{Entities: []map[string]any{
		{entity.TypeKey: "View", "name": "v", "ref": "View:v"},
	}}
	_, err := gen.File(snap, gen.Options{})
	require.Error(t, err)
}

func TestFileEmptySnapshot(t *testing.T) {
	t.Parallel()

	src, err := gen.File(&snapshot.Snapshot{}, gen.Options{})
	require.NoError(t, err)
	assert.Contains(t, string(src), "return nil")
}
