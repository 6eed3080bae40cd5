package syntax_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlplan"
	"github.com/syssam/sqlplan/syntax"
)

func tag(ref string) string {
	return string(syntax.DefaultOpen) + ref + string(syntax.DefaultClose)
}

func TestParse(t *testing.T) {
	t.Parallel()

	syn := syntax.New()

	tests := []struct {
		name string
		raw  string
		sql  string
		refs []string
	}{
		{
			name: "plain_text",
			raw:  "integer not null",
			sql:  "integer not null",
			refs: nil,
		},
		{
			name: "single_tag",
			raw:  `references "user"` + tag("Table:user"),
			sql:  `references "user"`,
			refs: []string{"Table:user"},
		},
		{
			name: "tag_mid_text",
			raw:  "update " + tag("Table:user") + " set x = 1",
			sql:  "update  set x = 1",
			refs: []string{"Table:user"},
		},
		{
			name: "multiple_tags_sorted_and_deduped",
			raw:  tag("b") + "x" + tag("a") + "y" + tag("b"),
			sql:  "xy",
			refs: []string{"a", "b"},
		},
		{
			name: "empty_tag_skipped",
			raw:  "x" + tag("") + "y",
			sql:  "xy",
			refs: nil,
		},
		{
			name: "empty_input",
			raw:  "",
			sql:  "",
			refs: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			text, err := syn.Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, text.SQL())
			assert.Equal(t, tt.refs, text.Refs())
		})
	}
}

func TestParseUnbalanced(t *testing.T) {
	t.Parallel()

	syn := syntax.New()

	for _, raw := range []string{
		"dangling " + string(syntax.DefaultOpen) + "Table:user",
		"stray close" + string(syntax.DefaultClose),
		string(syntax.DefaultOpen) + "a" + string(syntax.DefaultOpen) + "b" + string(syntax.DefaultClose),
	} {
		_, err := syn.Parse(raw)
		require.Error(t, err)
		assert.True(t, sqlplan.IsInvalidTaggedText(err))
		assert.ErrorIs(t, err, sqlplan.ErrInvalidTaggedText)
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	syn := syntax.New()
	raw := "update " + tag("Table:user") + " set " + tag("Table:user|Column:n") + " = 1"

	text, err := syn.Parse(raw)
	require.NoError(t, err)

	// parse(format_tagged(parse(t))) == parse(t)
	tagged, err := text.Format(syntax.ModeTagged)
	require.NoError(t, err)
	again, err := syn.Parse(tagged)
	require.NoError(t, err)
	assert.Equal(t, text.SQL(), again.SQL())
	assert.Equal(t, text.Refs(), again.Refs())

	// A second tagged rendering is identical: the round trip is idempotent.
	tagged2, err := again.Format(syntax.ModeTagged)
	require.NoError(t, err)
	assert.Equal(t, tagged, tagged2)
}

func TestFormatModes(t *testing.T) {
	t.Parallel()

	syn := syntax.New()
	text := syn.NewText("select 1", "Table:user")

	sql, err := text.Format(syntax.ModeSQL)
	require.NoError(t, err)
	assert.Equal(t, "select 1", sql)

	tagged, err := text.Format(syntax.ModeTagged)
	require.NoError(t, err)
	assert.Equal(t, "select 1"+tag("Table:user"), tagged)

	_, err = text.Format(syntax.Mode(42))
	require.Error(t, err)
	assert.True(t, sqlplan.IsInvalidFormat(err))
}

func TestEquality(t *testing.T) {
	t.Parallel()

	syn := syntax.New()
	a := syn.NewText("select 1", "Table:user")
	b := syn.NewText("select 1", "Table:other")
	c := syn.NewText("select 2")

	// Equality on clean text only.
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), c.Hash())
}

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	syn := syntax.New()
	assert.Equal(t, `"public"."user"`, syn.QuoteIdent("public", "user"))
	assert.Equal(t, `"user"`, syn.QuoteIdent("user"))
	// Embedded quotes are doubled, keeping the identifier safe.
	assert.Equal(t, `"we""ird"`, syn.QuoteIdent(`we"ird`))
}

func TestIdent(t *testing.T) {
	t.Parallel()

	syn := syntax.New()
	id := syn.NewIdent([]string{"user"}, "Table:user")
	assert.Equal(t, `"user"`, id.SQL())
	assert.Equal(t, []string{"Table:user"}, id.Refs())
	assert.Equal(t, `"user"`+tag("Table:user"), fmt.Sprint(id))
}

func TestCustomSentinels(t *testing.T) {
	t.Parallel()

	syn, err := syntax.NewWith('<', '>')
	require.NoError(t, err)
	text, err := syn.Parse("a <Table:user> b")
	require.NoError(t, err)
	assert.Equal(t, "a  b", text.SQL())
	assert.Equal(t, []string{"Table:user"}, text.Refs())

	_, err = syntax.NewWith('<', '<')
	require.Error(t, err)
}

func TestHashString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, syntax.HashString("uuid"), syntax.HashString("uuid"))
	assert.NotEqual(t, syntax.HashString("uuid"), syntax.HashString("text"))
	assert.Len(t, syntax.HashString("uuid"), 12)
}
