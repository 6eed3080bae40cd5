package entity

import (
	"github.com/syssam/sqlplan/syntax"
)

// ColumnDef declares one column at table construction: a SQL name and its
// definition text, which may carry tagged refs.
type ColumnDef struct {
	Name string
	Def  string
}

// Col is a shorthand constructor for a ColumnDef.
func Col(name, def string) ColumnDef {
	return ColumnDef{Name: name, Def: def}
}

// Column is a table column. Columns are owned by exactly one table, carry
// the table ref as an implicit dependency, and are not serialised
// independently: they appear inside their table's dict while still being
// registered by ref so indexes and triggers can mention them.
type Column struct {
	base
	tableRef string
	def      syntax.Text
}

func newColumn(ctx Context, tableRef, name string, def syntax.Text) *Column {
	return &Column{
		base:     newBase(ctx, tableRef+"|"+refName(KindColumn, name), name, []string{tableRef}),
		tableRef: tableRef,
		def:      def,
	}
}

// Kind returns KindColumn.
func (c *Column) Kind() Kind { return KindColumn }

// TableRef returns the ref of the owning table.
func (c *Column) TableRef() string { return c.tableRef }

// Def returns the column definition text.
func (c *Column) Def() syntax.Text { return c.def }

// Exported reports false: columns serialise inside their table.
func (c *Column) Exported() bool { return false }

// DependencyRefs returns the owning table ref. Refs mentioned inside the
// definition text surface as dependencies of the table, not of the column.
func (c *Column) DependencyRefs() []string {
	return refUnion(c.explicit)
}

// Dict returns the serialised form embedded in the table dict.
func (c *Column) Dict() map[string]any {
	return map[string]any{
		"name": c.name,
		"ref":  c.ref,
		"text": c.def.SQL(),
	}
}

// Table is a named relation with ordered, owned columns and optional
// additional table expressions such as composite primary keys.
type Table struct {
	base
	schemaRef  string
	cols       []*Column
	byName     map[string]*Column
	additional []syntax.Text
}

// NewTable builds a Table and its owned Column entities as one bundle.
func NewTable(ctx Context, name string, cols []ColumnDef, additional ...string) (*Bundle, error) {
	ref := scopedRef(ctx.SchemaRef(), KindTable, name)
	t := &Table{
		base:      newBase(ctx, ref, name, ctx.DependencyRefs()),
		schemaRef: ctx.SchemaRef(),
		byName:    make(map[string]*Column, len(cols)),
	}
	for _, cd := range cols {
		if _, ok := t.byName[cd.Name]; ok {
			return nil, constructionErr(KindTable, name, "duplicate column "+cd.Name)
		}
		def, err := ctx.Syntax().Parse(cd.Def)
		if err != nil {
			return nil, err
		}
		col := newColumn(ctx, ref, cd.Name, def)
		t.cols = append(t.cols, col)
		t.byName[cd.Name] = col
	}
	for _, expr := range additional {
		text, err := ctx.Syntax().Parse(expr)
		if err != nil {
			return nil, err
		}
		t.additional = append(t.additional, text)
	}
	children := make([]Entity, len(t.cols))
	for i, col := range t.cols {
		children[i] = col
	}
	return NewBundle(t, children...), nil
}

// Kind returns KindTable.
func (t *Table) Kind() Kind { return KindTable }

// SchemaRef returns the ref of the containing schema, or "".
func (t *Table) SchemaRef() string { return t.schemaRef }

// C returns the column with the given name, or nil when the table has no
// such column.
func (t *Table) C(name string) *Column {
	return t.byName[name]
}

// Columns returns the owned columns in declaration order.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.cols))
	copy(out, t.cols)
	return out
}

// AdditionalExpressions returns the additional table expressions.
func (t *Table) AdditionalExpressions() []syntax.Text {
	out := make([]syntax.Text, len(t.additional))
	copy(out, t.additional)
	return out
}

// Additional appends table expressions, e.g. a composite primary key, and
// refreshes the registry adjacency since the expressions may mention other
// entities.
func (t *Table) Additional(exprs ...string) error {
	parsed := make([]syntax.Text, 0, len(exprs))
	for _, expr := range exprs {
		text, err := t.ctx.Syntax().Parse(expr)
		if err != nil {
			return err
		}
		parsed = append(parsed, text)
	}
	t.additional = append(t.additional, parsed...)
	return t.ctx.UpdateRefs(t)
}

// DependencyRefs returns the effective dependencies: the explicit set,
// every ref mentioned in column definitions or additional expressions, and
// the schema fallback when nothing else binds the table.
func (t *Table) DependencyRefs() []string {
	texts := make([]syntax.Text, 0, len(t.cols)+len(t.additional))
	for _, col := range t.cols {
		texts = append(texts, col.def)
	}
	texts = append(texts, t.additional...)
	return effectiveDeps(t.schemaRef, t.explicit, textRefs(texts...))
}

// Dict returns the serialised form, with owned columns embedded.
func (t *Table) Dict() map[string]any {
	d := t.coreDict(KindTable, t.DependencyRefs())
	if t.schemaRef != "" {
		d["schema"] = t.schemaRef
	} else {
		d["schema"] = nil
	}
	columns := make(map[string]any, len(t.cols))
	for _, col := range t.cols {
		columns[col.Name()] = col.Dict()
	}
	d["columns"] = columns
	exprs := make([]any, len(t.additional))
	for i, expr := range t.additional {
		exprs[i] = expr.SQL()
	}
	d["additional_expressions"] = exprs
	return d
}

// TableFromDict rebuilds a Table bundle from its serialised form. The dict
// carries the effective dependency set of the exported table; it is restored
// as the explicit set, which round-trips because clean text infers nothing.
func TableFromDict(ctx Context, data map[string]any) (*Bundle, error) {
	ref, err := dictString(KindTable, data, "ref")
	if err != nil {
		return nil, err
	}
	name, err := dictString(KindTable, data, "name")
	if err != nil {
		return nil, err
	}
	schemaRef, err := dictOptString(KindTable, data, "schema")
	if err != nil {
		return nil, err
	}
	deps, err := dictStrings(KindTable, data, "dependencies")
	if err != nil {
		return nil, err
	}
	t := &Table{
		base:      newBase(ctx, ref, name, deps),
		schemaRef: schemaRef,
		byName:    make(map[string]*Column),
	}
	columns, err := dictMap(KindTable, data, "columns")
	if err != nil {
		return nil, err
	}
	for _, colName := range sortedKeys(columns) {
		colData, ok := columns[colName].(map[string]any)
		if !ok {
			return nil, constructionErr(KindTable, name, "column "+colName+" is not a map")
		}
		text, err := dictString(KindColumn, colData, "text")
		if err != nil {
			return nil, err
		}
		def, err := ctx.Syntax().Parse(text)
		if err != nil {
			return nil, err
		}
		col := newColumn(ctx, ref, colName, def)
		t.cols = append(t.cols, col)
		t.byName[colName] = col
	}
	exprs, err := dictStrings(KindTable, data, "additional_expressions")
	if err != nil {
		return nil, err
	}
	for _, expr := range exprs {
		text, err := ctx.Syntax().Parse(expr)
		if err != nil {
			return nil, err
		}
		t.additional = append(t.additional, text)
	}
	children := make([]Entity, len(t.cols))
	for i, col := range t.cols {
		children[i] = col
	}
	return NewBundle(t, children...), nil
}
