package gen

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/tools/imports"

	"github.com/syssam/sqlplan/entity"
	"github.com/syssam/sqlplan/snapshot"
)

const (
	builderPkg = "github.com/syssam/sqlplan/builder"
	entityPkg  = "github.com/syssam/sqlplan/entity"
)

var titler = cases.Title(language.Und, cases.NoLower)

// Options configures File.
type Options struct {
	// Package is the package name of the generated file. Defaults to
	// "schema".
	Package string

	// Func is the name of the generated declaration function. Defaults to
	// "Declare".
	Func string
}

// File renders Go source that re-declares the snapshot's entities through a
// builder.Manager. The generated function replays schemas, tables, indexes,
// functions and triggers in the captured order, carrying each entity's
// dependency set as explicit refs.
//
// Clean SQL text carries no ref tags, so the generated declarations rely on
// AfterRefs rather than on re-inference, exactly like a dict import.
func File(snap *snapshot.Snapshot, opts Options) ([]byte, error) {
	if opts.Package == "" {
		opts.Package = "schema"
	}
	if opts.Func == "" {
		opts.Func = "Declare"
	}

	g := &generator{
		schemaVars: make(map[string]string),
		taken:      make(map[string]bool),
	}
	for _, dict := range snap.Entities {
		if err := g.entity(dict); err != nil {
			return nil, err
		}
	}
	g.stmts = append(g.stmts, jen.Return(jen.Nil()))

	f := jen.NewFile(opts.Package)
	f.HeaderComment("Code generated by sqlplan/gen. DO NOT EDIT.")
	f.Comment(fmt.Sprintf("%s replays the %s snapshot state onto m.", opts.Func, titler.String(kindCounts(snap))))
	f.Func().Id(opts.Func).
		Params(jen.Id("m").Op("*").Qual(builderPkg, "Manager")).
		Error().
		Block(g.stmts...)

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, err
	}
	out, err := imports.Process("schema.go", buf.Bytes(), nil)
	if err != nil {
		// Return the raw rendering for diagnosis.
		return buf.Bytes(), err
	}
	return out, nil
}

// kindCounts summarises a snapshot for the generated doc comment.
func kindCounts(snap *snapshot.Snapshot) string {
	counts := make(map[string]int)
	for _, d := range snap.Entities {
		if k, ok := d[entity.TypeKey].(string); ok {
			counts[inflect.Pluralize(k)]++
		}
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	if len(kinds) == 0 {
		return "empty"
	}
	out := ""
	for i, k := range kinds {
		if i > 0 {
			out += "/"
		}
		out += fmt.Sprintf("%d %s", counts[k], k)
	}
	return out
}

type generator struct {
	stmts      []jen.Code
	schemaVars map[string]string
	taken      map[string]bool
}

// varFor derives a fresh lower-camel identifier for an entity.
func (g *generator) varFor(name, kind string) string {
	base := inflect.CamelizeDownFirst(inflect.Underscore(name + "_" + kind))
	v := base
	for i := 2; g.taken[v]; i++ {
		v = fmt.Sprintf("%s%d", base, i)
	}
	g.taken[v] = true
	return v
}

// check appends the err-check that follows every declaration.
func (g *generator) check() {
	g.stmts = append(g.stmts, jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())))
}

// manager builds the scoped manager expression for a declaration: m, with
// WithSchema and AfterRefs applied as the dict demands.
func (g *generator) manager(dict map[string]any) (*jen.Statement, error) {
	expr := jen.Id("m")
	if schemaRef, ok := dict["schema"].(string); ok && schemaRef != "" {
		v, ok := g.schemaVars[schemaRef]
		if !ok {
			return nil, fmt.Errorf("sqlplan: schema %q is not declared before its dependants", schemaRef)
		}
		expr = expr.Dot("WithSchema").Call(jen.Id(v))
	}
	deps := stringList(dict["dependencies"])
	if len(deps) > 0 {
		args := make([]jen.Code, len(deps))
		for i, d := range deps {
			args[i] = jen.Lit(d)
		}
		expr = expr.Dot("AfterRefs").Call(args...)
	}
	return expr, nil
}

// entity appends the statements declaring one exported entity.
func (g *generator) entity(dict map[string]any) error {
	kind, _ := dict[entity.TypeKey].(string)
	name, _ := dict["name"].(string)
	if name == "" {
		return fmt.Errorf("sqlplan: dict without name")
	}
	switch entity.Kind(kind) {
	case entity.KindSchema:
		v := g.varFor(name, "schema")
		g.schemaVars[stringOr(dict["ref"])] = v
		g.assign(v, jen.Id("m").Dot("Schema").Call(jen.Lit(name)))
		g.check()
		// Schemas may go unused when nothing is scoped under them.
		g.stmts = append(g.stmts, jen.Id("_").Op("=").Id(v))
	case entity.KindTable:
		return g.table(dict, name)
	case entity.KindIndex:
		mgr, err := g.manager(dict)
		if err != nil {
			return err
		}
		args := []jen.Code{jen.Lit(name), jen.Lit(stringOr(dict["on"])), jen.Lit(stringOr(dict["using"]))}
		for _, expr := range stringList(dict["expressions"]) {
			args = append(args, jen.Lit(expr))
		}
		g.discard(g.varFor(name, "index"), mgr.Dot("Index").Call(args...))
	case entity.KindFunction:
		return g.function(dict, name)
	case entity.KindTrigger:
		return g.trigger(dict, name)
	default:
		return fmt.Errorf("sqlplan: unknown __type__ %q", kind)
	}
	return nil
}

func (g *generator) table(dict map[string]any, name string) error {
	mgr, err := g.manager(dict)
	if err != nil {
		return err
	}
	args := []jen.Code{jen.Lit(name)}
	columns, _ := dict["columns"].(map[string]any)
	for _, colName := range sortedAnyKeys(columns) {
		colData, _ := columns[colName].(map[string]any)
		args = append(args, jen.Qual(entityPkg, "Col").Call(
			jen.Lit(colName), jen.Lit(stringOr(colData["text"])),
		))
	}
	v := g.varFor(name, "table")
	g.assign(v, mgr.Dot("Table").Call(args...))
	g.check()
	additional := stringList(dict["additional_expressions"])
	if len(additional) > 0 {
		exprs := make([]jen.Code, len(additional))
		for i, expr := range additional {
			exprs[i] = jen.Lit(expr)
		}
		g.stmts = append(g.stmts, jen.If(
			jen.Err().Op(":=").Id(v).Dot("Additional").Call(exprs...),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Err())))
	} else {
		g.stmts = append(g.stmts, jen.Id("_").Op("=").Id(v))
	}
	return nil
}

func (g *generator) function(dict map[string]any, name string) error {
	mgr, err := g.manager(dict)
	if err != nil {
		return err
	}
	spec := jen.Dict{}
	if args, ok := dict["args"].([]any); ok && len(args) > 0 {
		values := make([]jen.Code, 0, len(args))
		for _, raw := range args {
			argData, _ := raw.(map[string]any)
			values = append(values, jen.Qual(entityPkg, "Arg").Call(
				jen.Lit(stringOr(argData["name"])), jen.Lit(stringOr(argData["type"])),
			))
		}
		spec[jen.Id("Args")] = jen.Index().Qual(entityPkg, "ArgDef").Values(values...)
	}
	spec[jen.Id("Returns")] = jen.Lit(stringOr(dict["returns"]))
	spec[jen.Id("Language")] = jen.Lit(stringOr(dict["language"]))
	spec[jen.Id("Body")] = jen.Lit(stringOr(dict["body"]))
	g.discard(g.varFor(name, "function"), mgr.Dot("Function").Call(
		jen.Lit(name), jen.Qual(entityPkg, "FunctionSpec").Values(spec),
	))
	return nil
}

func (g *generator) trigger(dict map[string]any, name string) error {
	mgr, err := g.manager(dict)
	if err != nil {
		return err
	}
	spec := jen.Dict{jen.Id("On"): jen.Lit(stringOr(dict["on"]))}
	for key, field := range map[string]string{
		"before":     "Before",
		"after":      "After",
		"instead_of": "InsteadOf",
		"function":   "Function",
		"procedure":  "Procedure",
	} {
		if s := stringOr(dict[key]); s != "" {
			spec[jen.Id(field)] = jen.Lit(s)
		}
	}
	g.discard(g.varFor(name, "trigger"), mgr.Dot("Trigger").Call(
		jen.Lit(name), jen.Qual(entityPkg, "TriggerSpec").Values(spec),
	))
	return nil
}

// assign appends `<v>, err := <call>`.
func (g *generator) assign(v string, call *jen.Statement) {
	g.stmts = append(g.stmts, jen.List(jen.Id(v), jen.Err()).Op(":=").Add(call))
}

// discard declares, checks and immediately discards an entity variable.
func (g *generator) discard(v string, call *jen.Statement) {
	g.assign(v, call)
	g.check()
	g.stmts = append(g.stmts, jen.Id("_").Op("=").Id(v))
}

func stringOr(v any) string {
	s, _ := v.(string)
	return s
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func sortedAnyKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
