package entity

import (
	"github.com/syssam/sqlplan/syntax"
)

// Index is a secondary index over a target expression, typically a table
// ref tag, with an access method and an ordered list of indexed
// expressions.
type Index struct {
	base
	on    syntax.Text
	using syntax.Text
	exprs []syntax.Text
}

// NewIndex builds an Index entity. The on target and the expressions may
// carry tagged refs, which become inferred dependencies.
func NewIndex(ctx Context, name, on, using string, exprs ...string) (*Bundle, error) {
	syn := ctx.Syntax()
	onText, err := syn.Parse(on)
	if err != nil {
		return nil, err
	}
	usingText, err := syn.Parse(using)
	if err != nil {
		return nil, err
	}
	exprTexts := make([]syntax.Text, len(exprs))
	for i, expr := range exprs {
		if exprTexts[i], err = syn.Parse(expr); err != nil {
			return nil, err
		}
	}
	return NewBundle(&Index{
		base:  newBase(ctx, refName(KindIndex, name), name, ctx.DependencyRefs()),
		on:    onText,
		using: usingText,
		exprs: exprTexts,
	}), nil
}

// Kind returns KindIndex.
func (i *Index) Kind() Kind { return KindIndex }

// On returns the index target.
func (i *Index) On() syntax.Text { return i.on }

// Using returns the access method.
func (i *Index) Using() syntax.Text { return i.using }

// Expressions returns the indexed expressions in order.
func (i *Index) Expressions() []syntax.Text {
	out := make([]syntax.Text, len(i.exprs))
	copy(out, i.exprs)
	return out
}

// DependencyRefs returns the effective dependencies: the explicit set plus
// every ref mentioned by the target, method or expressions.
func (i *Index) DependencyRefs() []string {
	texts := append([]syntax.Text{i.on, i.using}, i.exprs...)
	return refUnion(i.explicit, textRefs(texts...))
}

// Dict returns the serialised form.
func (i *Index) Dict() map[string]any {
	d := i.coreDict(KindIndex, i.DependencyRefs())
	d["on"] = i.on.SQL()
	d["using"] = i.using.SQL()
	exprs := make([]any, len(i.exprs))
	for n, expr := range i.exprs {
		exprs[n] = expr.SQL()
	}
	d["expressions"] = exprs
	return d
}

// IndexFromDict rebuilds an Index from its serialised form.
func IndexFromDict(ctx Context, data map[string]any) (*Bundle, error) {
	ref, err := dictString(KindIndex, data, "ref")
	if err != nil {
		return nil, err
	}
	name, err := dictString(KindIndex, data, "name")
	if err != nil {
		return nil, err
	}
	deps, err := dictStrings(KindIndex, data, "dependencies")
	if err != nil {
		return nil, err
	}
	on, err := dictString(KindIndex, data, "on")
	if err != nil {
		return nil, err
	}
	using, err := dictString(KindIndex, data, "using")
	if err != nil {
		return nil, err
	}
	exprs, err := dictStrings(KindIndex, data, "expressions")
	if err != nil {
		return nil, err
	}
	syn := ctx.Syntax()
	onText, err := syn.Parse(on)
	if err != nil {
		return nil, err
	}
	usingText, err := syn.Parse(using)
	if err != nil {
		return nil, err
	}
	exprTexts := make([]syntax.Text, len(exprs))
	for i, expr := range exprs {
		if exprTexts[i], err = syn.Parse(expr); err != nil {
			return nil, err
		}
	}
	return NewBundle(&Index{
		base:  newBase(ctx, ref, name, deps),
		on:    onText,
		using: usingText,
		exprs: exprTexts,
	}), nil
}
