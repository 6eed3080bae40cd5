package entity

import (
	"github.com/syssam/sqlplan/syntax"
)

// TriggerSpec collects the kind-specific inputs of NewTrigger. At least one
// timing field must be set, and exactly one of Function or Procedure.
type TriggerSpec struct {
	// Before, After and InsteadOf hold the event expression for the
	// corresponding timing, e.g. "insert or update". Empty means unset.
	Before    string
	After     string
	InsteadOf string

	// On is the trigger target, typically a table ref tag.
	On string

	// Function and Procedure are the call expressions; exactly one of the
	// two must be set.
	Function  string
	Procedure string
}

// Trigger fires a function or procedure on events of a target relation.
type Trigger struct {
	base
	before    string
	after     string
	insteadOf string
	on        syntax.Text
	function  syntax.Text
	procedure syntax.Text
}

// NewTrigger builds a Trigger entity, validating the spec.
func NewTrigger(ctx Context, name string, spec TriggerSpec) (*Bundle, error) {
	if spec.Before == "" && spec.After == "" && spec.InsteadOf == "" {
		return nil, constructionErr(KindTrigger, name, "at least one of before, after or instead_of must be set")
	}
	switch {
	case spec.Function == "" && spec.Procedure == "":
		return nil, constructionErr(KindTrigger, name, "either function or procedure must be set")
	case spec.Function != "" && spec.Procedure != "":
		return nil, constructionErr(KindTrigger, name, "function and procedure are mutually exclusive")
	}
	syn := ctx.Syntax()
	on, err := syn.Parse(spec.On)
	if err != nil {
		return nil, err
	}
	function, err := syn.Parse(spec.Function)
	if err != nil {
		return nil, err
	}
	procedure, err := syn.Parse(spec.Procedure)
	if err != nil {
		return nil, err
	}
	return NewBundle(&Trigger{
		base:      newBase(ctx, refName(KindTrigger, name), name, ctx.DependencyRefs()),
		before:    spec.Before,
		after:     spec.After,
		insteadOf: spec.InsteadOf,
		on:        on,
		function:  function,
		procedure: procedure,
	}), nil
}

// Kind returns KindTrigger.
func (t *Trigger) Kind() Kind { return KindTrigger }

// Before returns the before-event expression, or "".
func (t *Trigger) Before() string { return t.before }

// After returns the after-event expression, or "".
func (t *Trigger) After() string { return t.after }

// InsteadOf returns the instead-of-event expression, or "".
func (t *Trigger) InsteadOf() string { return t.insteadOf }

// On returns the trigger target.
func (t *Trigger) On() syntax.Text { return t.on }

// Function returns the function call expression; empty when the trigger
// calls a procedure instead.
func (t *Trigger) Function() syntax.Text { return t.function }

// Procedure returns the procedure call expression; empty when the trigger
// calls a function instead.
func (t *Trigger) Procedure() syntax.Text { return t.procedure }

// DependencyRefs returns the effective dependencies: the explicit set plus
// every ref mentioned by the target and the call expression.
func (t *Trigger) DependencyRefs() []string {
	return refUnion(t.explicit, textRefs(t.on, t.function, t.procedure))
}

// Dict returns the serialised form. Unset timing fields serialise as null.
func (t *Trigger) Dict() map[string]any {
	d := t.coreDict(KindTrigger, t.DependencyRefs())
	d["before"] = optString(t.before)
	d["after"] = optString(t.after)
	d["instead_of"] = optString(t.insteadOf)
	d["on"] = t.on.SQL()
	d["function"] = t.function.SQL()
	d["procedure"] = t.procedure.SQL()
	return d
}

// optString maps "" to null for nullable dict fields.
func optString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// TriggerFromDict rebuilds a Trigger from its serialised form, re-running
// the construction validation.
func TriggerFromDict(ctx Context, data map[string]any) (*Bundle, error) {
	ref, err := dictString(KindTrigger, data, "ref")
	if err != nil {
		return nil, err
	}
	name, err := dictString(KindTrigger, data, "name")
	if err != nil {
		return nil, err
	}
	deps, err := dictStrings(KindTrigger, data, "dependencies")
	if err != nil {
		return nil, err
	}
	spec := TriggerSpec{}
	if spec.Before, err = dictOptString(KindTrigger, data, "before"); err != nil {
		return nil, err
	}
	if spec.After, err = dictOptString(KindTrigger, data, "after"); err != nil {
		return nil, err
	}
	if spec.InsteadOf, err = dictOptString(KindTrigger, data, "instead_of"); err != nil {
		return nil, err
	}
	if spec.On, err = dictString(KindTrigger, data, "on"); err != nil {
		return nil, err
	}
	if spec.Function, err = dictOptString(KindTrigger, data, "function"); err != nil {
		return nil, err
	}
	if spec.Procedure, err = dictOptString(KindTrigger, data, "procedure"); err != nil {
		return nil, err
	}
	bundle, err := NewTrigger(ctx, name, spec)
	if err != nil {
		return nil, err
	}
	trigger := bundle.Main.(*Trigger)
	// Restore the persisted identity and dependency set: the context the
	// dict is imported under must not leak into the rebuilt entity.
	trigger.base = newBase(ctx, ref, name, deps)
	return bundle, nil
}
