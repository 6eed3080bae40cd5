package entity

import (
	"strings"

	"github.com/syssam/sqlplan/syntax"
)

// DefaultLanguage is assumed when a function spec leaves Language empty.
const DefaultLanguage = "plpgsql"

// ArgDef declares one function argument: its name and type text.
type ArgDef struct {
	Name string
	Type string
}

// Arg is a shorthand constructor for an ArgDef.
func Arg(name, typ string) ArgDef {
	return ArgDef{Name: name, Type: typ}
}

// FunctionSpec collects the kind-specific inputs of NewFunction.
type FunctionSpec struct {
	// Args holds the ordered argument list. Argument types take part in the
	// ref disambiguator, so changing the signature changes the ref.
	Args []ArgDef

	// Returns is the return type text.
	Returns string

	// Language is the function language; DefaultLanguage when empty.
	Language string

	// Body is the function body. Refs tagged inside it become inferred
	// dependencies.
	Body string
}

type funcArg struct {
	name string
	typ  syntax.Text
}

// Function is a stored function. Two functions with the same name but
// different argument type sequences are distinct entities: the ref embeds a
// hash of the argument types.
type Function struct {
	base
	schemaRef string
	args      []funcArg
	returns   syntax.Text
	language  string
	body      syntax.Text
}

// NewFunction builds a Function entity.
func NewFunction(ctx Context, name string, spec FunctionSpec) (*Bundle, error) {
	syn := ctx.Syntax()
	args := make([]funcArg, len(spec.Args))
	for i, a := range spec.Args {
		typ, err := syn.Parse(a.Type)
		if err != nil {
			return nil, err
		}
		args[i] = funcArg{name: a.Name, typ: typ}
	}
	returns, err := syn.Parse(spec.Returns)
	if err != nil {
		return nil, err
	}
	body, err := syn.Parse(spec.Body)
	if err != nil {
		return nil, err
	}
	language := spec.Language
	if language == "" {
		language = DefaultLanguage
	}
	ref := scopedRef(ctx.SchemaRef(), KindFunction, name+"."+argsHash(args))
	return NewBundle(&Function{
		base:      newBase(ctx, ref, name, ctx.DependencyRefs()),
		schemaRef: ctx.SchemaRef(),
		args:      args,
		returns:   returns,
		language:  language,
		body:      body,
	}), nil
}

// argsHash derives the ref disambiguator from the argument type sequence.
func argsHash(args []funcArg) string {
	types := make([]string, len(args))
	for i, a := range args {
		types[i] = a.typ.SQL()
	}
	return syntax.HashString(strings.Join(types, "\x00"))
}

// Kind returns KindFunction.
func (f *Function) Kind() Kind { return KindFunction }

// SchemaRef returns the ref of the containing schema, or "".
func (f *Function) SchemaRef() string { return f.schemaRef }

// Args returns the ordered argument definitions with clean type text.
func (f *Function) Args() []ArgDef {
	out := make([]ArgDef, len(f.args))
	for i, a := range f.args {
		out[i] = ArgDef{Name: a.name, Type: a.typ.SQL()}
	}
	return out
}

// Returns returns the return type text.
func (f *Function) Returns() syntax.Text { return f.returns }

// Language returns the function language.
func (f *Function) Language() string { return f.language }

// Body returns the function body text.
func (f *Function) Body() syntax.Text { return f.body }

// DependencyRefs returns the effective dependencies: the explicit set,
// every ref mentioned by the return type or body, and the schema fallback.
func (f *Function) DependencyRefs() []string {
	return effectiveDeps(f.schemaRef, f.explicit, textRefs(f.returns, f.body))
}

// Dict returns the serialised form. Arguments serialise as an ordered list
// of name/type pairs: their order feeds the ref disambiguator, and mapping
// encodings would lose it.
func (f *Function) Dict() map[string]any {
	d := f.coreDict(KindFunction, f.DependencyRefs())
	if f.schemaRef != "" {
		d["schema"] = f.schemaRef
	} else {
		d["schema"] = nil
	}
	d["returns"] = f.returns.SQL()
	d["language"] = f.language
	d["body"] = f.body.SQL()
	args := make([]any, len(f.args))
	for i, a := range f.args {
		args[i] = map[string]any{"name": a.name, "type": a.typ.SQL()}
	}
	d["args"] = args
	return d
}

// FunctionFromDict rebuilds a Function from its serialised form.
func FunctionFromDict(ctx Context, data map[string]any) (*Bundle, error) {
	ref, err := dictString(KindFunction, data, "ref")
	if err != nil {
		return nil, err
	}
	name, err := dictString(KindFunction, data, "name")
	if err != nil {
		return nil, err
	}
	schemaRef, err := dictOptString(KindFunction, data, "schema")
	if err != nil {
		return nil, err
	}
	deps, err := dictStrings(KindFunction, data, "dependencies")
	if err != nil {
		return nil, err
	}
	returns, err := dictString(KindFunction, data, "returns")
	if err != nil {
		return nil, err
	}
	language, err := dictString(KindFunction, data, "language")
	if err != nil {
		return nil, err
	}
	body, err := dictString(KindFunction, data, "body")
	if err != nil {
		return nil, err
	}
	rawArgs, err := dictList(KindFunction, data, "args")
	if err != nil {
		return nil, err
	}
	syn := ctx.Syntax()
	args := make([]funcArg, len(rawArgs))
	for i, raw := range rawArgs {
		argData, ok := raw.(map[string]any)
		if !ok {
			return nil, constructionErr(KindFunction, name, "argument entry is not a map")
		}
		argName, err := dictString(KindFunction, argData, "name")
		if err != nil {
			return nil, err
		}
		argType, err := dictString(KindFunction, argData, "type")
		if err != nil {
			return nil, err
		}
		typ, err := syn.Parse(argType)
		if err != nil {
			return nil, err
		}
		args[i] = funcArg{name: argName, typ: typ}
	}
	returnsText, err := syn.Parse(returns)
	if err != nil {
		return nil, err
	}
	bodyText, err := syn.Parse(body)
	if err != nil {
		return nil, err
	}
	return NewBundle(&Function{
		base:      newBase(ctx, ref, name, deps),
		schemaRef: schemaRef,
		args:      args,
		returns:   returnsText,
		language:  language,
		body:      bodyText,
	}), nil
}
