package entity

import (
	"slices"

	"github.com/syssam/sqlplan/syntax"
)

// Kind identifies an entity variant. The kind names appear verbatim inside
// refs and inside the __type__ field of serialised dicts.
type Kind string

const (
	KindSchema   Kind = "Schema"
	KindTable    Kind = "Table"
	KindColumn   Kind = "Column"
	KindIndex    Kind = "Index"
	KindFunction Kind = "Function"
	KindTrigger  Kind = "Trigger"
)

// Context is the narrow view of the declaration manager that entities need
// while being built and mutated. The concrete manager lives in the builder
// package; keeping this interface here breaks the import cycle between the
// two.
type Context interface {
	// Syntax returns the tagged-text protocol in effect.
	Syntax() *syntax.Syntax

	// SchemaRef returns the ref of the current schema scope, or "" when the
	// manager is unscoped.
	SchemaRef() string

	// DependencyRefs returns the current explicit dependency set injected
	// into created entities.
	DependencyRefs() []string

	// UpdateRefs re-reads the entity's dependency refs and refreshes the
	// registry adjacency. Entities call it after local mutations such as
	// Table.Additional.
	UpdateRefs(Entity) error
}

// Entity is any first-class object in the schema graph.
type Entity interface {
	// Ref returns the deterministic string identifier. A ref never changes
	// except through drop-and-recreate.
	Ref() string

	// Kind returns the entity variant.
	Kind() Kind

	// Name returns the declared SQL name.
	Name() string

	// DependencyRefs returns the effective dependency set: the union of the
	// explicit dependencies injected at construction and the refs inferred
	// from the entity's tagged SQL fragments, sorted.
	DependencyRefs() []string

	// Exported reports whether the entity is serialised independently.
	// Owned children such as table columns report false and are serialised
	// inside their owner.
	Exported() bool

	// Dict returns the serialised form of the entity.
	Dict() map[string]any

	// String renders the entity as a tagged SQL identifier, so it can be
	// interpolated into other SQL fragments and carry its ref along.
	String() string
}

// Bundle is the atomic unit of registration: one main entity plus the owned
// children that must enter the registry in the same step.
type Bundle struct {
	Main     Entity
	Children []Entity
}

// NewBundle returns a Bundle over the main entity and its children.
func NewBundle(main Entity, children ...Entity) *Bundle {
	return &Bundle{Main: main, Children: children}
}

// Entities returns the bundle members, main entity first.
func (b *Bundle) Entities() []Entity {
	out := make([]Entity, 0, 1+len(b.Children))
	out = append(out, b.Main)
	return append(out, b.Children...)
}

// base carries the attributes every variant shares.
type base struct {
	ctx      Context
	ref      string
	name     string
	explicit []string
	id       syntax.Ident
}

func newBase(ctx Context, ref, name string, explicit []string) base {
	return base{
		ctx:      ctx,
		ref:      ref,
		name:     name,
		explicit: refUnion(explicit),
		id:       ctx.Syntax().NewIdent([]string{name}, ref),
	}
}

// Ref returns the entity ref.
func (b *base) Ref() string { return b.ref }

// Name returns the declared SQL name.
func (b *base) Name() string { return b.name }

// Exported reports whether the entity is serialised independently.
func (b *base) Exported() bool { return true }

// String renders the tagged identifier form.
func (b *base) String() string { return b.id.String() }

// Ident returns the entity's SQL identifier.
func (b *base) Ident() syntax.Ident { return b.id }

// coreDict returns the serialised fields shared by every variant.
func (b *base) coreDict(kind Kind, deps []string) map[string]any {
	ds := make([]any, len(deps))
	for i, d := range deps {
		ds[i] = d
	}
	return map[string]any{
		"__type__":     string(kind),
		"ref":          b.ref,
		"name":         b.name,
		"dependencies": ds,
	}
}

// refName builds the `<Kind>:<name>` ref segment.
func refName(kind Kind, name string) string {
	return string(kind) + ":" + name
}

// scopedRef prefixes the ref segment with the schema ref, when scoped.
func scopedRef(schemaRef string, kind Kind, name string) string {
	if schemaRef == "" {
		return refName(kind, name)
	}
	return schemaRef + "|" + refName(kind, name)
}

// refUnion merges ref slices into one sorted, deduplicated set.
func refUnion(sets ...[]string) []string {
	var out []string
	for _, set := range sets {
		out = append(out, set...)
	}
	if len(out) == 0 {
		return nil
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// textRefs collects the refs mentioned by the given fragments.
func textRefs(texts ...syntax.Text) []string {
	var out []string
	for _, t := range texts {
		out = append(out, t.Refs()...)
	}
	return out
}

// effectiveDeps implements the shared dependency rule: explicit union
// inferred and, for schema-scoped entities, a fallback on the containing
// schema when the union is empty.
func effectiveDeps(schemaRef string, explicit, inferred []string) []string {
	deps := refUnion(explicit, inferred)
	if len(deps) == 0 && schemaRef != "" {
		return []string{schemaRef}
	}
	return deps
}
