package builder

import (
	"github.com/syssam/sqlplan"
	"github.com/syssam/sqlplan/entity"
	"github.com/syssam/sqlplan/registry"
	"github.com/syssam/sqlplan/syntax"
)

// Manager is a scoped entity factory. A root manager owns the syntax
// protocol and the registry; child managers derived with After, AfterRefs
// and WithSchema carry a current schema and a current explicit dependency
// set that they inject into every entity they create.
//
// Managers are immutable: derivation returns a child, never mutates.
type Manager struct {
	parent *Manager
	root   *Manager
	syn    *syntax.Syntax
	reg    *registry.Registry
	schema *entity.Schema
	deps   []string
}

// Option configures a root manager.
type Option func(*Manager)

// WithSyntax sets the tagged-text protocol. Defaults to syntax.New.
func WithSyntax(syn *syntax.Syntax) Option {
	return func(m *Manager) { m.syn = syn }
}

// WithRegistry sets the backing registry. Defaults to a fresh one.
func WithRegistry(reg *registry.Registry) Option {
	return func(m *Manager) { m.reg = reg }
}

// NewRoot returns a root manager with no schema scope and no dependency
// set.
func NewRoot(opts ...Option) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	if m.syn == nil {
		m.syn = syntax.New()
	}
	if m.reg == nil {
		m.reg = registry.New()
	}
	m.root = m
	return m
}

// child derives a manager sharing the root's syntax and registry.
func (m *Manager) child() *Manager {
	return &Manager{
		parent: m,
		root:   m.root,
		syn:    m.syn,
		reg:    m.reg,
		schema: m.schema,
		deps:   m.deps,
	}
}

// After returns a child manager whose explicit dependency set is exactly
// the refs of the given entities. Calling it with no arguments clears the
// inherited set.
func (m *Manager) After(entities ...entity.Entity) *Manager {
	refs := make([]string, len(entities))
	for i, e := range entities {
		refs[i] = e.Ref()
	}
	return m.AfterRefs(refs...)
}

// AfterRefs is After for callers that hold refs rather than entities, such
// as generated declaration code.
func (m *Manager) AfterRefs(refs ...string) *Manager {
	c := m.child()
	c.deps = refs
	return c
}

// WithSchema returns a child manager scoping subsequently created entities
// under the given schema. The dependency set is inherited.
func (m *Manager) WithSchema(schema *entity.Schema) *Manager {
	c := m.child()
	c.schema = schema
	return c
}

// Root returns the root manager of the derivation chain.
func (m *Manager) Root() *Manager { return m.root }

// Registry returns the shared registry.
func (m *Manager) Registry() *registry.Registry { return m.reg }

// Syntax implements entity.Context.
func (m *Manager) Syntax() *syntax.Syntax { return m.syn }

// SchemaRef implements entity.Context.
func (m *Manager) SchemaRef() string {
	if m.schema == nil {
		return ""
	}
	return m.schema.Ref()
}

// CurrentSchema returns the schema scope, or nil.
func (m *Manager) CurrentSchema() *entity.Schema { return m.schema }

// DependencyRefs implements entity.Context.
func (m *Manager) DependencyRefs() []string { return m.deps }

// UpdateRefs implements entity.Context: it refreshes the registry adjacency
// after a local mutation of the entity.
func (m *Manager) UpdateRefs(e entity.Entity) error {
	return m.reg.UpdateNode(e)
}

// register inserts a bundle atomically.
func (m *Manager) register(b *entity.Bundle, err error) (*entity.Bundle, error) {
	if err != nil {
		return nil, err
	}
	if err := m.reg.RegisterBundle(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Schema declares a schema.
func (m *Manager) Schema(name string) (*entity.Schema, error) {
	b, err := m.register(entity.NewSchema(m, name))
	if err != nil {
		return nil, err
	}
	return b.Main.(*entity.Schema), nil
}

// Table declares a table with its columns. The table and every column
// register in one atomic step; additional table expressions are appended
// afterwards through Table.Additional.
func (m *Manager) Table(name string, cols ...entity.ColumnDef) (*entity.Table, error) {
	b, err := m.register(entity.NewTable(m, name, cols))
	if err != nil {
		return nil, err
	}
	return b.Main.(*entity.Table), nil
}

// Index declares an index.
func (m *Manager) Index(name, on, using string, exprs ...string) (*entity.Index, error) {
	b, err := m.register(entity.NewIndex(m, name, on, using, exprs...))
	if err != nil {
		return nil, err
	}
	return b.Main.(*entity.Index), nil
}

// Function declares a function.
func (m *Manager) Function(name string, spec entity.FunctionSpec) (*entity.Function, error) {
	b, err := m.register(entity.NewFunction(m, name, spec))
	if err != nil {
		return nil, err
	}
	return b.Main.(*entity.Function), nil
}

// Trigger declares a trigger.
func (m *Manager) Trigger(name string, spec entity.TriggerSpec) (*entity.Trigger, error) {
	b, err := m.register(entity.NewTrigger(m, name, spec))
	if err != nil {
		return nil, err
	}
	return b.Main.(*entity.Trigger), nil
}

// ExportDicts serialises every independently managed entity in topological
// order. Owned children such as columns travel inside their owner.
func (m *Manager) ExportDicts() ([]map[string]any, error) {
	entities, err := m.reg.Entities()
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(entities))
	for _, e := range entities {
		if !e.Exported() {
			continue
		}
		out = append(out, e.Dict())
	}
	return out, nil
}

// fromDict rebuilds one bundle, dispatching on the __type__ tag.
func (m *Manager) fromDict(data map[string]any) (*entity.Bundle, error) {
	kind, ok := data[entity.TypeKey].(string)
	if !ok {
		return nil, sqlplan.NewConstructionError("?", "?", "missing __type__ tag")
	}
	switch entity.Kind(kind) {
	case entity.KindSchema:
		return entity.SchemaFromDict(m, data)
	case entity.KindTable:
		return entity.TableFromDict(m, data)
	case entity.KindIndex:
		return entity.IndexFromDict(m, data)
	case entity.KindFunction:
		return entity.FunctionFromDict(m, data)
	case entity.KindTrigger:
		return entity.TriggerFromDict(m, data)
	default:
		return nil, sqlplan.NewConstructionError(kind, "?", "unknown __type__ tag")
	}
}

// ImportDicts reconstructs entities from their serialised form. Dicts must
// arrive in an order that respects dependencies, which ExportDicts
// guarantees.
func (m *Manager) ImportDicts(dicts []map[string]any) error {
	for _, data := range dicts {
		b, err := m.fromDict(data)
		if err != nil {
			return err
		}
		if err := m.reg.RegisterBundle(b); err != nil {
			return err
		}
	}
	return nil
}
