package plan

import (
	"github.com/syssam/sqlplan/compare"
	"github.com/syssam/sqlplan/entity"
	"github.com/syssam/sqlplan/registry"
)

// OpKind is the symbolic DDL operation of one plan step.
type OpKind string

const (
	OpCreate OpKind = "CREATE"
	OpAlter  OpKind = "ALTER"
	OpDrop   OpKind = "DROP"
)

// Op is one ordered step of a migration plan: an operation applied to the
// entity identified by Ref. Rendering concrete DDL is a separate concern.
type Op struct {
	Kind OpKind
	Ref  string
}

// differ carries the state of one Diff run.
type differ struct {
	old *registry.Registry
	new *registry.Registry

	newTopo []*registry.Node
	final   map[string]compare.Mutation

	ops []Op
	// dropped tracks refs whose removal has been emitted, or whose removal
	// is covered by their owner's operation.
	dropped map[string]bool
	// altered dedupes table ALTERs surfaced by column changes.
	altered map[string]bool
}

// Diff computes the ordered operation sequence transforming the old
// registry state into the new one.
//
// Intrinsic changes come from the variant comparators. Entities depending
// on anything dropped or recreated are forced to recreate as well. Drops
// are emitted before any operation that could reference the dropped entity,
// creates after their dependencies. Column operations fold into a single
// ALTER of the owning table, since columns are not rendered independently.
func Diff(old, new *registry.Registry) ([]Op, error) {
	d := &differ{
		old:     old,
		new:     new,
		final:   make(map[string]compare.Mutation),
		dropped: make(map[string]bool),
		altered: make(map[string]bool),
	}
	var err error
	if d.newTopo, err = new.Topological(); err != nil {
		return nil, err
	}
	if err := d.classify(); err != nil {
		return nil, err
	}
	d.propagate()
	d.dropRecreated()
	if err := d.walk(); err != nil {
		return nil, err
	}
	if err := d.sweep(); err != nil {
		return nil, err
	}
	return d.ops, nil
}

// classify computes the intrinsic mutation of every new-side entity.
func (d *differ) classify() error {
	for _, n := range d.newTopo {
		oldEntity, _ := d.old.Lookup(n.Ref())
		m, err := compare.Entities(oldEntity, n.Entity())
		if err != nil {
			return err
		}
		d.final[n.Ref()] = m
	}
	return nil
}

// depStatus resolves the final mutation of a dependency ref: refs absent
// from the new state are drops.
func (d *differ) depStatus(ref string) compare.Mutation {
	if m, ok := d.final[ref]; ok {
		return m
	}
	return compare.Drop
}

// propagate forces recreation onto entities whose dependencies drop or
// recreate. Both new-side dependencies and the old-side dependencies of the
// same ref count: an entity may be torn off a dependency that no longer
// exists. Forcing is monotone, so iterating to a fixpoint terminates.
func (d *differ) propagate() {
	for {
		changed := false
		for _, n := range d.newTopo {
			ref := n.Ref()
			if d.final[ref] != compare.Unchanged && d.final[ref] != compare.Alter {
				continue
			}
			deps := n.DepRefs()
			if oldNode := d.old.Node(ref); oldNode != nil {
				deps = append(deps, oldNode.DepRefs()...)
			}
			for _, dep := range deps {
				if s := d.depStatus(dep); s == compare.Drop || s == compare.Recreate {
					d.final[ref] = compare.Recreate
					changed = true
					break
				}
			}
		}
		if !changed {
			return
		}
	}
}

// ownerRef returns the owning table ref for columns, or "".
func ownerRef(e entity.Entity) string {
	if c, ok := e.(*entity.Column); ok {
		return c.TableRef()
	}
	return ""
}

// emitDrop appends a DROP unless the removal is covered by the owner.
// Dropping a column of a surviving table surfaces as an ALTER of the table
// instead.
func (d *differ) emitDrop(e entity.Entity) {
	ref := e.Ref()
	if d.dropped[ref] {
		return
	}
	d.dropped[ref] = true
	if owner := ownerRef(e); owner != "" {
		ownerGone := d.dropped[owner] || !d.new.Contains(owner)
		if ownerGone {
			return
		}
		if m := d.final[owner]; m == compare.Recreate || m == compare.Create {
			return
		}
		d.emitAlter(owner)
		return
	}
	d.ops = append(d.ops, Op{Kind: OpDrop, Ref: ref})
}

// emitAlter appends an ALTER, deduplicated per ref.
func (d *differ) emitAlter(ref string) {
	if d.altered[ref] {
		return
	}
	d.altered[ref] = true
	d.ops = append(d.ops, Op{Kind: OpAlter, Ref: ref})
}

// dropRecreated emits the DROP half of every recreation, dependants first.
func (d *differ) dropRecreated() {
	for i := len(d.newTopo) - 1; i >= 0; i-- {
		n := d.newTopo[i]
		if d.final[n.Ref()] == compare.Recreate {
			d.emitDrop(n.Entity())
		}
	}
}

// stale reports whether an old-side node should be dropped during the
// forward walk: gone from the new state, not yet handled, and with every
// dependant already dropped.
func (d *differ) stale(n *registry.Node) bool {
	ref := n.Ref()
	if d.new.Contains(ref) || d.dropped[ref] {
		return false
	}
	for _, dep := range n.DependantRefs() {
		// Any dependant not yet dropped still references this node.
		if !d.dropped[dep] {
			return false
		}
	}
	return true
}

// walk emits operations in new topological order. Before each entity that
// also exists on the old side, chains of stale old dependants are dropped
// tip-inward along its branches.
func (d *differ) walk() error {
	for _, n := range d.newTopo {
		ref := n.Ref()
		if d.old.Contains(ref) {
			edges, err := d.old.Branches(ref)
			if err != nil {
				return err
			}
			for _, edge := range edges {
				if d.stale(edge.Child) {
					d.emitDrop(edge.Child.Entity())
				}
			}
		}
		d.emit(n.Entity())
	}
	return nil
}

// emit appends the forward operation for a new-side entity. Column
// operations fold into the owning table.
func (d *differ) emit(e entity.Entity) {
	ref := e.Ref()
	m := d.final[ref]
	if m == compare.Unchanged {
		return
	}
	if owner := ownerRef(e); owner != "" {
		// A created, altered or recreated column surfaces on its table,
		// unless the table operation already covers it.
		if om := d.final[owner]; om == compare.Create || om == compare.Recreate {
			return
		}
		d.emitAlter(owner)
		return
	}
	switch m {
	case compare.Create, compare.Recreate:
		d.ops = append(d.ops, Op{Kind: OpCreate, Ref: ref})
	case compare.Alter:
		d.emitAlter(ref)
	}
}

// sweep drops old-only entities that no branch walk reached, dependants
// first.
func (d *differ) sweep() error {
	oldTopo, err := d.old.Topological()
	if err != nil {
		return err
	}
	for i := len(oldTopo) - 1; i >= 0; i-- {
		n := oldTopo[i]
		if !d.new.Contains(n.Ref()) && !d.dropped[n.Ref()] {
			d.emitDrop(n.Entity())
		}
	}
	return nil
}
