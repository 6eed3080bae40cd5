package registry

import (
	"slices"

	"github.com/syssam/sqlplan"
	"github.com/syssam/sqlplan/entity"
)

// Node is one vertex of the dependency DAG: an entity plus its forward and
// reverse adjacency.
type Node struct {
	entity     entity.Entity
	deps       map[string]*Node
	dependants map[string]*Node
	// seq is the insertion sequence number, used for deterministic
	// iteration orders.
	seq int
}

// Entity returns the entity held by the node.
func (n *Node) Entity() entity.Entity { return n.entity }

// Ref returns the ref of the held entity.
func (n *Node) Ref() string { return n.entity.Ref() }

// DepRefs returns the refs of the node's dependencies, sorted.
func (n *Node) DepRefs() []string {
	return sortedRefs(n.deps)
}

// DependantRefs returns the refs of the node's dependants, sorted.
func (n *Node) DependantRefs() []string {
	return sortedRefs(n.dependants)
}

func sortedRefs(m map[string]*Node) []string {
	out := make([]string, 0, len(m))
	for ref := range m {
		out = append(out, ref)
	}
	slices.Sort(out)
	return out
}

// Edge is one (parent, child) pair yielded by Branches, where child is a
// dependant of parent.
type Edge struct {
	Parent *Node
	Child  *Node
}

// Registry is a directed acyclic graph of entities keyed by ref. It is not
// safe for concurrent use; a registry belongs to one declaration flow at a
// time.
type Registry struct {
	nodes map[string]*Node
	next  int
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{nodes: make(map[string]*Node)}
}

// Len returns the number of registered entities.
func (r *Registry) Len() int { return len(r.nodes) }

// Contains reports whether a ref is registered.
func (r *Registry) Contains(ref string) bool {
	_, ok := r.nodes[ref]
	return ok
}

// Node returns the node for the given ref, or nil.
func (r *Registry) Node(ref string) *Node {
	return r.nodes[ref]
}

// Entity returns the entity for the given ref, failing with an
// UnknownRefError when absent.
func (r *Registry) Entity(ref string) (entity.Entity, error) {
	n, ok := r.nodes[ref]
	if !ok {
		return nil, sqlplan.NewUnknownRefError(ref)
	}
	return n.entity, nil
}

// Lookup returns the entity for the given ref and whether it exists.
func (r *Registry) Lookup(ref string) (entity.Entity, bool) {
	n, ok := r.nodes[ref]
	if !ok {
		return nil, false
	}
	return n.entity, true
}

// Register inserts the given entities as one atomic step. Every dependency
// ref must resolve within the registry or within the batch itself; every
// ref must be fresh. On any failure nothing is inserted.
//
// The batch form exists for bundles: a table and its columns reference each
// other and must land together.
func (r *Registry) Register(entities ...entity.Entity) error {
	// Phase one: validate. Refs must be fresh and unique within the batch,
	// dependencies resolvable against the registry or the batch.
	batch := make(map[string]entity.Entity, len(entities))
	for _, e := range entities {
		ref := e.Ref()
		if _, ok := r.nodes[ref]; ok {
			return sqlplan.NewDuplicateRefError(ref)
		}
		if _, ok := batch[ref]; ok {
			return sqlplan.NewDuplicateRefError(ref)
		}
		batch[ref] = e
	}
	for _, e := range entities {
		for _, dep := range e.DependencyRefs() {
			if _, ok := r.nodes[dep]; ok {
				continue
			}
			if _, ok := batch[dep]; ok {
				continue
			}
			return sqlplan.NewUnknownRefErrorBy(dep, e.Ref())
		}
	}
	// Phase two: insert all nodes, then wire edges. Wiring after insertion
	// lets batch members depend on each other regardless of their order.
	for _, e := range entities {
		r.nodes[e.Ref()] = &Node{
			entity:     e,
			deps:       make(map[string]*Node),
			dependants: make(map[string]*Node),
			seq:        r.next,
		}
		r.next++
	}
	for _, e := range entities {
		n := r.nodes[e.Ref()]
		for _, dep := range e.DependencyRefs() {
			d := r.nodes[dep]
			n.deps[dep] = d
			d.dependants[n.Ref()] = n
		}
	}
	return nil
}

// RegisterBundle inserts every entity of a bundle atomically.
func (r *Registry) RegisterBundle(b *entity.Bundle) error {
	return r.Register(b.Entities()...)
}

// UpdateNode re-reads the entity's dependency refs and rebuilds its forward
// edges, dropping stale back-edges and installing new ones. Dependants are
// untouched: an update only reflects changes local to the entity's own
// inputs. New dependencies must already be registered, and must not close a
// cycle through the node's dependants.
func (r *Registry) UpdateNode(e entity.Entity) error {
	n, ok := r.nodes[e.Ref()]
	if !ok {
		return sqlplan.NewUnknownRefError(e.Ref())
	}
	refs := e.DependencyRefs()
	for _, dep := range refs {
		d, ok := r.nodes[dep]
		if !ok {
			return sqlplan.NewUnknownRefErrorBy(dep, e.Ref())
		}
		// A dependency that is itself a transitive dependant of this node
		// would close a cycle.
		if r.reachesThroughDependants(n, d) {
			return sqlplan.NewCycleError([]string{e.Ref(), dep})
		}
	}
	for _, d := range n.deps {
		delete(d.dependants, n.Ref())
	}
	n.deps = make(map[string]*Node, len(refs))
	for _, dep := range refs {
		d := r.nodes[dep]
		n.deps[dep] = d
		d.dependants[n.Ref()] = n
	}
	return nil
}

// reachesThroughDependants reports whether to is reachable from from along
// dependant edges.
func (r *Registry) reachesThroughDependants(from, to *Node) bool {
	if from == to {
		return true
	}
	seen := map[*Node]bool{from: true}
	stack := []*Node{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range n.dependants {
			if d == to {
				return true
			}
			if !seen[d] {
				seen[d] = true
				stack = append(stack, d)
			}
		}
	}
	return false
}

// bySeq returns all nodes in insertion order.
func (r *Registry) bySeq() []*Node {
	out := make([]*Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b *Node) int { return a.seq - b.seq })
	return out
}

// Topological returns every node with dependencies before dependants.
// Nodes that tie break by insertion order, so the result is stable across
// equal inputs. A CycleError is returned when the graph cannot be
// linearised.
func (r *Registry) Topological() ([]*Node, error) {
	pending := r.bySeq()
	emitted := make(map[*Node]bool, len(pending))
	out := make([]*Node, 0, len(pending))
	for len(pending) > 0 {
		progressed := false
		rest := pending[:0]
		for _, n := range pending {
			ready := true
			for _, d := range n.deps {
				if !emitted[d] {
					ready = false
					break
				}
			}
			if ready {
				emitted[n] = true
				out = append(out, n)
				progressed = true
			} else {
				rest = append(rest, n)
			}
		}
		pending = rest
		if !progressed {
			refs := make([]string, len(pending))
			for i, n := range pending {
				refs[i] = n.Ref()
			}
			return nil, sqlplan.NewCycleError(refs)
		}
	}
	return out, nil
}

// Entities returns every entity in topological order.
func (r *Registry) Entities() ([]entity.Entity, error) {
	nodes, err := r.Topological()
	if err != nil {
		return nil, err
	}
	out := make([]entity.Entity, len(nodes))
	for i, n := range nodes {
		out[i] = n.entity
	}
	return out, nil
}

// Branches yields the (parent, child) edges of a depth-first walk from head
// along dependant edges, emitting each edge after the child's own subtree.
// Children are visited newest-first, so the most recently declared
// dependants surface before older ones. Diamond shapes are walked once.
func (r *Registry) Branches(head string) ([]Edge, error) {
	n, ok := r.nodes[head]
	if !ok {
		return nil, sqlplan.NewUnknownRefError(head)
	}
	var (
		out     []Edge
		visited = make(map[*Node]bool)
		walk    func(parent *Node)
	)
	walk = func(parent *Node) {
		children := make([]*Node, 0, len(parent.dependants))
		for _, c := range parent.dependants {
			children = append(children, c)
		}
		slices.SortFunc(children, func(a, b *Node) int { return b.seq - a.seq })
		for _, c := range children {
			if visited[c] {
				continue
			}
			visited[c] = true
			walk(c)
			out = append(out, Edge{Parent: parent, Child: c})
		}
	}
	walk(n)
	return out, nil
}
