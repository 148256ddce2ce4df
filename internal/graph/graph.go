// # internal/graph/graph.go
//
// UAGraph is the merged address-space model: nodes keyed by node id
// plus a forward and an inverse adjacency index over the flattened
// reference set. All references are stored in forward direction;
// inverse references from the input files are flipped during Build.
package graph

import (
	"fmt"
	"sort"

	"uanodeset/internal/namespaces"
	"uanodeset/internal/nodeid"
	"uanodeset/internal/parser"
)

// Edge is one forward reference.
type Edge struct {
	Source nodeid.NodeID
	Type   nodeid.NodeID
	Target nodeid.NodeID
}

// UAGraph holds the merged model. The zero value is not usable; use
// NewGraph or Build.
type UAGraph struct {
	Namespaces *namespaces.Table
	Models     []parser.Model

	opts     Options
	nodes    map[nodeid.NodeID]*parser.Node
	forward  map[nodeid.NodeID][]Edge
	inverse  map[nodeid.NodeID][]Edge
	edgeSet  map[Edge]struct{}
	warnings []string
}

// NewGraph returns an empty graph with a fresh namespace table.
func NewGraph(opts Options) *UAGraph {
	return &UAGraph{
		Namespaces: namespaces.NewTable(),
		opts:       opts,
		nodes:      make(map[nodeid.NodeID]*parser.Node),
		forward:    make(map[nodeid.NodeID][]Edge),
		inverse:    make(map[nodeid.NodeID][]Edge),
		edgeSet:    make(map[Edge]struct{}),
	}
}

// Len returns the node count.
func (g *UAGraph) Len() int { return len(g.nodes) }

// EdgeCount returns the reference count.
func (g *UAGraph) EdgeCount() int { return len(g.edgeSet) }

// Node returns a copy of the node. Mutating the copy does not affect
// the graph; use AddNode to write changes back.
func (g *UAGraph) Node(id nodeid.NodeID) (*parser.Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// Has reports whether the node id is present.
func (g *UAGraph) Has(id nodeid.NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// AddNode inserts a node, failing on an existing id.
func (g *UAGraph) AddNode(n parser.Node) error {
	if _, exists := g.nodes[n.ID]; exists {
		return &DuplicateNodeIDError{ID: n.ID}
	}
	g.putNode(n)
	return nil
}

// PutNode inserts or replaces a node unconditionally.
func (g *UAGraph) PutNode(n parser.Node) {
	g.putNode(n)
}

func (g *UAGraph) putNode(n parser.Node) {
	c := n.Clone()
	c.References = nil
	g.nodes[n.ID] = c
}

// RemoveNode deletes a node. With cascade set, all references touching
// the node are removed as well. Without it the dangling policy decides:
// under Strict a node that still has references fails with a
// DanglingReferenceError, under Permissive the removal succeeds and
// each now-dangling reference is kept and recorded as a warning.
func (g *UAGraph) RemoveNode(id nodeid.NodeID, cascade bool) error {
	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("remove node %s: not in graph", id)
	}
	if cascade {
		for _, e := range append([]Edge(nil), g.forward[id]...) {
			g.RemoveReference(e)
		}
		for _, e := range append([]Edge(nil), g.inverse[id]...) {
			g.RemoveReference(e)
		}
		delete(g.nodes, id)
		return nil
	}
	touching := append(append([]Edge(nil), g.forward[id]...), g.inverse[id]...)
	if len(touching) > 0 && g.opts.Dangling == Strict {
		first := touching[0]
		return &DanglingReferenceError{
			Source: first.Source, Type: first.Type, Target: first.Target,
			Missing: id,
		}
	}
	for _, e := range touching {
		g.warnf("reference %s -%s-> %s: node %s removed, reference now dangling", e.Source, e.Type, e.Target, id)
	}
	delete(g.nodes, id)
	return nil
}

// AddReference inserts a forward reference. Under the Strict dangling
// policy both endpoints and the reference type must already be present;
// under Permissive a missing endpoint is recorded as a warning. A
// duplicate edge is a no-op.
func (g *UAGraph) AddReference(e Edge) error {
	if _, dup := g.edgeSet[e]; dup {
		return nil
	}
	for _, id := range []nodeid.NodeID{e.Source, e.Type, e.Target} {
		if _, ok := g.nodes[id]; ok {
			continue
		}
		if g.opts.Dangling == Strict {
			return &DanglingReferenceError{Source: e.Source, Type: e.Type, Target: e.Target, Missing: id}
		}
		g.warnf("reference %s -%s-> %s: node %s not in graph", e.Source, e.Type, e.Target, id)
	}
	g.edgeSet[e] = struct{}{}
	g.forward[e.Source] = append(g.forward[e.Source], e)
	g.inverse[e.Target] = append(g.inverse[e.Target], e)
	return nil
}

// RemoveReference deletes an edge, reporting whether it existed.
func (g *UAGraph) RemoveReference(e Edge) bool {
	if _, ok := g.edgeSet[e]; !ok {
		return false
	}
	delete(g.edgeSet, e)
	g.forward[e.Source] = dropEdge(g.forward[e.Source], e)
	g.inverse[e.Target] = dropEdge(g.inverse[e.Target], e)
	return true
}

func dropEdge(edges []Edge, e Edge) []Edge {
	for i := range edges {
		if edges[i] == e {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return edges
}

// References returns the forward edges originating at id.
func (g *UAGraph) References(id nodeid.NodeID) []Edge {
	return append([]Edge(nil), g.forward[id]...)
}

// ReferencedBy returns the forward edges arriving at id.
func (g *UAGraph) ReferencedBy(id nodeid.NodeID) []Edge {
	return append([]Edge(nil), g.inverse[id]...)
}

// NodeIDs returns all node ids in a stable order.
func (g *UAGraph) NodeIDs() []nodeid.NodeID {
	ids := make([]nodeid.NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return less(ids[i], ids[j]) })
	return ids
}

// Edges returns all edges in a stable order.
func (g *UAGraph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.edgeSet))
	for e := range g.edgeSet {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Source != b.Source {
			return less(a.Source, b.Source)
		}
		if a.Type != b.Type {
			return less(a.Type, b.Type)
		}
		return less(a.Target, b.Target)
	})
	return edges
}

func less(a, b nodeid.NodeID) bool {
	if a.Namespace != b.Namespace {
		return a.Namespace < b.Namespace
	}
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	if a.Type == nodeid.Numeric {
		an, aok := a.Numeric()
		bn, bok := b.Numeric()
		if aok && bok {
			return an < bn
		}
	}
	return a.Value < b.Value
}

// FindNodes returns the ids of nodes matching the predicate, in stable
// order.
func (g *UAGraph) FindNodes(pred func(*parser.Node) bool) []nodeid.NodeID {
	var ids []nodeid.NodeID
	for id, n := range g.nodes {
		if pred(n) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return less(ids[i], ids[j]) })
	return ids
}

// NodesByClass returns all nodes of one class.
func (g *UAGraph) NodesByClass(class parser.NodeClass) []nodeid.NodeID {
	return g.FindNodes(func(n *parser.Node) bool { return n.Class == class })
}

// NodeByBrowseName returns the first node with the given browse name in
// the given namespace.
func (g *UAGraph) NodeByBrowseName(ns uint16, name string) (nodeid.NodeID, bool) {
	ids := g.FindNodes(func(n *parser.Node) bool {
		return n.BrowseNameNS == ns && n.BrowseName == name
	})
	if len(ids) == 0 {
		return nodeid.NodeID{}, false
	}
	return ids[0], true
}

// ReferenceTypeByBrowseName resolves a reference type by browse name,
// failing unless exactly one node matches.
func (g *UAGraph) ReferenceTypeByBrowseName(name string) (nodeid.NodeID, error) {
	return g.uniqueByBrowseName(parser.ClassReferenceType, name)
}

// DataTypeByBrowseName resolves a data type by browse name, failing
// unless exactly one node matches.
func (g *UAGraph) DataTypeByBrowseName(name string) (nodeid.NodeID, error) {
	return g.uniqueByBrowseName(parser.ClassDataType, name)
}

func (g *UAGraph) uniqueByBrowseName(class parser.NodeClass, name string) (nodeid.NodeID, error) {
	ids := g.FindNodes(func(n *parser.Node) bool {
		return n.Class == class && n.BrowseName == name
	})
	switch len(ids) {
	case 0:
		return nodeid.NodeID{}, fmt.Errorf("no %s with browse name %q", class, name)
	case 1:
		return ids[0], nil
	}
	return nodeid.NodeID{}, fmt.Errorf("browse name %q is ambiguous, %d %s nodes match", name, len(ids), class)
}

// Warnings returns the non-fatal findings collected so far.
func (g *UAGraph) Warnings() []string {
	return append([]string(nil), g.warnings...)
}

func (g *UAGraph) warnf(format string, args ...any) {
	g.warnings = append(g.warnings, fmt.Sprintf(format, args...))
}
