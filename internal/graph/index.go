// # internal/graph/index.go
//
// Hierarchy navigation over the merged reference set: subtype walks,
// type-definition lookups and cycle detection. Graphs are often merged
// without the base UA NodeSet, so a baked-in seed of the standard
// hierarchical reference types backs up whatever subtype edges the
// inputs actually carry.
package graph

import (
	"sort"

	"uanodeset/internal/nodeid"
)

// SubtypeChain walks HasSubtype edges from id up to its root type. The
// result starts with id itself. Revisiting a type means the subtype
// lattice has a cycle; the nodes walked so far are returned together
// with a CyclicReferenceError.
func (g *UAGraph) SubtypeChain(id nodeid.NodeID) ([]nodeid.NodeID, error) {
	chain := []nodeid.NodeID{id}
	seen := map[nodeid.NodeID]int{id: 0}
	cur := id
	for {
		parent, ok := g.supertypeOf(cur)
		if !ok {
			return chain, nil
		}
		if start, dup := seen[parent]; dup {
			cycle := append([]nodeid.NodeID(nil), chain[start:]...)
			cycle = append(cycle, parent)
			return chain, &CyclicReferenceError{Cycle: cycle}
		}
		seen[parent] = len(chain)
		chain = append(chain, parent)
		cur = parent
	}
}

func (g *UAGraph) supertypeOf(id nodeid.NodeID) (nodeid.NodeID, bool) {
	for _, e := range g.inverse[id] {
		if e.Type == nodeid.HasSubtype {
			return e.Source, true
		}
	}
	return nodeid.NodeID{}, false
}

// IsSubtypeOf reports whether sub equals super or descends from it. A
// cyclic lattice answers from the types walked before the revisit.
func (g *UAGraph) IsSubtypeOf(sub, super nodeid.NodeID) bool {
	chain, _ := g.SubtypeChain(sub)
	for _, id := range chain {
		if id == super {
			return true
		}
	}
	return false
}

// SubtypeClosure returns root plus all its transitive subtypes.
func (g *UAGraph) SubtypeClosure(root nodeid.NodeID) []nodeid.NodeID {
	seen := map[nodeid.NodeID]struct{}{root: {}}
	queue := []nodeid.NodeID{root}
	out := []nodeid.NodeID{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.forward[cur] {
			if e.Type != nodeid.HasSubtype {
				continue
			}
			if _, dup := seen[e.Target]; dup {
				continue
			}
			seen[e.Target] = struct{}{}
			out = append(out, e.Target)
			queue = append(queue, e.Target)
		}
	}
	return out
}

var hierarchicalSeed = []nodeid.NodeID{
	nodeid.Hierarchical,
	nodeid.HasChild,
	nodeid.Organizes,
	nodeid.Aggregates,
	nodeid.HasSubtype,
	nodeid.HasProperty,
	nodeid.HasComponent,
	nodeid.HasOrderedComp,
}

// hierarchicalTypes returns the set of reference types treated as
// hierarchical: the standard seed expanded with subtype edges present
// in the graph.
func (g *UAGraph) hierarchicalTypes() map[nodeid.NodeID]struct{} {
	return g.typeSet(hierarchicalSeed...)
}

// TypeDefinition returns the type a node is an instance of.
func (g *UAGraph) TypeDefinition(id nodeid.NodeID) (nodeid.NodeID, bool) {
	for _, e := range g.forward[id] {
		if e.Type == nodeid.HasTypeDefinition {
			return e.Target, true
		}
	}
	return nodeid.NodeID{}, false
}

// InstancesOf returns the nodes whose type definition is typeID or any
// of its subtypes.
func (g *UAGraph) InstancesOf(typeID nodeid.NodeID) []nodeid.NodeID {
	var out []nodeid.NodeID
	seen := make(map[nodeid.NodeID]struct{})
	for _, t := range g.SubtypeClosure(typeID) {
		for _, e := range g.inverse[t] {
			if e.Type != nodeid.HasTypeDefinition {
				continue
			}
			if _, dup := seen[e.Source]; dup {
				continue
			}
			seen[e.Source] = struct{}{}
			out = append(out, e.Source)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Children returns the direct hierarchical children of id.
func (g *UAGraph) Children(id nodeid.NodeID) []nodeid.NodeID {
	return g.childrenIn(id, g.hierarchicalTypes())
}

// ChildrenByType returns the direct children reached over refType or
// any of its subtypes.
func (g *UAGraph) ChildrenByType(id, refType nodeid.NodeID) []nodeid.NodeID {
	return g.childrenIn(id, g.typeSet(refType))
}

// ClosestParent walks hierarchical references upward from id and
// returns the nearest ancestor whose type definition is typeID or one
// of its subtypes.
func (g *UAGraph) ClosestParent(id, typeID nodeid.NodeID) (nodeid.NodeID, bool) {
	wanted := g.typeSet(typeID)
	hier := g.hierarchicalTypes()
	seen := map[nodeid.NodeID]struct{}{id: {}}
	queue := []nodeid.NodeID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.inverse[cur] {
			if _, ok := hier[e.Type]; !ok {
				continue
			}
			if _, dup := seen[e.Source]; dup {
				continue
			}
			seen[e.Source] = struct{}{}
			if td, ok := g.TypeDefinition(e.Source); ok {
				if _, hit := wanted[td]; hit {
					return e.Source, true
				}
			}
			queue = append(queue, e.Source)
		}
	}
	return nodeid.NodeID{}, false
}

func (g *UAGraph) childrenIn(id nodeid.NodeID, types map[nodeid.NodeID]struct{}) []nodeid.NodeID {
	var out []nodeid.NodeID
	for _, e := range g.forward[id] {
		if _, ok := types[e.Type]; ok {
			out = append(out, e.Target)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (g *UAGraph) typeSet(roots ...nodeid.NodeID) map[nodeid.NodeID]struct{} {
	set := make(map[nodeid.NodeID]struct{})
	for _, root := range roots {
		for _, id := range g.SubtypeClosure(root) {
			set[id] = struct{}{}
		}
	}
	return set
}

// Subtree returns id plus everything reachable over hierarchical
// references, breadth first. Passing reference types restricts the walk
// to those types and their subtypes.
func (g *UAGraph) Subtree(id nodeid.NodeID, refTypes ...nodeid.NodeID) []nodeid.NodeID {
	hier := g.hierarchicalTypes()
	if len(refTypes) > 0 {
		hier = g.typeSet(refTypes...)
	}
	seen := map[nodeid.NodeID]struct{}{id: {}}
	queue := []nodeid.NodeID{id}
	out := []nodeid.NodeID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.forward[cur] {
			if _, ok := hier[e.Type]; !ok {
				continue
			}
			if _, dup := seen[e.Target]; dup {
				continue
			}
			seen[e.Target] = struct{}{}
			out = append(out, e.Target)
			queue = append(queue, e.Target)
		}
	}
	return out
}

// findCycle runs a coloring DFS over hierarchical edges and returns the
// first cycle found, or nil.
func (g *UAGraph) findCycle() *CyclicReferenceError {
	cycles := g.circularReferences(true)
	if len(cycles) == 0 {
		return nil
	}
	return &CyclicReferenceError{Cycle: cycles[0]}
}

// CircularReferences returns every hierarchical cycle in the graph.
// Each cycle lists its nodes in order with the first repeated at the
// end.
func (g *UAGraph) CircularReferences() [][]nodeid.NodeID {
	return g.circularReferences(false)
}

func (g *UAGraph) circularReferences(firstOnly bool) [][]nodeid.NodeID {
	hier := g.hierarchicalTypes()

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[nodeid.NodeID]int)
	var stack []nodeid.NodeID
	onStack := make(map[nodeid.NodeID]int)
	var cycles [][]nodeid.NodeID

	var visit func(id nodeid.NodeID) bool
	visit = func(id nodeid.NodeID) bool {
		color[id] = gray
		onStack[id] = len(stack)
		stack = append(stack, id)
		for _, e := range g.forward[id] {
			if _, ok := hier[e.Type]; !ok {
				continue
			}
			switch color[e.Target] {
			case white:
				if visit(e.Target) && firstOnly {
					return true
				}
			case gray:
				start := onStack[e.Target]
				cycle := append([]nodeid.NodeID(nil), stack[start:]...)
				cycle = append(cycle, e.Target)
				cycles = append(cycles, cycle)
				if firstOnly {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		delete(onStack, id)
		color[id] = black
		return false
	}

	for _, id := range g.NodeIDs() {
		if color[id] != white {
			continue
		}
		if visit(id) && firstOnly {
			break
		}
	}
	return cycles
}
