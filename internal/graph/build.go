// # internal/graph/build.go
//
// Merging parsed NodeSet files into one UAGraph. Files are merged in
// the order given; each file's local namespace indices are rewritten
// through the shared namespace table, and inverse references are
// flipped so the graph only carries forward edges.
package graph

import (
	"fmt"

	"uanodeset/internal/nodeid"
	"uanodeset/internal/parser"
	"uanodeset/internal/values"
)

// BuildFiles parses the given NodeSet2 files and merges them.
func BuildFiles(paths []string, opts Options) (*UAGraph, error) {
	sets := make([]*parser.NodeSet, 0, len(paths))
	for _, p := range paths {
		set, err := parser.ParseFile(p)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return Build(sets, opts)
}

// Build merges the parsed sets in order into a new graph, then checks
// references and rejects hierarchical cycles.
func Build(sets []*parser.NodeSet, opts Options) (*UAGraph, error) {
	g := NewGraph(opts)
	origin := make(map[nodeid.NodeID]string)
	var edges []Edge

	for _, set := range sets {
		subst, err := g.Namespaces.Remap(set.NamespaceURIs)
		if err != nil {
			return nil, fmt.Errorf("merge %s: %w", set.File, err)
		}
		if set.Model.URI != "" {
			g.Models = append(g.Models, set.Model)
		}
		for i := range set.Nodes {
			n, nodeEdges, err := remapNode(&set.Nodes[i], subst, set.File)
			if err != nil {
				return nil, err
			}
			if prev, dup := origin[n.ID]; dup {
				// A redefinition under another node class is never a
				// legitimate override.
				if existing := g.nodes[n.ID]; existing != nil && existing.Class != n.Class {
					return nil, &DuplicateNodeIDError{ID: n.ID, FirstFile: prev, File: set.File}
				}
				if opts.Duplicates == ErrorOnDuplicate {
					return nil, &DuplicateNodeIDError{ID: n.ID, FirstFile: prev, File: set.File}
				}
				g.warnf("node %s from %s overrides definition from %s", n.ID, set.File, prev)
			}
			origin[n.ID] = set.File
			g.putNode(n)
			edges = append(edges, nodeEdges...)
		}
	}

	for _, e := range edges {
		if err := g.AddReference(e); err != nil {
			return nil, err
		}
	}
	if cycle := g.findCycle(); cycle != nil {
		return nil, cycle
	}
	return g, nil
}

// remapNode rewrites a node's namespace indices through subst and
// flattens its reference block into forward edges.
func remapNode(src *parser.Node, subst []uint16, file string) (parser.Node, []Edge, error) {
	n := *src.Clone()

	var err error
	if n.ID, err = remapID(n.ID, subst, file); err != nil {
		return n, nil, err
	}
	if n.HasParent {
		if n.ParentID, err = remapID(n.ParentID, subst, file); err != nil {
			return n, nil, err
		}
	}
	if n.HasDataType {
		if n.DataType, err = remapID(n.DataType, subst, file); err != nil {
			return n, nil, err
		}
	}
	if n.HasMethodDecl {
		if n.MethodDeclID, err = remapID(n.MethodDeclID, subst, file); err != nil {
			return n, nil, err
		}
	}
	if n.BrowseNameNS != 0 {
		if int(n.BrowseNameNS) >= len(subst) {
			return n, nil, fmt.Errorf("merge %s: browse name namespace %d out of range", file, n.BrowseNameNS)
		}
		n.BrowseNameNS = subst[n.BrowseNameNS]
	}
	if n.Value != nil {
		if n.Value, err = remapValue(n.Value, subst, file); err != nil {
			return n, nil, err
		}
	}

	edges := make([]Edge, 0, len(n.References))
	for _, ref := range n.References {
		rt, err := remapID(ref.Type, subst, file)
		if err != nil {
			return n, nil, err
		}
		target, err := remapID(ref.Target, subst, file)
		if err != nil {
			return n, nil, err
		}
		if ref.IsForward {
			edges = append(edges, Edge{Source: n.ID, Type: rt, Target: target})
		} else {
			edges = append(edges, Edge{Source: target, Type: rt, Target: n.ID})
		}
	}
	n.References = nil
	return n, edges, nil
}

// remapValue rewrites node ids embedded in a value payload. Raw
// Structure bodies are carried verbatim and not rewritten.
func remapValue(v values.Value, subst []uint16, file string) (values.Value, error) {
	switch t := v.(type) {
	case values.NodeIDValue:
		if !t.Valid {
			return t, nil
		}
		id, err := remapID(t.Value, subst, file)
		if err != nil {
			return t, err
		}
		t.Value = id
		return t, nil
	case values.ExtensionObject:
		if t.HasTypeID {
			id, err := remapID(t.TypeID, subst, file)
			if err != nil {
				return t, err
			}
			t.TypeID = id
		}
		if t.Body != nil {
			body, err := remapValue(t.Body, subst, file)
			if err != nil {
				return t, err
			}
			t.Body = body
		}
		return t, nil
	case values.List:
		elems := make([]values.Value, len(t.Elems))
		for i, el := range t.Elems {
			ev, err := remapValue(el, subst, file)
			if err != nil {
				return t, err
			}
			elems[i] = ev
		}
		t.Elems = elems
		return t, nil
	}
	return v, nil
}

func remapID(id nodeid.NodeID, subst []uint16, file string) (nodeid.NodeID, error) {
	if id.Namespace == 0 {
		return id, nil
	}
	if int(id.Namespace) >= len(subst) {
		return id, fmt.Errorf("merge %s: node id %s: namespace index out of range", file, id)
	}
	return id.WithNamespace(subst[id.Namespace]), nil
}
