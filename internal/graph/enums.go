// # internal/graph/enums.go
//
// Enumeration handling: data types descending from Enumeration carry
// their labels in an EnumStrings property. EnumDict collects those
// label tables; ResolveEnums upgrades plain Int32 variable values to
// Enum values carrying the resolved label.
package graph

import (
	"fmt"

	"uanodeset/internal/nodeid"
	"uanodeset/internal/parser"
	"uanodeset/internal/values"
)

// EnumDict maps every enumeration data type in the graph to its labels,
// indexed by enum value.
func (g *UAGraph) EnumDict() map[nodeid.NodeID][]string {
	dict := make(map[nodeid.NodeID][]string)
	for _, id := range g.NodesByClass(parser.ClassDataType) {
		if !g.IsSubtypeOf(id, nodeid.Enumeration) || id == nodeid.Enumeration {
			continue
		}
		labels := g.enumStrings(id)
		if labels != nil {
			dict[id] = labels
		}
	}
	return dict
}

// enumStrings reads the EnumStrings property of a data type node.
func (g *UAGraph) enumStrings(typeID nodeid.NodeID) []string {
	for _, e := range g.forward[typeID] {
		if e.Type != nodeid.HasProperty {
			continue
		}
		prop, ok := g.nodes[e.Target]
		if !ok || prop.BrowseName != "EnumStrings" {
			continue
		}
		list, ok := prop.Value.(values.List)
		if !ok {
			continue
		}
		labels := make([]string, 0, len(list.Elems))
		for _, elem := range list.Elems {
			lt, ok := elem.(values.LocalizedText)
			if !ok {
				return nil
			}
			labels = append(labels, lt.Text)
		}
		return labels
	}
	return nil
}

// ResolveEnums rewrites Int32 values of variables typed with an
// enumeration into Enum values. Values outside the label table are left
// untouched and recorded as warnings. Returns the number of values
// upgraded.
func (g *UAGraph) ResolveEnums() int {
	dict := g.EnumDict()
	if len(dict) == 0 {
		return 0
	}
	upgraded := 0
	for id, n := range g.nodes {
		if n.Class != parser.ClassVariable || !n.HasDataType || n.Value == nil {
			continue
		}
		labels, ok := dict[n.DataType]
		if !ok {
			continue
		}
		iv, ok := n.Value.(values.Int32)
		if !ok || !iv.Valid {
			continue
		}
		if iv.Value < 0 || int(iv.Value) >= len(labels) {
			g.warnf("variable %s: enum value %d out of range for %s", id, iv.Value, n.DataType)
			continue
		}
		name := labels[iv.Value]
		n.Value = values.Enum{
			Value: iv.Value,
			Name:  name,
			Label: fmt.Sprintf("%s_%d", name, iv.Value),
		}
		upgraded++
	}
	return upgraded
}
