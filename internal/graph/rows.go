// # internal/graph/rows.go
//
// Flat row projections of the graph for tabular export.
package graph

import (
	"strconv"

	"uanodeset/internal/values"
)

// NodeRow is one node flattened to strings.
type NodeRow struct {
	ID          string
	Class       string
	BrowseName  string
	DisplayName string
	Description string
	ParentID    string
	DataType    string
	ValueRank   string
	IsAbstract  string
	Value       string
}

// ReferenceRow is one edge flattened to strings.
type ReferenceRow struct {
	Source string
	Type   string
	Target string
}

// NodeRows projects every node into a row, ordered by node id.
func (g *UAGraph) NodeRows() []NodeRow {
	ids := g.NodeIDs()
	rows := make([]NodeRow, 0, len(ids))
	for _, id := range ids {
		n := g.nodes[id]
		row := NodeRow{
			ID:          id.String(),
			Class:       n.Class.String(),
			BrowseName:  qualifiedBrowseName(n.BrowseNameNS, n.BrowseName),
			DisplayName: n.DisplayName,
			Description: n.Description,
		}
		if n.HasParent {
			row.ParentID = n.ParentID.String()
		}
		if n.HasDataType {
			row.DataType = n.DataType.String()
		}
		if rank, ok := n.ValueRank(); ok {
			row.ValueRank = strconv.FormatInt(int64(rank), 10)
		}
		if _, ok := n.Attr("IsAbstract"); ok {
			row.IsAbstract = strconv.FormatBool(n.IsAbstract())
		}
		if n.Value != nil {
			row.Value = values.Encode(n.Value)
		}
		rows = append(rows, row)
	}
	return rows
}

// ReferenceRows projects every edge into a row, in stable order.
func (g *UAGraph) ReferenceRows() []ReferenceRow {
	edges := g.Edges()
	rows := make([]ReferenceRow, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, ReferenceRow{
			Source: e.Source.String(),
			Type:   e.Type.String(),
			Target: e.Target.String(),
		})
	}
	return rows
}

func qualifiedBrowseName(ns uint16, name string) string {
	if ns == 0 {
		return name
	}
	return strconv.FormatUint(uint64(ns), 10) + ":" + name
}
