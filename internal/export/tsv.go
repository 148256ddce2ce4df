// # internal/export/tsv.go
//
// Tab-separated export of the graph's row projections.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"uanodeset/internal/graph"
)

var nodeHeader = []string{
	"NodeId", "NodeClass", "BrowseName", "DisplayName", "Description",
	"ParentNodeId", "DataType", "ValueRank", "IsAbstract", "Value",
}

var referenceHeader = []string{"Source", "ReferenceType", "Target"}

// WriteNodesTSV writes one row per node, header first.
func WriteNodesTSV(w io.Writer, g *graph.UAGraph) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(nodeHeader); err != nil {
		return err
	}
	for _, r := range g.NodeRows() {
		rec := []string{
			r.ID, r.Class, r.BrowseName, r.DisplayName, r.Description,
			r.ParentID, r.DataType, r.ValueRank, r.IsAbstract, r.Value,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReferencesTSV writes one row per edge, header first.
func WriteReferencesTSV(w io.Writer, g *graph.UAGraph) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(referenceHeader); err != nil {
		return err
	}
	for _, r := range g.ReferenceRows() {
		if err := cw.Write([]string{r.Source, r.Type, r.Target}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTSVFiles writes nodes and references next to each other using
// the base path: base.nodes.tsv and base.references.tsv.
func WriteTSVFiles(base string, g *graph.UAGraph) error {
	if err := writeFile(base+".nodes.tsv", g, WriteNodesTSV); err != nil {
		return err
	}
	return writeFile(base+".references.tsv", g, WriteReferencesTSV)
}

func writeFile(path string, g *graph.UAGraph, write func(io.Writer, *graph.UAGraph) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f, g); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
