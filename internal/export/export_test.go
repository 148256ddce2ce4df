// # internal/export/export_test.go
package export

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"uanodeset/internal/graph"
	"uanodeset/internal/nodeid"
	"uanodeset/internal/parser"
	"uanodeset/internal/values"
)

func testGraph(t *testing.T) *graph.UAGraph {
	t.Helper()
	tank := parser.Node{
		Class:        parser.ClassObject,
		ID:           nodeid.MustParse("ns=1;i=10"),
		BrowseName:   "Tank",
		BrowseNameNS: 1,
		DisplayName:  "Tank",
	}
	level := parser.Node{
		Class:        parser.ClassVariable,
		ID:           nodeid.MustParse("ns=1;i=11"),
		BrowseName:   "Level",
		BrowseNameNS: 1,
	}
	level.DataType = nodeid.MustParse("i=11")
	level.HasDataType = true
	level.Value = values.Double{Value: 0.7, Valid: true}
	level.References = []parser.Reference{
		{Type: nodeid.HasComponent, Target: tank.ID, IsForward: false},
	}
	set := &parser.NodeSet{
		File:          "tank.xml",
		NamespaceURIs: []string{"urn:tank"},
		Nodes:         []parser.Node{tank, level},
	}
	g, err := graph.Build([]*parser.NodeSet{set}, graph.DefaultOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestWriteNodesTSV(t *testing.T) {
	g := testGraph(t)
	var sb strings.Builder
	if err := WriteNodesTSV(&sb, g); err != nil {
		t.Fatalf("WriteNodesTSV: %v", err)
	}
	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows: %q", len(lines), sb.String())
	}
	if !strings.HasPrefix(lines[0], "NodeId\tNodeClass\tBrowseName") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(sb.String(), "ns=1;i=10\tUAObject\t1:Tank") {
		t.Errorf("missing tank row in %q", sb.String())
	}
}

func TestWriteReferencesTSV(t *testing.T) {
	g := testGraph(t)
	var sb strings.Builder
	if err := WriteReferencesTSV(&sb, g); err != nil {
		t.Fatalf("WriteReferencesTSV: %v", err)
	}
	if !strings.Contains(sb.String(), "ns=1;i=10\ti=47\tns=1;i=11") {
		t.Errorf("missing flipped component edge in %q", sb.String())
	}
}

func TestStoreRoundTrip(t *testing.T) {
	g := testGraph(t)
	path := filepath.Join(t.TempDir(), "graph.db")

	store, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.SaveGraph(ctx, g); err != nil {
		t.Fatalf("SaveGraph: %v", err)
	}
	nodes, err := store.CountNodes(ctx)
	if err != nil {
		t.Fatalf("CountNodes: %v", err)
	}
	if nodes != g.Len() {
		t.Errorf("stored %d nodes, want %d", nodes, g.Len())
	}
	refs, err := store.CountReferences(ctx)
	if err != nil {
		t.Fatalf("CountReferences: %v", err)
	}
	if refs != g.EdgeCount() {
		t.Errorf("stored %d references, want %d", refs, g.EdgeCount())
	}

	// Saving again must replace, not append.
	if err := store.SaveGraph(ctx, g); err != nil {
		t.Fatalf("second SaveGraph: %v", err)
	}
	nodes, err = store.CountNodes(ctx)
	if err != nil {
		t.Fatalf("CountNodes: %v", err)
	}
	if nodes != g.Len() {
		t.Errorf("second save left %d nodes, want %d", nodes, g.Len())
	}
}
