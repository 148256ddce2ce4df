// # internal/parser/header_test.go
package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestScanHeader(t *testing.T) {
	h, err := ScanHeader(strings.NewReader(sampleNodeSet), "sample.xml")
	if err != nil {
		t.Fatalf("ScanHeader: %v", err)
	}
	if len(h.NamespaceURIs) != 1 || h.NamespaceURIs[0] != "http://example.com/plant/" {
		t.Errorf("NamespaceURIs = %v", h.NamespaceURIs)
	}
	if h.Model.URI != "http://example.com/plant/" || h.Model.Version != "1.2.0" {
		t.Errorf("Model = %+v", h.Model)
	}
	if len(h.Model.Required) != 1 || h.Model.Required[0].URI != "http://opcfoundation.org/UA/" {
		t.Errorf("Required = %+v", h.Model.Required)
	}
}

func TestScanHeaderMissingRoot(t *testing.T) {
	if _, err := ScanHeader(strings.NewReader(`<NotANodeSet/>`), "bad.xml"); err == nil {
		t.Fatal("want error for missing UANodeSet root")
	}
}

func headerFile(t *testing.T, dir, name, uri string, required ...string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	b.WriteString(`<UANodeSet xmlns="http://opcfoundation.org/UA/2011/03/UANodeSet.xsd">` + "\n")
	b.WriteString("  <NamespaceUris><Uri>" + uri + "</Uri></NamespaceUris>\n")
	b.WriteString(`  <Models><Model ModelUri="` + uri + `">` + "\n")
	for _, req := range required {
		b.WriteString(`    <RequiredModel ModelUri="` + req + `"/>` + "\n")
	}
	b.WriteString("  </Model></Models>\n</UANodeSet>\n")
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSortByDependencies(t *testing.T) {
	dir := t.TempDir()
	base := headerFile(t, dir, "base.xml", "urn:base")
	mid := headerFile(t, dir, "mid.xml", "urn:mid", "urn:base")
	top := headerFile(t, dir, "top.xml", "urn:top", "urn:mid")

	got, err := SortByDependencies([]string{top, mid, base})
	if err != nil {
		t.Fatalf("SortByDependencies: %v", err)
	}
	want := []string{base, mid, top}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}

	// Requirements outside the input set do not constrain the order.
	alone, err := SortByDependencies([]string{top})
	if err != nil || len(alone) != 1 || alone[0] != top {
		t.Errorf("single file = %v, %v", alone, err)
	}
}

func TestSortByDependenciesCycle(t *testing.T) {
	dir := t.TempDir()
	a := headerFile(t, dir, "a.xml", "urn:a", "urn:b")
	b := headerFile(t, dir, "b.xml", "urn:b", "urn:a")
	if _, err := SortByDependencies([]string{a, b}); err == nil {
		t.Fatal("want error for cyclic model requirements")
	}
}
