// # cmd/uanodeset/app_test.go
package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"uanodeset/internal/config"
	"uanodeset/internal/parser"
)

const baseModel = `<?xml version="1.0" encoding="utf-8"?>
<UANodeSet xmlns="http://opcfoundation.org/UA/2011/03/UANodeSet.xsd">
  <NamespaceUris>
    <Uri>http://example.com/base/</Uri>
  </NamespaceUris>
  <Models>
    <Model ModelUri="http://example.com/base/" Version="1.0.0"/>
  </Models>
  <UAObjectType NodeId="ns=1;i=1000" BrowseName="1:MachineType">
    <DisplayName>MachineType</DisplayName>
  </UAObjectType>
</UANodeSet>`

const plantModel = `<?xml version="1.0" encoding="utf-8"?>
<UANodeSet xmlns="http://opcfoundation.org/UA/2011/03/UANodeSet.xsd">
  <NamespaceUris>
    <Uri>http://example.com/plant/</Uri>
    <Uri>http://example.com/base/</Uri>
  </NamespaceUris>
  <Models>
    <Model ModelUri="http://example.com/plant/" Version="1.0.0"/>
  </Models>
  <UAObject NodeId="ns=1;i=10" BrowseName="1:Machine1">
    <DisplayName>Machine1</DisplayName>
    <References>
      <Reference ReferenceType="i=40">ns=2;i=1000</Reference>
    </References>
  </UAObject>
</UANodeSet>`

func TestApp(t *testing.T) {
	tmpDir, _ := os.MkdirTemp("", "apptest")
	defer os.RemoveAll(tmpDir)

	basePath := filepath.Join(tmpDir, "base.NodeSet2.xml")
	plantPath := filepath.Join(tmpDir, "plant.NodeSet2.xml")
	os.WriteFile(basePath, []byte(baseModel), 0644)
	os.WriteFile(plantPath, []byte(plantModel), 0644)

	cfg := &config.Config{
		Inputs:  []string{basePath, plantPath},
		Include: []string{"*.xml"},
		Output: config.Output{
			XML:    filepath.Join(tmpDir, "merged.xml"),
			TSV:    filepath.Join(tmpDir, "plant"),
			SQLite: filepath.Join(tmpDir, "plant.db"),
		},
	}

	app, err := NewApp(cfg)
	if err != nil {
		t.Fatal(err)
	}

	if err := app.Rebuild(); err != nil {
		t.Fatal(err)
	}
	if app.Graph.Len() != 2 {
		t.Errorf("Expected 2 nodes, got %d", app.Graph.Len())
	}
	if app.Graph.EdgeCount() != 1 {
		t.Errorf("Expected 1 reference, got %d", app.Graph.EdgeCount())
	}

	if err := app.GenerateOutputs(); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{
		cfg.Output.XML,
		cfg.Output.TSV + ".nodes.tsv",
		cfg.Output.TSV + ".references.tsv",
		cfg.Output.SQLite,
	} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Output %s was not generated", path)
		}
	}

	// The generated XML is itself a valid NodeSet for the plant model.
	f, err := os.Open(cfg.Output.XML)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	set, err := parser.Parse(f, "merged.xml")
	if err != nil {
		t.Fatalf("generated XML does not parse: %v", err)
	}
	if len(set.NamespaceURIs) == 0 || set.NamespaceURIs[0] != "http://example.com/plant/" {
		t.Errorf("serialized namespace should come first: %v", set.NamespaceURIs)
	}

	summary := app.Summary()
	if !strings.Contains(summary, "Nodes: 2") {
		t.Errorf("Unexpected summary:\n%s", summary)
	}

	// HandleChanges reruns the pipeline without error.
	app.HandleChanges([]string{plantPath})
	if app.Graph.Len() != 2 {
		t.Errorf("Rebuild after change lost nodes: %d", app.Graph.Len())
	}
}

func TestAppDirectoryInput(t *testing.T) {
	tmpDir, _ := os.MkdirTemp("", "apptest")
	defer os.RemoveAll(tmpDir)

	os.WriteFile(filepath.Join(tmpDir, "base.NodeSet2.xml"), []byte(baseModel), 0644)
	os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("ignore"), 0644)

	cfg := &config.Config{
		Inputs:  []string{tmpDir},
		Include: []string{"*.xml"},
	}
	app, err := NewApp(cfg)
	if err != nil {
		t.Fatal(err)
	}
	files, err := app.InputFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "base.NodeSet2.xml" {
		t.Errorf("Unexpected input files: %v", files)
	}
}

func TestAppNoInputs(t *testing.T) {
	cfg := &config.Config{Inputs: nil, Include: []string{"*.xml"}}
	app, err := NewApp(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := app.Rebuild(); err == nil {
		t.Error("Expected error for empty input set")
	}
}
