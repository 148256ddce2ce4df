// # internal/config/config_test.go
package config

import (
	"os"
	"testing"
	"time"

	"uanodeset/internal/graph"
)

func TestLoad(t *testing.T) {
	content := `
inputs = ["./models/base.xml", "./models/plant.xml"]
include = ["*.NodeSet2.xml"]
exclude = ["*draft*"]

[merge]
duplicates = "error"
dangling = "strict"
resolve_enums = true

[output]
xml_namespace = "http://example.com/plant/"
xml = "merged.xml"
tsv = "plant"
sqlite = "plant.db"

[watch]
debounce = "1s"
`
	tmpfile, err := os.CreateTemp("", "config*.toml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Inputs) != 2 || cfg.Inputs[1] != "./models/plant.xml" {
		t.Errorf("Unexpected Inputs: %v", cfg.Inputs)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("Expected debounce 1s, got %v", cfg.Watch.Debounce)
	}
	if cfg.Output.SQLite != "plant.db" {
		t.Errorf("Expected sqlite plant.db, got %s", cfg.Output.SQLite)
	}
	opts := cfg.GraphOptions()
	if opts.Duplicates != graph.ErrorOnDuplicate || opts.Dangling != graph.Strict {
		t.Errorf("Unexpected graph options: %+v", opts)
	}
	if !cfg.Merge.ResolveEnums {
		t.Errorf("Expected resolve_enums true")
	}
}

func TestLoadDefaults(t *testing.T) {
	content := `inputs = ["a.xml"]`
	tmpfile, err := os.CreateTemp("", "config*.toml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	tmpfile.Write([]byte(content))
	tmpfile.Close()

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Expected default debounce 500ms, got %v", cfg.Watch.Debounce)
	}
	if len(cfg.Include) != 1 || cfg.Include[0] != "*.xml" {
		t.Errorf("Unexpected default Include: %v", cfg.Include)
	}
	opts := cfg.GraphOptions()
	if opts.Duplicates != graph.Override || opts.Dangling != graph.Permissive {
		t.Errorf("Unexpected default graph options: %+v", opts)
	}
}

func TestLoadError(t *testing.T) {
	_, err := Load("nonexistent.toml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}

	tmpfile, _ := os.CreateTemp("", "badconfig*.toml")
	defer os.Remove(tmpfile.Name())
	tmpfile.Write([]byte("bad = toml = format"))
	tmpfile.Close()

	_, err = Load(tmpfile.Name())
	if err == nil {
		t.Error("Expected error for malformed TOML")
	}
}

func TestLoadRejectsBadPolicy(t *testing.T) {
	tmpfile, _ := os.CreateTemp("", "config*.toml")
	defer os.Remove(tmpfile.Name())
	tmpfile.Write([]byte("[merge]\nduplicates = \"maybe\"\n"))
	tmpfile.Close()

	if _, err := Load(tmpfile.Name()); err == nil {
		t.Error("Expected error for unknown duplicate policy")
	}
}
