// # internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"uanodeset/internal/graph"
)

type Config struct {
	Inputs  []string `toml:"inputs"`
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
	Merge   Merge    `toml:"merge"`
	Output  Output   `toml:"output"`
	Watch   Watch    `toml:"watch"`
	Metrics Metrics  `toml:"metrics"`
}

type Metrics struct {
	// Addr enables the /metrics and /health endpoint when set, e.g.
	// ":9464".
	Addr string `toml:"addr"`
}

type Merge struct {
	Duplicates string `toml:"duplicates"` // override | error
	Dangling   string `toml:"dangling"`   // permissive | strict
	// ResolveEnums upgrades Int32 values of enum-typed variables.
	ResolveEnums bool `toml:"resolve_enums"`
}

type Output struct {
	// XMLNamespace selects the namespace URI to serialize. Empty means
	// the last merged model.
	XMLNamespace string `toml:"xml_namespace"`
	XML          string `toml:"xml"`
	TSV          string `toml:"tsv"`
	SQLite       string `toml:"sqlite"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	if _, err := graph.ParseDuplicatePolicy(cfg.Merge.Duplicates); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if _, err := graph.ParseDanglingPolicy(cfg.Merge.Dangling); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	// Default debounce if not set
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}

	if len(cfg.Include) == 0 {
		cfg.Include = []string{"*.xml"}
	}

	return &cfg, nil
}

// GraphOptions translates the merge section into graph options. Load
// has already validated the policy strings.
func (c *Config) GraphOptions() graph.Options {
	dup, _ := graph.ParseDuplicatePolicy(c.Merge.Duplicates)
	dangling, _ := graph.ParseDanglingPolicy(c.Merge.Dangling)
	return graph.Options{Duplicates: dup, Dangling: dangling}
}
