// # internal/graph/options.go
package graph

import "fmt"

// DuplicatePolicy decides what happens when two inputs define the same
// node id.
type DuplicatePolicy string

const (
	// Override keeps the definition from the later file in merge order.
	Override DuplicatePolicy = "override"
	// ErrorOnDuplicate fails the build on the first duplicate.
	ErrorOnDuplicate DuplicatePolicy = "error"
)

// DanglingPolicy decides how references to absent nodes are treated.
type DanglingPolicy string

const (
	// Permissive keeps dangling references and records warnings. Inputs
	// routinely reference the base UA namespace without shipping it.
	Permissive DanglingPolicy = "permissive"
	// Strict fails the build on the first dangling reference.
	Strict DanglingPolicy = "strict"
)

// Options configures Build and the graph's own mutation checks.
type Options struct {
	Duplicates DuplicatePolicy
	Dangling   DanglingPolicy
}

// DefaultOptions is the lenient configuration: later files win and
// dangling references warn.
func DefaultOptions() Options {
	return Options{Duplicates: Override, Dangling: Permissive}
}

// ParseDuplicatePolicy validates a configuration string.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case Override, ErrorOnDuplicate:
		return DuplicatePolicy(s), nil
	case "":
		return Override, nil
	}
	return "", fmt.Errorf("unknown duplicate policy %q", s)
}

// ParseDanglingPolicy validates a configuration string.
func ParseDanglingPolicy(s string) (DanglingPolicy, error) {
	switch DanglingPolicy(s) {
	case Permissive, Strict:
		return DanglingPolicy(s), nil
	case "":
		return Permissive, nil
	}
	return "", fmt.Errorf("unknown dangling policy %q", s)
}
