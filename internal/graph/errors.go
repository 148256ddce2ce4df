// # internal/graph/errors.go
package graph

import (
	"errors"
	"fmt"

	"uanodeset/internal/nodeid"
)

var (
	ErrDuplicateNodeID   = errors.New("duplicate node id")
	ErrDanglingReference = errors.New("dangling reference")
	ErrCyclicReference   = errors.New("cyclic reference")
)

// DuplicateNodeIDError reports a node id defined by more than one input
// under the Error duplicate policy.
type DuplicateNodeIDError struct {
	ID        nodeid.NodeID
	FirstFile string
	File      string
}

func (e *DuplicateNodeIDError) Error() string {
	return fmt.Sprintf("node %s in %s already defined by %s", e.ID, e.File, e.FirstFile)
}

func (e *DuplicateNodeIDError) Is(target error) bool { return target == ErrDuplicateNodeID }

// DanglingReferenceError reports a reference whose type or endpoint is
// not present in the graph.
type DanglingReferenceError struct {
	Source  nodeid.NodeID
	Type    nodeid.NodeID
	Target  nodeid.NodeID
	Missing nodeid.NodeID
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("reference %s -%s-> %s: node %s not in graph", e.Source, e.Type, e.Target, e.Missing)
}

func (e *DanglingReferenceError) Is(target error) bool { return target == ErrDanglingReference }

// CyclicReferenceError reports a cycle over hierarchical references.
// Cycle holds one full loop, first node repeated at the end.
type CyclicReferenceError struct {
	Cycle []nodeid.NodeID
}

func (e *CyclicReferenceError) Error() string {
	s := "hierarchical reference cycle:"
	for i, id := range e.Cycle {
		if i > 0 {
			s += " ->"
		}
		s += " " + id.String()
	}
	return s
}

func (e *CyclicReferenceError) Is(target error) bool { return target == ErrCyclicReference }
