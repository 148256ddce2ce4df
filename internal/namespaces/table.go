// # internal/namespaces/table.go
package namespaces

import (
	"errors"
	"fmt"
)

// StandardURI is the OPC UA standard namespace, pinned to index 0 in
// every table for the lifetime of a graph.
const StandardURI = "http://opcfoundation.org/UA/"

// ErrNamespaceConflict is returned when merged files disagree about a
// URI-to-index mapping in a way the table cannot reconcile.
var ErrNamespaceConflict = errors.New("namespace conflict")

// Table is the bidirectional URI <-> index mapping shared by all files
// merged into one graph. Indices are dense and stable: once a URI is
// registered its index never changes.
type Table struct {
	uris  []string
	index map[string]uint16
}

func NewTable() *Table {
	t := &Table{index: make(map[string]uint16)}
	t.uris = append(t.uris, StandardURI)
	t.index[StandardURI] = 0
	return t
}

// Register returns the index for uri, adding it at the next free index on
// first registration. Repeated registration is idempotent.
func (t *Table) Register(uri string) (uint16, error) {
	if uri == "" {
		return 0, fmt.Errorf("%w: empty namespace uri", ErrNamespaceConflict)
	}
	if i, ok := t.index[uri]; ok {
		return i, nil
	}
	i := uint16(len(t.uris))
	t.uris = append(t.uris, uri)
	t.index[uri] = i
	return i, nil
}

// URI resolves an index back to its namespace URI.
func (t *Table) URI(index uint16) (string, bool) {
	if int(index) >= len(t.uris) {
		return "", false
	}
	return t.uris[index], true
}

// Index looks up the index of an already-registered URI.
func (t *Table) Index(uri string) (uint16, bool) {
	i, ok := t.index[uri]
	return i, ok
}

// Len is the number of registered namespaces, including the standard one.
func (t *Table) Len() int {
	return len(t.uris)
}

// URIs returns a copy of the dense namespace array.
func (t *Table) URIs() []string {
	return append([]string(nil), t.uris...)
}

// Remap registers each entry of a file's local <NamespaceUris> array and
// returns the substitution from file-local index to shared index. Local
// index 0 is the standard namespace by definition; local index i+1 is
// entry i of the array. A local array that names the standard URI at a
// non-zero position fails: index 0 may never be reassigned.
func (t *Table) Remap(local []string) ([]uint16, error) {
	subst := make([]uint16, len(local)+1)
	subst[0] = 0
	for i, uri := range local {
		if uri == StandardURI {
			return nil, fmt.Errorf("%w: %q declared at local index %d, reserved for index 0", ErrNamespaceConflict, uri, i+1)
		}
		shared, err := t.Register(uri)
		if err != nil {
			return nil, err
		}
		subst[i+1] = shared
	}
	return subst, nil
}
