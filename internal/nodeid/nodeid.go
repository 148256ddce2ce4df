// # internal/nodeid/nodeid.go
package nodeid

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ErrMalformedNodeID is wrapped by every parse failure in this package.
var ErrMalformedNodeID = errors.New("malformed node id")

// Type is the lexical kind of a node-id identifier.
type Type byte

const (
	Numeric Type = 'i'
	String  Type = 's'
	GUID    Type = 'g'
	Opaque  Type = 'b'
)

func (t Type) String() string {
	return string(byte(t))
}

// NodeID is the canonical (namespace index, identifier) key for one node.
// NodeID is comparable and used directly as a map key throughout the graph.
type NodeID struct {
	Namespace uint16
	Type      Type
	Value     string
}

// Parse normalizes a node-id string of the form [ns=<uint>;]<kind>=<value>
// where kind is one of i, s, g, b. The namespace defaults to 0.
func Parse(s string) (NodeID, error) {
	rest := s
	var ns uint64
	if strings.HasPrefix(rest, "ns=") {
		semi := strings.IndexByte(rest, ';')
		if semi < 0 {
			return NodeID{}, fmt.Errorf("%w: %q: missing ';' after namespace", ErrMalformedNodeID, s)
		}
		var err error
		ns, err = strconv.ParseUint(rest[3:semi], 10, 16)
		if err != nil {
			return NodeID{}, fmt.Errorf("%w: %q: non-numeric namespace index", ErrMalformedNodeID, s)
		}
		rest = rest[semi+1:]
	}

	if len(rest) < 2 || rest[1] != '=' {
		return NodeID{}, fmt.Errorf("%w: %q: expected <kind>=<value>", ErrMalformedNodeID, s)
	}
	kind := Type(rest[0])
	value := rest[2:]

	switch kind {
	case Numeric:
		if _, err := strconv.ParseUint(value, 10, 32); err != nil {
			return NodeID{}, fmt.Errorf("%w: %q: numeric identifier is not an unsigned integer", ErrMalformedNodeID, s)
		}
	case String:
		if value == "" {
			return NodeID{}, fmt.Errorf("%w: %q: empty string identifier", ErrMalformedNodeID, s)
		}
	case GUID:
		u, err := uuid.Parse(value)
		if err != nil {
			return NodeID{}, fmt.Errorf("%w: %q: invalid guid", ErrMalformedNodeID, s)
		}
		value = u.String()
	case Opaque:
		if _, err := base64.StdEncoding.DecodeString(value); err != nil {
			return NodeID{}, fmt.Errorf("%w: %q: invalid base64 identifier", ErrMalformedNodeID, s)
		}
	default:
		return NodeID{}, fmt.Errorf("%w: %q: unknown identifier kind %q", ErrMalformedNodeID, s, string(rest[0]))
	}

	return NodeID{Namespace: uint16(ns), Type: kind, Value: value}, nil
}

// MustParse is for constants and tests.
func MustParse(s string) NodeID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String renders the id back to its lexical form. The ns= prefix is
// omitted for namespace 0, matching how NodeSet2 files spell standard ids.
func (n NodeID) String() string {
	if n.Namespace == 0 {
		return string(byte(n.Type)) + "=" + n.Value
	}
	return "ns=" + strconv.FormatUint(uint64(n.Namespace), 10) + ";" + string(byte(n.Type)) + "=" + n.Value
}

// IsZero reports whether the id is the unset zero value.
func (n NodeID) IsZero() bool {
	return n.Type == 0 && n.Value == "" && n.Namespace == 0
}

// WithNamespace returns a copy of the id rewritten to the given namespace
// index. Used during merge when a file's local indices are remapped.
func (n NodeID) WithNamespace(ns uint16) NodeID {
	n.Namespace = ns
	return n
}

// Numeric returns the numeric identifier value, or false for other kinds.
func (n NodeID) Numeric() (uint32, bool) {
	if n.Type != Numeric {
		return 0, false
	}
	v, err := strconv.ParseUint(n.Value, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

// New constructs a NodeID without validation. Callers are expected to pass
// values that already satisfy the kind's lexical rules.
func New(ns uint16, kind Type, value string) NodeID {
	return NodeID{Namespace: ns, Type: kind, Value: value}
}
