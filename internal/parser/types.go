// # internal/parser/types.go
//
// In-memory model of a single parsed NodeSet2 file. Node ids inside a
// NodeSet are file-local: namespace indices refer to the file's own
// NamespaceUris array. The graph builder remaps them into a shared
// namespace table.
package parser

import (
	"strconv"
	"strings"

	"uanodeset/internal/nodeid"
	"uanodeset/internal/values"
)

// NodeClass identifies which of the eight UA node element kinds a node
// was parsed from.
type NodeClass uint8

const (
	ClassObject NodeClass = iota
	ClassVariable
	ClassMethod
	ClassObjectType
	ClassVariableType
	ClassReferenceType
	ClassDataType
	ClassView
)

var classTags = map[NodeClass]string{
	ClassObject:        "UAObject",
	ClassVariable:      "UAVariable",
	ClassMethod:        "UAMethod",
	ClassObjectType:    "UAObjectType",
	ClassVariableType:  "UAVariableType",
	ClassReferenceType: "UAReferenceType",
	ClassDataType:      "UADataType",
	ClassView:          "UAView",
}

// String returns the NodeSet2 element tag for the class.
func (c NodeClass) String() string {
	if tag, ok := classTags[c]; ok {
		return tag
	}
	return "UAObject"
}

// ClassFromTag maps a NodeSet2 element tag to its class.
func ClassFromTag(tag string) (NodeClass, bool) {
	for c, t := range classTags {
		if t == tag {
			return c, true
		}
	}
	return 0, false
}

// Reference is one entry of a node's <References> block, kept in the
// direction the file stated it.
type Reference struct {
	Type      nodeid.NodeID
	Target    nodeid.NodeID
	IsForward bool
}

// Node is one parsed UA node. Attributes with node-id or typed meaning
// get dedicated fields; everything else rides in Attrs keyed by the
// XML attribute name.
type Node struct {
	Class NodeClass
	ID    nodeid.NodeID

	// BrowseName is the name part; the namespace prefix of a "ns:name"
	// browse name is kept separately in BrowseNameNS.
	BrowseName   string
	BrowseNameNS uint16

	SymbolicName string
	DisplayName  string
	Description  string
	InverseName  string

	ParentID  nodeid.NodeID
	HasParent bool

	DataType    nodeid.NodeID
	HasDataType bool

	MethodDeclID  nodeid.NodeID
	HasMethodDecl bool

	Attrs map[string]string

	Value values.Value

	References []Reference
}

// SetAttr records a passthrough attribute, allocating the map lazily.
func (n *Node) SetAttr(name, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[name] = value
}

// Attr returns a passthrough attribute value.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// ValueRank returns the ValueRank attribute if present.
func (n *Node) ValueRank() (int32, bool) {
	s, ok := n.Attrs["ValueRank"]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(v), true
}

// IsAbstract reports the IsAbstract attribute, defaulting to false.
func (n *Node) IsAbstract() bool {
	return n.boolAttr("IsAbstract", false)
}

// Symmetric reports the Symmetric attribute, defaulting to false.
func (n *Node) Symmetric() bool {
	return n.boolAttr("Symmetric", false)
}

// Executable reports the Executable attribute, defaulting to true.
func (n *Node) Executable() bool {
	return n.boolAttr("Executable", true)
}

// Historizing reports the Historizing attribute, defaulting to false.
func (n *Node) Historizing() bool {
	return n.boolAttr("Historizing", false)
}

func (n *Node) boolAttr(name string, def bool) bool {
	s, ok := n.Attrs[name]
	if !ok {
		return def
	}
	return s == "true" || s == "1"
}

// AccessLevel returns the AccessLevel attribute if present.
func (n *Node) AccessLevel() (uint8, bool) {
	return n.uintAttr("AccessLevel")
}

// EventNotifier returns the EventNotifier attribute if present.
func (n *Node) EventNotifier() (uint8, bool) {
	return n.uintAttr("EventNotifier")
}

func (n *Node) uintAttr(name string) (uint8, bool) {
	s, ok := n.Attrs[name]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, false
	}
	return uint8(v), true
}

// ArrayDimensions returns the parsed ArrayDimensions attribute.
func (n *Node) ArrayDimensions() []uint32 {
	s, ok := n.Attrs["ArrayDimensions"]
	if !ok || s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	dims := make([]uint32, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return nil
		}
		dims = append(dims, uint32(v))
	}
	return dims
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	c := *n
	if n.Attrs != nil {
		c.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			c.Attrs[k] = v
		}
	}
	if n.References != nil {
		c.References = make([]Reference, len(n.References))
		copy(c.References, n.References)
	}
	return &c
}

// RequiredModel is one <RequiredModel> dependency entry.
type RequiredModel struct {
	URI             string
	Version         string
	PublicationDate string
}

// Model is the <Model> header of a NodeSet file.
type Model struct {
	URI             string
	Version         string
	PublicationDate string
	Required        []RequiredModel
}

// NodeSet is one fully parsed NodeSet2 file before merging.
type NodeSet struct {
	File          string
	Model         Model
	NamespaceURIs []string
	Aliases       map[string]nodeid.NodeID
	Nodes         []Node
}
