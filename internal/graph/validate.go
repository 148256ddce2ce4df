// # internal/graph/validate.go
package graph

import (
	"fmt"
	"sort"

	"uanodeset/internal/nodeid"
	"uanodeset/internal/parser"
	"uanodeset/internal/values"
)

// builtinTypeNames maps the standard scalar data type ids to the value
// element tag they must be encoded with.
var builtinTypeNames = map[nodeid.NodeID]string{
	nodeid.MustParse("i=1"):  "Boolean",
	nodeid.MustParse("i=2"):  "SByte",
	nodeid.MustParse("i=3"):  "Byte",
	nodeid.MustParse("i=4"):  "Int16",
	nodeid.MustParse("i=5"):  "UInt16",
	nodeid.MustParse("i=6"):  "Int32",
	nodeid.MustParse("i=7"):  "UInt32",
	nodeid.MustParse("i=8"):  "Int64",
	nodeid.MustParse("i=9"):  "UInt64",
	nodeid.MustParse("i=10"): "Float",
	nodeid.MustParse("i=11"): "Double",
	nodeid.MustParse("i=12"): "String",
	nodeid.MustParse("i=13"): "DateTime",
	nodeid.MustParse("i=14"): "Guid",
	nodeid.MustParse("i=15"): "ByteString",
	nodeid.MustParse("i=17"): "NodeId",
	nodeid.MustParse("i=21"): "LocalizedText",
}

// ValidateValues checks every variable value against its declared data
// type where the type is a standard scalar or an enumeration. Unknown
// and structured data types are skipped. The findings come back sorted
// by node id.
func (g *UAGraph) ValidateValues() []error {
	type finding struct {
		id  nodeid.NodeID
		err error
	}
	var findings []finding
	for id, n := range g.nodes {
		if n.Class != parser.ClassVariable && n.Class != parser.ClassVariableType {
			continue
		}
		if n.Value == nil || !n.HasDataType {
			continue
		}
		want, scalar := builtinTypeNames[n.DataType]
		isEnum := !scalar && g.IsSubtypeOf(n.DataType, nodeid.Enumeration)
		if !scalar && !isEnum {
			continue
		}
		if isEnum {
			want = "Int32"
		}
		got := n.Value.TypeName()
		if list, ok := n.Value.(values.List); ok {
			got = list.ElemType
		}
		if got != want {
			findings = append(findings, finding{id, fmt.Errorf(
				"variable %s: value encoded as %s, data type %s expects %s", id, got, n.DataType, want)})
		}
	}
	sort.Slice(findings, func(i, j int) bool { return less(findings[i].id, findings[j].id) })
	errs := make([]error, 0, len(findings))
	for _, f := range findings {
		errs = append(errs, f.err)
	}
	return errs
}
