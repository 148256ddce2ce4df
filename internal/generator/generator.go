// # internal/generator/generator.go
//
// NodeSet2 emission. Generate writes the nodes of one namespace back
// out as a UANodeSet document. The serialized namespace always becomes
// local index 1; every other non-standard namespace referenced by the
// emitted nodes is listed after it.
//
// Reference placement keeps each edge in exactly one <References>
// block: an edge whose target lives in the serialized namespace is
// written as an inverse reference on the target node, an edge leaving
// the namespace is written forward on its source. Re-parsing flips the
// inverse entries back, so a parse of the output reproduces the edge
// set.
package generator

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"

	"uanodeset/internal/graph"
	"uanodeset/internal/nodeid"
	"uanodeset/internal/parser"
	"uanodeset/internal/values"
)

const nodeSetXMLNS = "http://opcfoundation.org/UA/2011/03/UANodeSet.xsd"

// standardAliases is the alias table written into every generated file.
// Attribute and reference-type ids found here are emitted by name.
var standardAliases = []struct {
	Alias string
	ID    nodeid.NodeID
}{
	{"Boolean", nodeid.MustParse("i=1")},
	{"SByte", nodeid.MustParse("i=2")},
	{"Byte", nodeid.MustParse("i=3")},
	{"Int16", nodeid.MustParse("i=4")},
	{"UInt16", nodeid.MustParse("i=5")},
	{"Int32", nodeid.MustParse("i=6")},
	{"UInt32", nodeid.MustParse("i=7")},
	{"Int64", nodeid.MustParse("i=8")},
	{"UInt64", nodeid.MustParse("i=9")},
	{"Float", nodeid.MustParse("i=10")},
	{"Double", nodeid.MustParse("i=11")},
	{"String", nodeid.MustParse("i=12")},
	{"DateTime", nodeid.MustParse("i=13")},
	{"Guid", nodeid.MustParse("i=14")},
	{"ByteString", nodeid.MustParse("i=15")},
	{"LocalizedText", nodeid.MustParse("i=21")},
	{"Organizes", nodeid.Organizes},
	{"HasModellingRule", nodeid.HasModellingRule},
	{"HasEncoding", nodeid.HasEncoding},
	{"HasDescription", nodeid.HasDescription},
	{"HasTypeDefinition", nodeid.HasTypeDefinition},
	{"HasSubtype", nodeid.HasSubtype},
	{"HasProperty", nodeid.HasProperty},
	{"HasComponent", nodeid.HasComponent},
	{"HasOrderedComponent", nodeid.HasOrderedComp},
}

// attrOrder fixes the emission order of node attributes after NodeId
// and BrowseName.
var attrOrder = []string{
	"DataType",
	"ValueRank",
	"AccessLevel",
	"UserAccessLevel",
	"IsAbstract",
	"Symmetric",
	"ParentNodeId",
	"ArrayDimensions",
	"MinimumSamplingInterval",
	"MethodDeclarationId",
	"EventNotifier",
	"Executable",
	"UserExecutable",
	"Historizing",
	"ReleaseStatus",
}

// Generate writes the NodeSet2 document for one namespace URI of the
// graph to w.
func Generate(g *graph.UAGraph, uri string, w io.Writer) error {
	doc, err := Bytes(g, uri)
	if err != nil {
		return err
	}
	_, err = w.Write(doc)
	return err
}

// Bytes renders the NodeSet2 document for one namespace URI.
func Bytes(g *graph.UAGraph, uri string) ([]byte, error) {
	nsIdx, ok := g.Namespaces.Index(uri)
	if !ok {
		return nil, fmt.Errorf("generate: namespace %q not in graph", uri)
	}
	if nsIdx == 0 {
		return nil, fmt.Errorf("generate: refusing to serialize the standard namespace")
	}

	e := &emitter{
		g:       g,
		nsIdx:   nsIdx,
		uri:     uri,
		aliases: make(map[nodeid.NodeID]string, len(standardAliases)),
		outNS:   map[uint16]uint16{0: 0, nsIdx: 1},
		uris:    []string{uri},
	}
	for _, a := range standardAliases {
		e.aliases[a.ID] = a.Alias
	}

	ids := e.namespaceNodes()
	e.collectForeignNamespaces(ids)

	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	b.WriteString(`<UANodeSet xmlns="` + nodeSetXMLNS + `">` + "\n")
	e.writeNamespaceUris(&b)
	e.writeModels(&b)
	e.writeAliases(&b)
	for _, id := range ids {
		e.writeNode(&b, id)
	}
	b.WriteString("</UANodeSet>\n")
	return b.Bytes(), nil
}

type emitter struct {
	g       *graph.UAGraph
	nsIdx   uint16
	uri     string
	aliases map[nodeid.NodeID]string
	outNS   map[uint16]uint16
	uris    []string
}

// namespaceNodes returns the ids belonging to the serialized namespace.
func (e *emitter) namespaceNodes() []nodeid.NodeID {
	var ids []nodeid.NodeID
	for _, id := range e.g.NodeIDs() {
		if id.Namespace == e.nsIdx {
			ids = append(ids, id)
		}
	}
	return ids
}

// collectForeignNamespaces assigns output indices to every non-standard
// namespace the emitted nodes touch.
func (e *emitter) collectForeignNamespaces(ids []nodeid.NodeID) {
	touch := func(id nodeid.NodeID) {
		ns := id.Namespace
		if ns == 0 {
			return
		}
		if _, ok := e.outNS[ns]; ok {
			return
		}
		uri, _ := e.g.Namespaces.URI(ns)
		e.outNS[ns] = uint16(len(e.uris) + 1)
		e.uris = append(e.uris, uri)
	}
	touchNS := func(ns uint16) {
		touch(nodeid.New(ns, nodeid.Numeric, "0"))
	}
	var touchValue func(v values.Value)
	touchValue = func(v values.Value) {
		switch t := v.(type) {
		case values.NodeIDValue:
			if t.Valid {
				touch(t.Value)
			}
		case values.ExtensionObject:
			if t.HasTypeID {
				touch(t.TypeID)
			}
			if t.Body != nil {
				touchValue(t.Body)
			}
		case values.List:
			for _, el := range t.Elems {
				touchValue(el)
			}
		}
	}
	for _, id := range ids {
		n, ok := e.g.Node(id)
		if !ok {
			continue
		}
		touchNS(n.BrowseNameNS)
		if n.HasParent {
			touch(n.ParentID)
		}
		if n.HasDataType {
			touch(n.DataType)
		}
		if n.HasMethodDecl {
			touch(n.MethodDeclID)
		}
		for _, edge := range e.g.References(id) {
			touch(edge.Type)
			touch(edge.Target)
		}
		for _, edge := range e.g.ReferencedBy(id) {
			touch(edge.Type)
			touch(edge.Source)
		}
		if n.Value != nil {
			touchValue(n.Value)
		}
	}
}

func (e *emitter) mapID(id nodeid.NodeID) nodeid.NodeID {
	if out, ok := e.outNS[id.Namespace]; ok {
		return id.WithNamespace(out)
	}
	return id
}

// mapValue rewrites node ids embedded in a value payload to output
// namespace indices. Raw Structure bodies are carried verbatim.
func (e *emitter) mapValue(v values.Value) values.Value {
	switch t := v.(type) {
	case values.NodeIDValue:
		if t.Valid {
			t.Value = e.mapID(t.Value)
		}
		return t
	case values.ExtensionObject:
		if t.HasTypeID {
			t.TypeID = e.mapID(t.TypeID)
		}
		if t.Body != nil {
			t.Body = e.mapValue(t.Body)
		}
		return t
	case values.List:
		elems := make([]values.Value, len(t.Elems))
		for i, el := range t.Elems {
			elems[i] = e.mapValue(el)
		}
		t.Elems = elems
		return t
	}
	return v
}

// idString renders a node id in output namespace indices, through the
// alias table where one applies.
func (e *emitter) idString(id nodeid.NodeID) string {
	if alias, ok := e.aliases[id]; ok {
		return alias
	}
	return e.mapID(id).String()
}

func (e *emitter) writeNamespaceUris(b *bytes.Buffer) {
	b.WriteString("  <NamespaceUris>\n")
	for _, uri := range e.uris {
		b.WriteString("    <Uri>")
		escape(b, uri)
		b.WriteString("</Uri>\n")
	}
	b.WriteString("  </NamespaceUris>\n")
}

func (e *emitter) writeModels(b *bytes.Buffer) {
	var model *parser.Model
	for i := range e.g.Models {
		if e.g.Models[i].URI == e.uri {
			model = &e.g.Models[i]
			break
		}
	}
	if model == nil {
		return
	}
	b.WriteString("  <Models>\n    <Model")
	writeAttr(b, "ModelUri", model.URI)
	if model.Version != "" {
		writeAttr(b, "Version", model.Version)
	}
	if model.PublicationDate != "" {
		writeAttr(b, "PublicationDate", model.PublicationDate)
	}
	if len(model.Required) == 0 {
		b.WriteString("/>\n  </Models>\n")
		return
	}
	b.WriteString(">\n")
	for _, req := range model.Required {
		b.WriteString("      <RequiredModel")
		writeAttr(b, "ModelUri", req.URI)
		if req.Version != "" {
			writeAttr(b, "Version", req.Version)
		}
		if req.PublicationDate != "" {
			writeAttr(b, "PublicationDate", req.PublicationDate)
		}
		b.WriteString("/>\n")
	}
	b.WriteString("    </Model>\n  </Models>\n")
}

func (e *emitter) writeAliases(b *bytes.Buffer) {
	b.WriteString("  <Aliases>\n")
	for _, a := range standardAliases {
		b.WriteString(`    <Alias Alias="` + a.Alias + `">` + a.ID.String() + "</Alias>\n")
	}
	b.WriteString("  </Aliases>\n")
}

func (e *emitter) writeNode(b *bytes.Buffer, id nodeid.NodeID) {
	n, ok := e.g.Node(id)
	if !ok {
		return
	}
	tag := n.Class.String()
	b.WriteString("  <" + tag)
	writeAttr(b, "NodeId", e.mapID(id).String())
	writeAttr(b, "BrowseName", e.browseName(n))
	if n.SymbolicName != "" {
		writeAttr(b, "SymbolicName", n.SymbolicName)
	}
	for _, name := range attrOrder {
		if v, ok := e.attrValue(n, name); ok {
			writeAttr(b, name, v)
		}
	}
	e.writeExtraAttrs(b, n)
	b.WriteString(">\n")

	if n.DisplayName != "" {
		b.WriteString("    <DisplayName>")
		escape(b, n.DisplayName)
		b.WriteString("</DisplayName>\n")
	}
	if n.Description != "" {
		b.WriteString("    <Description>")
		escape(b, n.Description)
		b.WriteString("</Description>\n")
	}
	if n.InverseName != "" {
		b.WriteString("    <InverseName>")
		escape(b, n.InverseName)
		b.WriteString("</InverseName>\n")
	}
	e.writeReferences(b, id)
	if n.Value != nil {
		b.WriteString("    <Value>\n      ")
		var vb bytes.Buffer
		e.mapValue(n.Value).AppendXML(&vb, true)
		b.Write(vb.Bytes())
		b.WriteString("\n    </Value>\n")
	}
	b.WriteString("  </" + tag + ">\n")
}

// attrValue resolves one ordered attribute, preferring the typed fields
// over the passthrough map.
func (e *emitter) attrValue(n *parser.Node, name string) (string, bool) {
	switch name {
	case "DataType":
		if n.HasDataType {
			return e.idString(n.DataType), true
		}
		return "", false
	case "ParentNodeId":
		if n.HasParent {
			return e.mapID(n.ParentID).String(), true
		}
		return "", false
	case "MethodDeclarationId":
		if n.HasMethodDecl {
			return e.mapID(n.MethodDeclID).String(), true
		}
		return "", false
	}
	return n.Attr(name)
}

// writeExtraAttrs emits passthrough attributes outside the fixed order,
// sorted by name for stable output.
func (e *emitter) writeExtraAttrs(b *bytes.Buffer, n *parser.Node) {
	ordered := make(map[string]struct{}, len(attrOrder))
	for _, name := range attrOrder {
		ordered[name] = struct{}{}
	}
	var extra []string
	for name := range n.Attrs {
		if _, ok := ordered[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		writeAttr(b, name, n.Attrs[name])
	}
}

func (e *emitter) browseName(n *parser.Node) string {
	ns := n.BrowseNameNS
	if out, ok := e.outNS[ns]; ok {
		ns = out
	}
	if ns == 0 {
		return n.BrowseName
	}
	return strconv.FormatUint(uint64(ns), 10) + ":" + n.BrowseName
}

func (e *emitter) writeReferences(b *bytes.Buffer, id nodeid.NodeID) {
	type outRef struct {
		typeStr   string
		targetStr string
		isForward bool
	}
	var refs []outRef
	for _, edge := range e.g.References(id) {
		if edge.Target.Namespace == e.nsIdx && e.g.Has(edge.Target) {
			// Emitted as an inverse reference on the target node. A
			// dangling same-namespace target never gets a node element,
			// so its edge must stay forward on the source.
			continue
		}
		refs = append(refs, outRef{e.idString(edge.Type), e.mapID(edge.Target).String(), true})
	}
	for _, edge := range e.g.ReferencedBy(id) {
		refs = append(refs, outRef{e.idString(edge.Type), e.mapID(edge.Source).String(), false})
	}
	if len(refs) == 0 {
		return
	}
	sort.Slice(refs, func(i, j int) bool {
		a, b := refs[i], refs[j]
		if a.isForward != b.isForward {
			return a.isForward
		}
		if a.typeStr != b.typeStr {
			return a.typeStr < b.typeStr
		}
		return a.targetStr < b.targetStr
	})
	b.WriteString("    <References>\n")
	for _, r := range refs {
		b.WriteString(`      <Reference ReferenceType="`)
		escape(b, r.typeStr)
		b.WriteString(`"`)
		if !r.isForward {
			b.WriteString(` IsForward="false"`)
		}
		b.WriteString(">")
		escape(b, r.targetStr)
		b.WriteString("</Reference>\n")
	}
	b.WriteString("    </References>\n")
}

func writeAttr(b *bytes.Buffer, name, value string) {
	b.WriteString(" " + name + `="`)
	escape(b, value)
	b.WriteString(`"`)
}

// escape serves both attribute and character data positions;
// xml.EscapeText escapes quotes as well.
func escape(b *bytes.Buffer, s string) {
	_ = xml.EscapeText(b, []byte(s))
}
