// # internal/parser/parser.go
//
// Streaming NodeSet2 reader built on encoding/xml tokens. A file is
// consumed element by element; node-id attributes are kept raw until
// the whole document is read, then resolved against the file's alias
// table.
package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"uanodeset/internal/nodeid"
)

// ParseError reports a malformed NodeSet2 document, naming the file and
// the element the failure was found in.
type ParseError struct {
	File    string
	Element string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: element %s: %v", e.File, e.Element, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseFile reads and parses a NodeSet2 file from disk.
func ParseFile(path string) (*NodeSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open nodeset: %w", err)
	}
	defer f.Close()
	return Parse(f, path)
}

type rawRef struct {
	typeRaw   string
	targetRaw string
	isForward bool
}

type pendingNode struct {
	node          Node
	rawID         string
	rawParent     string
	rawDataType   string
	rawMethodDecl string
	refs          []rawRef
}

type fileParser struct {
	dec     *xml.Decoder
	file    string
	set     *NodeSet
	pending []pendingNode
}

// Parse consumes a NodeSet2 document from r. The name is used in error
// reports and recorded as the NodeSet's file.
func Parse(r io.Reader, name string) (*NodeSet, error) {
	p := &fileParser{
		dec:  xml.NewDecoder(r),
		file: name,
		set: &NodeSet{
			File:    name,
			Aliases: make(map[string]nodeid.NodeID),
		},
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	if err := p.resolveAll(); err != nil {
		return nil, err
	}
	return p.set, nil
}

func (p *fileParser) fail(element string, err error) error {
	return &ParseError{File: p.file, Element: element, Err: err}
}

func (p *fileParser) run() error {
	sawRoot := false
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return p.fail("document", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "UANodeSet":
			sawRoot = true
		case "NamespaceUris":
			if err := p.parseNamespaceURIs(start); err != nil {
				return err
			}
		case "Models":
			if err := p.parseModels(start); err != nil {
				return err
			}
		case "Aliases":
			if err := p.parseAliases(start); err != nil {
				return err
			}
		default:
			if class, isNode := ClassFromTag(start.Name.Local); isNode {
				if err := p.parseNode(start, class); err != nil {
					return err
				}
			} else if err := p.dec.Skip(); err != nil {
				return p.fail(start.Name.Local, err)
			}
		}
	}
	if !sawRoot {
		return p.fail("document", fmt.Errorf("missing UANodeSet root element"))
	}
	return nil
}

func (p *fileParser) parseNamespaceURIs(start xml.StartElement) error {
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return p.fail("NamespaceUris", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "Uri" {
				if err := p.dec.Skip(); err != nil {
					return p.fail(t.Name.Local, err)
				}
				continue
			}
			uri, err := p.elementText(t)
			if err != nil {
				return err
			}
			p.set.NamespaceURIs = append(p.set.NamespaceURIs, strings.TrimSpace(uri))
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

func (p *fileParser) parseModels(start xml.StartElement) error {
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return p.fail("Models", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "Model" {
				if err := p.dec.Skip(); err != nil {
					return p.fail(t.Name.Local, err)
				}
				continue
			}
			if err := p.parseModel(t); err != nil {
				return err
			}
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

func (p *fileParser) parseModel(start xml.StartElement) error {
	m := Model{}
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "ModelUri":
			m.URI = a.Value
		case "Version":
			m.Version = a.Value
		case "PublicationDate":
			m.PublicationDate = a.Value
		}
	}
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return p.fail("Model", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "RequiredModel" {
				req := RequiredModel{}
				for _, a := range t.Attr {
					switch a.Name.Local {
					case "ModelUri":
						req.URI = a.Value
					case "Version":
						req.Version = a.Value
					case "PublicationDate":
						req.PublicationDate = a.Value
					}
				}
				m.Required = append(m.Required, req)
			}
			if err := p.dec.Skip(); err != nil {
				return p.fail(t.Name.Local, err)
			}
		case xml.EndElement:
			if t.Name == start.Name {
				p.set.Model = m
				return nil
			}
		}
	}
}

func (p *fileParser) parseAliases(start xml.StartElement) error {
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return p.fail("Aliases", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "Alias" {
				if err := p.dec.Skip(); err != nil {
					return p.fail(t.Name.Local, err)
				}
				continue
			}
			var alias string
			for _, a := range t.Attr {
				if a.Name.Local == "Alias" {
					alias = a.Value
				}
			}
			text, err := p.elementText(t)
			if err != nil {
				return err
			}
			id, err := nodeid.Parse(strings.TrimSpace(text))
			if err != nil {
				return p.fail("Alias", fmt.Errorf("alias %q: %w", alias, err))
			}
			if alias != "" {
				p.set.Aliases[alias] = id
			}
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

func (p *fileParser) parseNode(start xml.StartElement, class NodeClass) error {
	pn := pendingNode{node: Node{Class: class}}
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "NodeId":
			pn.rawID = a.Value
		case "BrowseName":
			pn.node.BrowseNameNS, pn.node.BrowseName = splitBrowseName(a.Value)
		case "SymbolicName":
			pn.node.SymbolicName = a.Value
		case "ParentNodeId":
			pn.rawParent = a.Value
		case "DataType":
			pn.rawDataType = a.Value
		case "MethodDeclarationId":
			pn.rawMethodDecl = a.Value
		default:
			pn.node.SetAttr(a.Name.Local, a.Value)
		}
	}
	if pn.rawID == "" {
		return p.fail(start.Name.Local, fmt.Errorf("missing NodeId attribute"))
	}

	for {
		tok, err := p.dec.Token()
		if err != nil {
			return p.fail(start.Name.Local, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "DisplayName":
				text, err := p.elementText(t)
				if err != nil {
					return err
				}
				pn.node.DisplayName = text
			case "Description":
				text, err := p.elementText(t)
				if err != nil {
					return err
				}
				pn.node.Description = text
			case "InverseName":
				text, err := p.elementText(t)
				if err != nil {
					return err
				}
				pn.node.InverseName = text
			case "References":
				if err := p.parseReferences(t, &pn); err != nil {
					return err
				}
			case "Value":
				v, err := p.parseValue(t)
				if err != nil {
					return err
				}
				pn.node.Value = v
			default:
				if err := p.dec.Skip(); err != nil {
					return p.fail(t.Name.Local, err)
				}
			}
		case xml.EndElement:
			if t.Name == start.Name {
				p.pending = append(p.pending, pn)
				return nil
			}
		}
	}
}

func (p *fileParser) parseReferences(start xml.StartElement, pn *pendingNode) error {
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return p.fail("References", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "Reference" {
				if err := p.dec.Skip(); err != nil {
					return p.fail(t.Name.Local, err)
				}
				continue
			}
			ref := rawRef{isForward: true}
			for _, a := range t.Attr {
				switch a.Name.Local {
				case "ReferenceType":
					ref.typeRaw = a.Value
				case "IsForward":
					ref.isForward = a.Value != "false" && a.Value != "0"
				}
			}
			text, err := p.elementText(t)
			if err != nil {
				return err
			}
			ref.targetRaw = strings.TrimSpace(text)
			pn.refs = append(pn.refs, ref)
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

// elementText reads the character data of an element that has no
// element children, consuming it through its end tag.
func (p *fileParser) elementText(start xml.StartElement) (string, error) {
	var sb strings.Builder
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return "", p.fail(start.Name.Local, err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			if err := p.dec.Skip(); err != nil {
				return "", p.fail(t.Name.Local, err)
			}
		case xml.EndElement:
			if t.Name == start.Name {
				return sb.String(), nil
			}
		}
	}
}

// resolveAll rewrites the raw node-id strings collected during the
// token pass. Aliases may legally appear anywhere in the file, so
// resolution waits until the document has been fully read.
func (p *fileParser) resolveAll() error {
	for i := range p.pending {
		pn := &p.pending[i]
		node := pn.node

		id, err := p.resolveID(pn.rawID)
		if err != nil {
			return p.fail(node.Class.String(), err)
		}
		node.ID = id

		if pn.rawParent != "" {
			pid, err := p.resolveID(pn.rawParent)
			if err != nil {
				return p.fail(node.Class.String(), fmt.Errorf("ParentNodeId: %w", err))
			}
			node.ParentID = pid
			node.HasParent = true
		}
		if pn.rawDataType != "" {
			dt, err := p.resolveID(pn.rawDataType)
			if err != nil {
				return p.fail(node.Class.String(), fmt.Errorf("DataType: %w", err))
			}
			node.DataType = dt
			node.HasDataType = true
		}
		if pn.rawMethodDecl != "" {
			md, err := p.resolveID(pn.rawMethodDecl)
			if err != nil {
				return p.fail(node.Class.String(), fmt.Errorf("MethodDeclarationId: %w", err))
			}
			node.MethodDeclID = md
			node.HasMethodDecl = true
		}

		for _, rr := range pn.refs {
			rt, err := p.resolveID(rr.typeRaw)
			if err != nil {
				return p.fail("Reference", fmt.Errorf("ReferenceType: %w", err))
			}
			target, err := p.resolveID(rr.targetRaw)
			if err != nil {
				return p.fail("Reference", err)
			}
			node.References = append(node.References, Reference{
				Type:      rt,
				Target:    target,
				IsForward: rr.isForward,
			})
		}
		p.set.Nodes = append(p.set.Nodes, node)
	}
	return nil
}

func (p *fileParser) resolveID(s string) (nodeid.NodeID, error) {
	if id, ok := p.set.Aliases[s]; ok {
		return id, nil
	}
	return nodeid.Parse(s)
}

// splitBrowseName separates the "ns:name" form. A prefix that is not a
// valid namespace index is part of the name.
func splitBrowseName(bn string) (uint16, string) {
	i := strings.IndexByte(bn, ':')
	if i <= 0 {
		return 0, bn
	}
	ns, err := strconv.ParseUint(bn[:i], 10, 16)
	if err != nil {
		return 0, bn
	}
	return uint16(ns), bn[i+1:]
}
