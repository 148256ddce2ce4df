// # internal/parser/header.go
//
// Header-only scanning. A NodeSet2 file declares its namespaces and
// model requirements before the first node element, so the merge order
// of a file set can be decided without parsing any nodes.
package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"uanodeset/internal/nodeid"
)

// Header is the model identity of a NodeSet file: its namespace
// declarations and Model block, read without the node elements.
type Header struct {
	File          string
	NamespaceURIs []string
	Model         Model
}

// ReadHeader scans the header of a NodeSet2 file on disk.
func ReadHeader(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open nodeset: %w", err)
	}
	defer f.Close()
	return ScanHeader(f, path)
}

// ScanHeader reads from r until the first node element and returns the
// header data seen up to that point.
func ScanHeader(r io.Reader, name string) (*Header, error) {
	p := &fileParser{
		dec:  xml.NewDecoder(r),
		file: name,
		set: &NodeSet{
			File:    name,
			Aliases: make(map[string]nodeid.NodeID),
		},
	}
	sawRoot := false
scan:
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, p.fail("document", err)
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
				return nil, err
			}
		case "Models":
			if err := p.parseModels(start); err != nil {
				return nil, err
			}
		default:
			if _, isNode := ClassFromTag(start.Name.Local); isNode {
				break scan
			}
			if err := p.dec.Skip(); err != nil {
				return nil, p.fail(start.Name.Local, err)
			}
		}
	}
	if !sawRoot {
		return nil, p.fail("document", fmt.Errorf("missing UANodeSet root element"))
	}
	return &Header{File: name, NamespaceURIs: p.set.NamespaceURIs, Model: p.set.Model}, nil
}

// SortByDependencies orders NodeSet files so every file comes after the
// files whose models it requires. Files with no requirements among the
// inputs keep their given order.
func SortByDependencies(paths []string) ([]string, error) {
	headers := make([]*Header, len(paths))
	byURI := make(map[string]int, len(paths))
	for i, path := range paths {
		h, err := ReadHeader(path)
		if err != nil {
			return nil, err
		}
		headers[i] = h
		if h.Model.URI != "" {
			byURI[h.Model.URI] = i
		}
	}

	placed := make([]bool, len(paths))
	out := make([]string, 0, len(paths))
	for len(out) < len(paths) {
		progress := false
		for i := range paths {
			if placed[i] {
				continue
			}
			ready := true
			for _, req := range headers[i].Model.Required {
				if j, ok := byURI[req.URI]; ok && j != i && !placed[j] {
					ready = false
					break
				}
			}
			if !ready {
				continue
			}
			placed[i] = true
			out = append(out, paths[i])
			progress = true
		}
		if !progress {
			return nil, fmt.Errorf("nodeset files have cyclic model requirements")
		}
	}
	return out, nil
}
