// # internal/parser/value_decode.go
//
// Decoding of <Value> payloads into internal/values variants. The
// payload subtree is read into a generic element tree first; known UA
// built-in types are converted, everything structured that we do not
// interpret is re-rendered and carried as a raw fragment.
package parser

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"uanodeset/internal/nodeid"
	"uanodeset/internal/values"
)

type xmlElement struct {
	XMLName  xml.Name
	Attrs    []xml.Attr   `xml:",any,attr"`
	Children []xmlElement `xml:",any"`
	Text     string       `xml:",chardata"`
}

func (e *xmlElement) child(name string) *xmlElement {
	for i := range e.Children {
		if e.Children[i].XMLName.Local == name {
			return &e.Children[i]
		}
	}
	return nil
}

func (e *xmlElement) childText(name string) string {
	if c := e.child(name); c != nil {
		return strings.TrimSpace(c.Text)
	}
	return ""
}

// parseValue consumes a <Value> element and returns its decoded
// payload, or nil for an empty value.
func (p *fileParser) parseValue(start xml.StartElement) (values.Value, error) {
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, p.fail("Value", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var el xmlElement
			if err := p.dec.DecodeElement(&el, &t); err != nil {
				return nil, p.fail("Value", err)
			}
			v, err := decodeValueElement(&el, true)
			if err != nil {
				return nil, p.fail("Value", err)
			}
			// Consume the remainder up to </Value>.
			for {
				tok, err := p.dec.Token()
				if err != nil {
					return nil, p.fail("Value", err)
				}
				if end, ok := tok.(xml.EndElement); ok && end.Name == start.Name {
					return v, nil
				}
			}
		case xml.EndElement:
			if t.Name == start.Name {
				return nil, nil
			}
		}
	}
}

func decodeValueElement(el *xmlElement, top bool) (values.Value, error) {
	name := el.XMLName.Local
	if rest, ok := strings.CutPrefix(name, "ListOf"); ok && rest != "" {
		l := values.List{ElemType: rest}
		for i := range el.Children {
			v, err := decodeValueElement(&el.Children[i], false)
			if err != nil {
				return nil, err
			}
			l.Elems = append(l.Elems, v)
		}
		return l, nil
	}

	text := strings.TrimSpace(el.Text)
	switch name {
	case "Boolean":
		if text == "" {
			return values.Boolean{}, nil
		}
		return values.Boolean{Value: text == "true" || text == "1", Valid: true}, nil
	case "SByte":
		v, valid, err := decodeInt(name, text, 8)
		return values.SByte{Value: int8(v), Valid: valid}, err
	case "Byte":
		v, valid, err := decodeUint(name, text, 8)
		return values.Byte{Value: uint8(v), Valid: valid}, err
	case "Int16":
		v, valid, err := decodeInt(name, text, 16)
		return values.Int16{Value: int16(v), Valid: valid}, err
	case "UInt16":
		v, valid, err := decodeUint(name, text, 16)
		return values.UInt16{Value: uint16(v), Valid: valid}, err
	case "Int32":
		v, valid, err := decodeInt(name, text, 32)
		return values.Int32{Value: int32(v), Valid: valid}, err
	case "UInt32":
		v, valid, err := decodeUint(name, text, 32)
		return values.UInt32{Value: uint32(v), Valid: valid}, err
	case "Int64":
		v, valid, err := decodeInt(name, text, 64)
		return values.Int64{Value: v, Valid: valid}, err
	case "UInt64":
		v, valid, err := decodeUint(name, text, 64)
		return values.UInt64{Value: v, Valid: valid}, err
	case "Float":
		if text == "" {
			return values.Float{}, nil
		}
		v, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, fmt.Errorf("Float %q: %w", text, err)
		}
		return values.Float{Value: float32(v), Valid: true}, nil
	case "Double":
		if text == "" {
			return values.Double{}, nil
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("Double %q: %w", text, err)
		}
		return values.Double{Value: v, Valid: true}, nil
	case "String":
		return values.String{Value: el.Text, Valid: true}, nil
	case "DateTime":
		if text == "" {
			return values.DateTime{}, nil
		}
		t, err := time.Parse(time.RFC3339, text)
		if err != nil {
			return nil, fmt.Errorf("DateTime %q: %w", text, err)
		}
		return values.DateTime{Value: t, Valid: true}, nil
	case "Guid":
		if text != "" {
			return values.Guid{Value: text, Valid: true}, nil
		}
		// The GUID may be wrapped in a <String> child.
		if s := el.childText("String"); s != "" {
			return values.Guid{Value: s, Valid: true}, nil
		}
		return values.Guid{}, nil
	case "ByteString":
		if text == "" {
			return values.ByteString{}, nil
		}
		raw, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("ByteString: %w", err)
		}
		return values.ByteString{Value: raw}, nil
	case "NodeId":
		ident := el.childText("Identifier")
		if ident == "" {
			return values.NodeIDValue{}, nil
		}
		id, err := nodeid.Parse(ident)
		if err != nil {
			return nil, fmt.Errorf("NodeId value: %w", err)
		}
		return values.NodeIDValue{Value: id, Valid: true}, nil
	case "LocalizedText":
		return values.LocalizedText{
			Locale: el.childText("Locale"),
			Text:   el.childText("Text"),
		}, nil
	case "ExtensionObject":
		return decodeExtensionObject(el)
	}
	return values.Structure{XML: renderElement(el, top)}, nil
}

func decodeExtensionObject(el *xmlElement) (values.Value, error) {
	eo := values.ExtensionObject{}
	if tid := el.child("TypeId"); tid != nil {
		if ident := tid.childText("Identifier"); ident != "" {
			id, err := nodeid.Parse(ident)
			if err != nil {
				return nil, fmt.Errorf("ExtensionObject TypeId: %w", err)
			}
			eo.TypeID = id
			eo.HasTypeID = true
		}
	}
	body := el.child("Body")
	if body == nil || len(body.Children) == 0 {
		return eo, nil
	}
	payload := &body.Children[0]

	if eo.HasTypeID {
		switch eo.TypeID {
		case nodeid.EUInformationType:
			return decodeEngineeringUnits(payload)
		case nodeid.RangeType:
			return decodeEURange(payload)
		}
	}
	eo.Body = values.Structure{XML: renderElement(payload, false)}
	return eo, nil
}

func decodeEngineeringUnits(el *xmlElement) (values.Value, error) {
	unitID, err := strconv.ParseInt(nonEmpty(el.childText("UnitId"), "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("EUInformation UnitId: %w", err)
	}
	eu := values.EngineeringUnits{
		UnitID:       unitID,
		NamespaceURI: el.childText("NamespaceUri"),
	}
	if dn := el.child("DisplayName"); dn != nil {
		eu.DisplayName = values.LocalizedText{
			Locale: dn.childText("Locale"),
			Text:   dn.childText("Text"),
		}
	}
	if d := el.child("Description"); d != nil {
		eu.Description = values.LocalizedText{
			Locale: d.childText("Locale"),
			Text:   d.childText("Text"),
		}
	}
	return eu, nil
}

func decodeEURange(el *xmlElement) (values.Value, error) {
	low, err := strconv.ParseFloat(nonEmpty(el.childText("Low"), "0"), 64)
	if err != nil {
		return nil, fmt.Errorf("Range Low: %w", err)
	}
	high, err := strconv.ParseFloat(nonEmpty(el.childText("High"), "0"), 64)
	if err != nil {
		return nil, fmt.Errorf("Range High: %w", err)
	}
	return values.EURange{Low: low, High: high}, nil
}

func nonEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func decodeInt(name, text string, bits int) (int64, bool, error) {
	if text == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(text, 10, bits)
	if err != nil {
		return 0, false, fmt.Errorf("%s %q: %w", name, text, err)
	}
	return v, true, nil
}

func decodeUint(name, text string, bits int) (uint64, bool, error) {
	if text == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseUint(text, 10, bits)
	if err != nil {
		return 0, false, fmt.Errorf("%s %q: %w", name, text, err)
	}
	return v, true, nil
}

// renderElement re-serializes a generic subtree. Local names only; the
// UA Types xmlns is reattached at the top of the fragment.
func renderElement(el *xmlElement, top bool) string {
	var sb strings.Builder
	renderInto(&sb, el, top)
	return sb.String()
}

func renderInto(sb *strings.Builder, el *xmlElement, top bool) {
	sb.WriteByte('<')
	sb.WriteString(el.XMLName.Local)
	if top {
		sb.WriteByte(' ')
		sb.WriteString(values.XMLNSAttrib)
	}
	for _, a := range el.Attrs {
		if a.Name.Space != "" || a.Name.Local == "xmlns" {
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(a.Name.Local)
		sb.WriteString(`="`)
		_ = xml.EscapeText(sb, []byte(a.Value))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	if len(el.Children) == 0 {
		_ = xml.EscapeText(sb, []byte(strings.TrimSpace(el.Text)))
	}
	for i := range el.Children {
		renderInto(sb, &el.Children[i], false)
	}
	sb.WriteString("</")
	sb.WriteString(el.XMLName.Local)
	sb.WriteByte('>')
}
