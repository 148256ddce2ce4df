// # internal/values/values.go
//
// Typed in-memory representation of NodeSet2 <Value> payloads. Each
// variant knows how to encode itself back to the UA Types XML dialect;
// decoding from XML happens in internal/parser, which owns the element
// stream.
package values

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"strconv"
	"time"

	"uanodeset/internal/nodeid"
)

// XMLNSAttrib is the xmlns declaration carried by the outermost element
// inside a <Value> block.
const XMLNSAttrib = `xmlns="http://opcfoundation.org/UA/2008/02/Types.xsd"`

// Value is one UA built-in value payload, scalar or list.
type Value interface {
	// TypeName is the NodeSet2 element tag for the variant, e.g. "Int32".
	TypeName() string
	// AppendXML writes the encoded element. withXMLNS is set only for the
	// outermost element of a <Value> block.
	AppendXML(b *bytes.Buffer, withXMLNS bool)
}

func open(b *bytes.Buffer, tag string, withXMLNS bool) {
	b.WriteByte('<')
	b.WriteString(tag)
	if withXMLNS {
		b.WriteByte(' ')
		b.WriteString(XMLNSAttrib)
	}
	b.WriteByte('>')
}

func closeTag(b *bytes.Buffer, tag string) {
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteByte('>')
}

func escapeInto(b *bytes.Buffer, s string) {
	_ = xml.EscapeText(b, []byte(s))
}

// Encode renders a complete value element, xmlns included, as a string.
func Encode(v Value) string {
	var b bytes.Buffer
	v.AppendXML(&b, true)
	return b.String()
}

// Boolean, the integers and the floating point variants use a Valid flag
// to distinguish an empty element (null payload) from a zero value, the
// same way database/sql null types do.

type Boolean struct {
	Value bool
	Valid bool
}

func (v Boolean) TypeName() string { return "Boolean" }
func (v Boolean) AppendXML(b *bytes.Buffer, withXMLNS bool) {
	open(b, "Boolean", withXMLNS)
	if v.Valid {
		if v.Value {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	}
	closeTag(b, "Boolean")
}

type SByte struct {
	Value int8
	Valid bool
}

func (v SByte) TypeName() string { return "SByte" }
func (v SByte) AppendXML(b *bytes.Buffer, withXMLNS bool) {
	appendInt(b, "SByte", int64(v.Value), v.Valid, withXMLNS)
}

type Byte struct {
	Value uint8
	Valid bool
}

func (v Byte) TypeName() string { return "Byte" }
func (v Byte) AppendXML(b *bytes.Buffer, withXMLNS bool) {
	appendUint(b, "Byte", uint64(v.Value), v.Valid, withXMLNS)
}

type Int16 struct {
	Value int16
	Valid bool
}

func (v Int16) TypeName() string { return "Int16" }
func (v Int16) AppendXML(b *bytes.Buffer, withXMLNS bool) {
	appendInt(b, "Int16", int64(v.Value), v.Valid, withXMLNS)
}

type UInt16 struct {
	Value uint16
	Valid bool
}

func (v UInt16) TypeName() string { return "UInt16" }
func (v UInt16) AppendXML(b *bytes.Buffer, withXMLNS bool) {
	appendUint(b, "UInt16", uint64(v.Value), v.Valid, withXMLNS)
}

type Int32 struct {
	Value int32
	Valid bool
}

func (v Int32) TypeName() string { return "Int32" }
func (v Int32) AppendXML(b *bytes.Buffer, withXMLNS bool) {
	appendInt(b, "Int32", int64(v.Value), v.Valid, withXMLNS)
}

type UInt32 struct {
	Value uint32
	Valid bool
}

func (v UInt32) TypeName() string { return "UInt32" }
func (v UInt32) AppendXML(b *bytes.Buffer, withXMLNS bool) {
	appendUint(b, "UInt32", uint64(v.Value), v.Valid, withXMLNS)
}

type Int64 struct {
	Value int64
	Valid bool
}

func (v Int64) TypeName() string { return "Int64" }
func (v Int64) AppendXML(b *bytes.Buffer, withXMLNS bool) {
	appendInt(b, "Int64", v.Value, v.Valid, withXMLNS)
}

type UInt64 struct {
	Value uint64
	Valid bool
}

func (v UInt64) TypeName() string { return "UInt64" }
func (v UInt64) AppendXML(b *bytes.Buffer, withXMLNS bool) {
	appendUint(b, "UInt64", v.Value, v.Valid, withXMLNS)
}

type Float struct {
	Value float32
	Valid bool
}

func (v Float) TypeName() string { return "Float" }
func (v Float) AppendXML(b *bytes.Buffer, withXMLNS bool) {
	open(b, "Float", withXMLNS)
	if v.Valid {
		b.WriteString(strconv.FormatFloat(float64(v.Value), 'g', -1, 32))
	}
	closeTag(b, "Float")
}

type Double struct {
	Value float64
	Valid bool
}

func (v Double) TypeName() string { return "Double" }
func (v Double) AppendXML(b *bytes.Buffer, withXMLNS bool) {
	open(b, "Double", withXMLNS)
	if v.Valid {
		b.WriteString(strconv.FormatFloat(v.Value, 'g', -1, 64))
	}
	closeTag(b, "Double")
}

type String struct {
	Value string
	Valid bool
}

func (v String) TypeName() string { return "String" }
func (v String) AppendXML(b *bytes.Buffer, withXMLNS bool) {
	open(b, "String", withXMLNS)
	if v.Valid {
		escapeInto(b, v.Value)
	}
	closeTag(b, "String")
}

type DateTime struct {
	Value time.Time
	Valid bool
}

func (v DateTime) TypeName() string { return "DateTime" }
func (v DateTime) AppendXML(b *bytes.Buffer, withXMLNS bool) {
	open(b, "DateTime", withXMLNS)
	if v.Valid {
		b.WriteString(v.Value.Format(time.RFC3339))
	}
	closeTag(b, "DateTime")
}

type Guid struct {
	Value string
	Valid bool
}

func (v Guid) TypeName() string { return "Guid" }
func (v Guid) AppendXML(b *bytes.Buffer, withXMLNS bool) {
	open(b, "Guid", withXMLNS)
	if v.Valid {
		escapeInto(b, v.Value)
	}
	closeTag(b, "Guid")
}

// ByteString carries raw bytes; nil means a null payload.
type ByteString struct {
	Value []byte
}

func (v ByteString) TypeName() string { return "ByteString" }
func (v ByteString) AppendXML(b *bytes.Buffer, withXMLNS bool) {
	open(b, "ByteString", withXMLNS)
	if v.Value != nil {
		b.WriteString(base64.StdEncoding.EncodeToString(v.Value))
	}
	closeTag(b, "ByteString")
}

// NodeIDValue wraps a node-id appearing as a value payload.
type NodeIDValue struct {
	Value nodeid.NodeID
	Valid bool
}

func (v NodeIDValue) TypeName() string { return "NodeId" }
func (v NodeIDValue) AppendXML(b *bytes.Buffer, withXMLNS bool) {
	open(b, "NodeId", withXMLNS)
	if v.Valid {
		open(b, "Identifier", false)
		b.WriteString(v.Value.String())
		closeTag(b, "Identifier")
	}
	closeTag(b, "NodeId")
}

type LocalizedText struct {
	Locale string
	Text   string
}

func (v LocalizedText) TypeName() string { return "LocalizedText" }
func (v LocalizedText) AppendXML(b *bytes.Buffer, withXMLNS bool) {
	open(b, "LocalizedText", withXMLNS)
	open(b, "Locale", false)
	escapeInto(b, v.Locale)
	closeTag(b, "Locale")
	open(b, "Text", false)
	escapeInto(b, v.Text)
	closeTag(b, "Text")
	closeTag(b, "LocalizedText")
}

// Structure is an XML fragment we carry through verbatim: a structured
// extension-object body the engine does not interpret.
type Structure struct {
	XML string
}

func (v Structure) TypeName() string { return "Structure" }
func (v Structure) AppendXML(b *bytes.Buffer, _ bool) {
	b.WriteString(v.XML)
}

// ExtensionObject is a TypeId plus an opaque body (Structure or
// ByteString). Well-known type ids are decoded into EngineeringUnits or
// EURange by the parser instead.
type ExtensionObject struct {
	TypeID    nodeid.NodeID
	HasTypeID bool
	Body      Value
}

func (v ExtensionObject) TypeName() string { return "ExtensionObject" }
func (v ExtensionObject) AppendXML(b *bytes.Buffer, withXMLNS bool) {
	open(b, "ExtensionObject", withXMLNS)
	open(b, "TypeId", false)
	if v.HasTypeID {
		open(b, "Identifier", false)
		b.WriteString(v.TypeID.String())
		closeTag(b, "Identifier")
	}
	closeTag(b, "TypeId")
	open(b, "Body", false)
	if v.Body != nil {
		v.Body.AppendXML(b, false)
	}
	closeTag(b, "Body")
	closeTag(b, "ExtensionObject")
}

// EngineeringUnits is the decoded form of an extension object with the
// well-known EUInformation type id (i=888).
type EngineeringUnits struct {
	DisplayName  LocalizedText
	Description  LocalizedText
	UnitID       int64
	NamespaceURI string
}

func (v EngineeringUnits) TypeName() string { return "ExtensionObject" }
func (v EngineeringUnits) AppendXML(b *bytes.Buffer, withXMLNS bool) {
	var body bytes.Buffer
	open(&body, "EUInformation", false)
	open(&body, "NamespaceUri", false)
	escapeInto(&body, v.NamespaceURI)
	closeTag(&body, "NamespaceUri")
	open(&body, "UnitId", false)
	body.WriteString(strconv.FormatInt(v.UnitID, 10))
	closeTag(&body, "UnitId")
	appendNamedText(&body, "DisplayName", v.DisplayName)
	appendNamedText(&body, "Description", v.Description)
	closeTag(&body, "EUInformation")

	ExtensionObject{
		TypeID:    nodeid.EUInformationType,
		HasTypeID: true,
		Body:      Structure{XML: body.String()},
	}.AppendXML(b, withXMLNS)
}

func appendNamedText(b *bytes.Buffer, tag string, lt LocalizedText) {
	open(b, tag, false)
	open(b, "Locale", false)
	if lt.Locale == "" {
		b.WriteString("en")
	} else {
		escapeInto(b, lt.Locale)
	}
	closeTag(b, "Locale")
	open(b, "Text", false)
	escapeInto(b, lt.Text)
	closeTag(b, "Text")
	closeTag(b, tag)
}

// EURange is the decoded form of an extension object with the well-known
// Range type id (i=885).
type EURange struct {
	Low  float64
	High float64
}

func (v EURange) TypeName() string { return "ExtensionObject" }
func (v EURange) AppendXML(b *bytes.Buffer, withXMLNS bool) {
	var body bytes.Buffer
	open(&body, "Range", false)
	open(&body, "Low", false)
	body.WriteString(strconv.FormatFloat(v.Low, 'g', -1, 64))
	closeTag(&body, "Low")
	open(&body, "High", false)
	body.WriteString(strconv.FormatFloat(v.High, 'g', -1, 64))
	closeTag(&body, "High")
	closeTag(&body, "Range")

	ExtensionObject{
		TypeID:    nodeid.RangeType,
		HasTypeID: true,
		Body:      Structure{XML: body.String()},
	}.AppendXML(b, withXMLNS)
}

// Enum is an Int32 upgraded with its resolved enumeration name and label.
// It encodes exactly as the underlying Int32 does.
type Enum struct {
	Value int32
	Name  string
	Label string
}

func (v Enum) TypeName() string { return "Int32" }
func (v Enum) AppendXML(b *bytes.Buffer, withXMLNS bool) {
	Int32{Value: v.Value, Valid: true}.AppendXML(b, withXMLNS)
}

// List is the array form: ListOf<ElemType> wrapping element payloads.
type List struct {
	ElemType string
	Elems    []Value
}

func (v List) TypeName() string { return "ListOf" + v.ElemType }
func (v List) AppendXML(b *bytes.Buffer, withXMLNS bool) {
	tag := v.TypeName()
	open(b, tag, withXMLNS)
	for _, e := range v.Elems {
		e.AppendXML(b, false)
	}
	closeTag(b, tag)
}

func appendInt(b *bytes.Buffer, tag string, v int64, valid, withXMLNS bool) {
	open(b, tag, withXMLNS)
	if valid {
		b.WriteString(strconv.FormatInt(v, 10))
	}
	closeTag(b, tag)
}

func appendUint(b *bytes.Buffer, tag string, v uint64, valid, withXMLNS bool) {
	open(b, tag, withXMLNS)
	if valid {
		b.WriteString(strconv.FormatUint(v, 10))
	}
	closeTag(b, tag)
}
