// # internal/parser/parser_test.go
package parser

import (
	"errors"
	"strings"
	"testing"

	"uanodeset/internal/nodeid"
	"uanodeset/internal/values"
)

const sampleNodeSet = `<?xml version="1.0" encoding="utf-8"?>
<UANodeSet xmlns="http://opcfoundation.org/UA/2011/03/UANodeSet.xsd">
  <NamespaceUris>
    <Uri>http://example.com/plant/</Uri>
  </NamespaceUris>
  <Models>
    <Model ModelUri="http://example.com/plant/" Version="1.2.0" PublicationDate="2023-04-01T00:00:00Z">
      <RequiredModel ModelUri="http://opcfoundation.org/UA/" Version="1.05.02"/>
    </Model>
  </Models>
  <Aliases>
    <Alias Alias="HasComponent">i=47</Alias>
    <Alias Alias="HasTypeDefinition">i=40</Alias>
    <Alias Alias="Double">i=11</Alias>
  </Aliases>
  <UAObjectType NodeId="ns=1;i=1000" BrowseName="1:MachineType" IsAbstract="false">
    <DisplayName>MachineType</DisplayName>
    <Description>A machine.</Description>
    <References>
      <Reference ReferenceType="i=45" IsForward="false">i=58</Reference>
    </References>
  </UAObjectType>
  <UAVariable NodeId="ns=1;i=1001" BrowseName="1:Speed" ParentNodeId="ns=1;i=1000" DataType="Double" ValueRank="-1" AccessLevel="3">
    <DisplayName>Speed</DisplayName>
    <References>
      <Reference ReferenceType="HasComponent" IsForward="false">ns=1;i=1000</Reference>
      <Reference ReferenceType="HasTypeDefinition">i=63</Reference>
    </References>
    <Value>
      <Double xmlns="http://opcfoundation.org/UA/2008/02/Types.xsd">42.5</Double>
    </Value>
  </UAVariable>
</UANodeSet>`

func TestParseNodeSet(t *testing.T) {
	set, err := Parse(strings.NewReader(sampleNodeSet), "sample.xml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(set.NamespaceURIs) != 1 || set.NamespaceURIs[0] != "http://example.com/plant/" {
		t.Errorf("NamespaceURIs = %v", set.NamespaceURIs)
	}
	if set.Model.URI != "http://example.com/plant/" || set.Model.Version != "1.2.0" {
		t.Errorf("Model = %+v", set.Model)
	}
	if len(set.Model.Required) != 1 || set.Model.Required[0].URI != "http://opcfoundation.org/UA/" {
		t.Errorf("RequiredModel = %+v", set.Model.Required)
	}
	if len(set.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(set.Nodes))
	}

	ot := set.Nodes[0]
	if ot.Class != ClassObjectType {
		t.Errorf("node 0 class = %v", ot.Class)
	}
	if ot.BrowseName != "MachineType" || ot.BrowseNameNS != 1 {
		t.Errorf("browse name = %d:%q", ot.BrowseNameNS, ot.BrowseName)
	}
	if ot.Description != "A machine." {
		t.Errorf("description = %q", ot.Description)
	}
	if len(ot.References) != 1 || ot.References[0].IsForward {
		t.Errorf("references = %+v", ot.References)
	}

	v := set.Nodes[1]
	if v.Class != ClassVariable {
		t.Errorf("node 1 class = %v", v.Class)
	}
	if !v.HasParent || v.ParentID != nodeid.MustParse("ns=1;i=1000") {
		t.Errorf("parent = %v (has %v)", v.ParentID, v.HasParent)
	}
	if !v.HasDataType || v.DataType != nodeid.MustParse("i=11") {
		t.Errorf("alias DataType not resolved: %v", v.DataType)
	}
	if rank, ok := v.ValueRank(); !ok || rank != -1 {
		t.Errorf("ValueRank = %d, %v", rank, ok)
	}
	if al, ok := v.AccessLevel(); !ok || al != 3 {
		t.Errorf("AccessLevel = %d, %v", al, ok)
	}
	if len(v.References) != 2 {
		t.Fatalf("references = %+v", v.References)
	}
	if v.References[0].Type != nodeid.HasComponent {
		t.Errorf("aliased reference type = %v", v.References[0].Type)
	}
	if !v.References[1].IsForward {
		t.Errorf("IsForward should default to true")
	}
	d, ok := v.Value.(values.Double)
	if !ok || !d.Valid || d.Value != 42.5 {
		t.Errorf("value = %#v", v.Value)
	}
}

func TestParseAliasDeclaredAfterUse(t *testing.T) {
	doc := `<UANodeSet xmlns="http://opcfoundation.org/UA/2011/03/UANodeSet.xsd">
  <UAObject NodeId="ns=1;i=5" BrowseName="1:Box">
    <References>
      <Reference ReferenceType="Organizes" IsForward="false">i=85</Reference>
    </References>
  </UAObject>
  <Aliases>
    <Alias Alias="Organizes">i=35</Alias>
  </Aliases>
</UANodeSet>`
	set, err := Parse(strings.NewReader(doc), "late-alias.xml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if set.Nodes[0].References[0].Type != nodeid.Organizes {
		t.Errorf("late alias not resolved: %v", set.Nodes[0].References[0].Type)
	}
}

func TestParseMissingNodeID(t *testing.T) {
	doc := `<UANodeSet><UAObject BrowseName="1:X"/></UANodeSet>`
	_, err := Parse(strings.NewReader(doc), "bad.xml")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("want ParseError, got %v", err)
	}
	if pe.File != "bad.xml" {
		t.Errorf("File = %q", pe.File)
	}
}

func TestParseMalformedNodeID(t *testing.T) {
	doc := `<UANodeSet><UAObject NodeId="x=99" BrowseName="1:X"></UAObject></UANodeSet>`
	_, err := Parse(strings.NewReader(doc), "bad.xml")
	if !errors.Is(err, nodeid.ErrMalformedNodeID) {
		t.Fatalf("want ErrMalformedNodeID, got %v", err)
	}
}

func TestParseUnresolvableAlias(t *testing.T) {
	doc := `<UANodeSet>
  <UAObject NodeId="ns=1;i=5" BrowseName="1:Box">
    <References>
      <Reference ReferenceType="HasWidget">i=85</Reference>
    </References>
  </UAObject>
</UANodeSet>`
	_, err := Parse(strings.NewReader(doc), "alias.xml")
	if !errors.Is(err, nodeid.ErrMalformedNodeID) {
		t.Fatalf("want ErrMalformedNodeID for unresolved alias, got %v", err)
	}
	var pe *ParseError
	if !errors.As(err, &pe) || pe.File != "alias.xml" {
		t.Errorf("error should carry file context: %v", err)
	}
}

func TestParseValueVariants(t *testing.T) {
	doc := `<UANodeSet>
  <UAVariable NodeId="ns=1;i=1" BrowseName="1:Names" DataType="i=21">
    <Value>
      <ListOfLocalizedText xmlns="http://opcfoundation.org/UA/2008/02/Types.xsd">
        <LocalizedText><Locale>en</Locale><Text>Stopped</Text></LocalizedText>
        <LocalizedText><Locale>en</Locale><Text>Running</Text></LocalizedText>
      </ListOfLocalizedText>
    </Value>
  </UAVariable>
  <UAVariable NodeId="ns=1;i=2" BrowseName="1:EngineeringUnits" DataType="i=887">
    <Value>
      <ExtensionObject xmlns="http://opcfoundation.org/UA/2008/02/Types.xsd">
        <TypeId><Identifier>i=888</Identifier></TypeId>
        <Body>
          <EUInformation>
            <NamespaceUri>http://www.opcfoundation.org/UA/units/un/cefact</NamespaceUri>
            <UnitId>5067858</UnitId>
            <DisplayName><Locale>en</Locale><Text>m/s</Text></DisplayName>
          </EUInformation>
        </Body>
      </ExtensionObject>
    </Value>
  </UAVariable>
  <UAVariable NodeId="ns=1;i=3" BrowseName="1:EURange" DataType="i=884">
    <Value>
      <ExtensionObject xmlns="http://opcfoundation.org/UA/2008/02/Types.xsd">
        <TypeId><Identifier>i=885</Identifier></TypeId>
        <Body><Range><Low>0</Low><High>120.5</High></Range></Body>
      </ExtensionObject>
    </Value>
  </UAVariable>
  <UAVariable NodeId="ns=1;i=4" BrowseName="1:Custom" DataType="ns=1;i=3001">
    <Value>
      <Widget xmlns="http://example.com/Types.xsd"><Size>9</Size></Widget>
    </Value>
  </UAVariable>
</UANodeSet>`
	set, err := Parse(strings.NewReader(doc), "values.xml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(set.Nodes) != 4 {
		t.Fatalf("got %d nodes", len(set.Nodes))
	}

	l, ok := set.Nodes[0].Value.(values.List)
	if !ok || l.ElemType != "LocalizedText" || len(l.Elems) != 2 {
		t.Errorf("list value = %#v", set.Nodes[0].Value)
	} else if lt := l.Elems[1].(values.LocalizedText); lt.Text != "Running" {
		t.Errorf("list element = %#v", lt)
	}

	eu, ok := set.Nodes[1].Value.(values.EngineeringUnits)
	if !ok || eu.UnitID != 5067858 || eu.DisplayName.Text != "m/s" {
		t.Errorf("engineering units = %#v", set.Nodes[1].Value)
	}

	r, ok := set.Nodes[2].Value.(values.EURange)
	if !ok || r.Low != 0 || r.High != 120.5 {
		t.Errorf("range = %#v", set.Nodes[2].Value)
	}

	s, ok := set.Nodes[3].Value.(values.Structure)
	if !ok || !strings.Contains(s.XML, "<Size>9</Size>") {
		t.Errorf("structure = %#v", set.Nodes[3].Value)
	}
}

func TestSplitBrowseName(t *testing.T) {
	cases := []struct {
		in   string
		ns   uint16
		name string
	}{
		{"2:Speed", 2, "Speed"},
		{"Speed", 0, "Speed"},
		{"a:b", 0, "a:b"},
		{"1:has:colon", 1, "has:colon"},
	}
	for _, tc := range cases {
		ns, name := splitBrowseName(tc.in)
		if ns != tc.ns || name != tc.name {
			t.Errorf("splitBrowseName(%q) = %d, %q", tc.in, ns, name)
		}
	}
}
