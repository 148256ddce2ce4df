// # internal/nodeid/standard.go
package nodeid

// Well-known node ids from the OPC UA standard namespace that the graph
// layer needs to navigate type hierarchies and instance trees.
var (
	References        = New(0, Numeric, "31")
	NonHierarchical   = New(0, Numeric, "32")
	Hierarchical      = New(0, Numeric, "33")
	HasChild          = New(0, Numeric, "34")
	Organizes         = New(0, Numeric, "35")
	HasModellingRule  = New(0, Numeric, "37")
	HasEncoding       = New(0, Numeric, "38")
	HasDescription    = New(0, Numeric, "39")
	HasTypeDefinition = New(0, Numeric, "40")
	Aggregates        = New(0, Numeric, "44")
	HasSubtype        = New(0, Numeric, "45")
	HasProperty       = New(0, Numeric, "46")
	HasComponent      = New(0, Numeric, "47")
	HasOrderedComp    = New(0, Numeric, "49")

	BaseDataType = New(0, Numeric, "24")
	Enumeration  = New(0, Numeric, "29")

	EUInformationType = New(0, Numeric, "888")
	RangeType         = New(0, Numeric, "885")
)
