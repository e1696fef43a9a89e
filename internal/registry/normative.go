package registry

// Normative root types every topology may derive from.
const (
	RootNode             = "tosca.nodes.Root"
	RootData             = "tosca.datatypes.Root"
	RootCapability       = "tosca.capabilities.Root"
	EndpointCapability   = "tosca.capabilities.Endpoint"
	NodeCapability       = "tosca.capabilities.Node"
	RootRelationship     = "tosca.relationships.Root"
	HostedOn             = "tosca.relationships.HostedOn"
	DependsOn            = "tosca.relationships.DependsOn"
	ConnectsTo           = "tosca.relationships.ConnectsTo"
	endpointPortProperty = "port"
)

func registerNormativeTypes(r *Registry) {
	r.NodeTypes[RootNode] = &NodeType{Name: RootNode, Properties: NewDefinitions()}
	r.DataTypes[RootData] = &DataType{Name: RootData, Properties: NewDefinitions()}

	r.CapabilityTypes[RootCapability] = &CapabilityType{Name: RootCapability, Properties: NewDefinitions()}
	r.CapabilityTypes[NodeCapability] = &CapabilityType{Name: NodeCapability, DerivedFrom: RootCapability, Properties: NewDefinitions()}
	r.CapabilityTypes[EndpointCapability] = &CapabilityType{
		Name:        EndpointCapability,
		DerivedFrom: RootCapability,
		Properties: NewDefinitions().
			Add("protocol", &PropertyDefinition{Type: "string"}).
			Add(endpointPortProperty, &PropertyDefinition{Type: "integer"}).
			Add("url_path", &PropertyDefinition{Type: "string"}),
	}

	r.RelationshipTypes[RootRelationship] = &RelationshipType{Name: RootRelationship}
	r.RelationshipTypes[HostedOn] = &RelationshipType{Name: HostedOn, DerivedFrom: RootRelationship}
	r.RelationshipTypes[DependsOn] = &RelationshipType{Name: DependsOn, DerivedFrom: RootRelationship}
	r.RelationshipTypes[ConnectsTo] = &RelationshipType{Name: ConnectsTo, DerivedFrom: RootRelationship}
}
