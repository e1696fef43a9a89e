package hclloader

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	DataTypes         []*dataTypeBlock         `hcl:"data_type,block"`
	NodeTypes         []*nodeTypeBlock         `hcl:"node_type,block"`
	CapabilityTypes   []*capabilityTypeBlock   `hcl:"capability_type,block"`
	RelationshipTypes []*relationshipTypeBlock `hcl:"relationship_type,block"`
	Nodes             []*nodeBlock             `hcl:"node,block"`
	Relationships     []*relationshipBlock     `hcl:"relationship,block"`
	Inputs            []*inputBlock            `hcl:"input,block"`
	Remain            hcl.Body                 `hcl:",remain"`
}

// --- Type definitions ---

type propertyBlock struct {
	Name        string            `hcl:"name,label"`
	Type        string            `hcl:"type"`
	Description string            `hcl:"description,optional"`
	Required    bool              `hcl:"required,optional"`
	Default     hcl.Expression    `hcl:"default,optional"`
	EntrySchema *entrySchemaBlock `hcl:"entry_schema,block"`
}

type entrySchemaBlock struct {
	Type        string            `hcl:"type"`
	EntrySchema *entrySchemaBlock `hcl:"entry_schema,block"`
}

type dataTypeBlock struct {
	Name        string           `hcl:"name,label"`
	DerivedFrom string           `hcl:"derived_from,optional"`
	Description string           `hcl:"description,optional"`
	Properties  []*propertyBlock `hcl:"property,block"`
}

type operationBlock struct {
	Name           string         `hcl:"name,label"`
	Implementation string         `hcl:"implementation,optional"`
	Inputs         hcl.Expression `hcl:"inputs,optional"`
}

type interfaceBlock struct {
	Name       string            `hcl:"name,label"`
	Type       string            `hcl:"type,optional"`
	Operations []*operationBlock `hcl:"operation,block"`
}

type nodeTypeBlock struct {
	Name        string            `hcl:"name,label"`
	DerivedFrom string            `hcl:"derived_from,optional"`
	Description string            `hcl:"description,optional"`
	Properties  []*propertyBlock  `hcl:"property,block"`
	Interfaces  []*interfaceBlock `hcl:"interface,block"`
}

type capabilityTypeBlock struct {
	Name        string           `hcl:"name,label"`
	DerivedFrom string           `hcl:"derived_from,optional"`
	Properties  []*propertyBlock `hcl:"property,block"`
}

type relationshipTypeBlock struct {
	Name        string `hcl:"name,label"`
	DerivedFrom string `hcl:"derived_from,optional"`
}

// --- Topology ---

type capabilityBlock struct {
	Name       string         `hcl:"name,label"`
	Type       string         `hcl:"type"`
	Properties hcl.Expression `hcl:"properties,optional"`
}

type nodeBlock struct {
	Name         string             `hcl:"name,label"`
	Type         string             `hcl:"type"`
	Properties   hcl.Expression     `hcl:"properties,optional"`
	Capabilities []*capabilityBlock `hcl:"capability,block"`
}

type relationshipBlock struct {
	Type        string `hcl:"type"`
	Source      string `hcl:"source"`
	Target      string `hcl:"target"`
	Requirement string `hcl:"requirement"`
	Capability  string `hcl:"capability,optional"`
}

type inputBlock struct {
	Name  string         `hcl:"name,label"`
	Value hcl.Expression `hcl:"value"`
}
