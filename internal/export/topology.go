// Package export writes a rewritten topology out as YAML: either the whole
// graph for inspection, or the multi-document stream of its manifests.
package export

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vk/kubelower/internal/topology"
	"github.com/vk/kubelower/internal/value"
)

// WriteTopology dumps every node and relationship of topo to w. Keys keep
// their property tree order and multi-line scalars use the literal style.
func WriteTopology(ctx context.Context, w io.Writer, topo topology.Store) error {
	doc := TopologyNode(ctx, topo)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode topology: %w", err)
	}
	return enc.Close()
}

// TopologyNode builds the YAML document WriteTopology encodes.
func TopologyNode(ctx context.Context, topo topology.Store) *yaml.Node {
	names := make(map[topology.NodeID]string)
	nodes := mapping()
	for _, n := range topo.Nodes(ctx) {
		names[n.ID] = n.Name
		entry := mapping()
		appendPair(entry, "type", scalar(n.Type))
		if keys := n.Tags.Keys(); len(keys) > 0 {
			appendPair(entry, "tags", tagsNode(n.Tags))
		}
		if n.Properties != nil && n.Properties.Len() > 0 {
			appendPair(entry, "properties", valueNode(n.Properties))
		}
		if len(n.Capabilities) > 0 {
			caps := mapping()
			for _, name := range sortedCapabilities(n) {
				c := n.Capabilities[name]
				capEntry := mapping()
				appendPair(capEntry, "type", scalar(c.Type))
				if c.Properties != nil && c.Properties.Len() > 0 {
					appendPair(capEntry, "properties", valueNode(c.Properties))
				}
				appendPair(caps, name, capEntry)
			}
			appendPair(entry, "capabilities", caps)
		}
		appendPair(nodes, n.Name, entry)
	}

	rels := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, r := range topo.AllRelationships(ctx) {
		entry := mapping()
		appendPair(entry, "type", scalar(r.Type))
		appendPair(entry, "source", scalar(names[r.Source]))
		appendPair(entry, "target", scalar(names[r.Target]))
		appendPair(entry, "requirement", scalar(r.Requirement))
		appendPair(entry, "capability", scalar(r.Capability))
		if keys := r.Tags.Keys(); len(keys) > 0 {
			appendPair(entry, "tags", tagsNode(r.Tags))
		}
		rels.Content = append(rels.Content, entry)
	}

	root := mapping()
	appendPair(root, "nodes", nodes)
	appendPair(root, "relationships", rels)
	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
}

func valueNode(v value.Value) *yaml.Node {
	switch t := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case *value.Complex:
		m := mapping()
		for _, k := range t.Keys() {
			entry, _ := t.Get(k)
			appendPair(m, k, valueNode(entry))
		}
		return m
	case value.List:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range t.Items {
			seq.Content = append(seq.Content, valueNode(item))
		}
		return seq
	default:
		return scalar(v.String())
	}
}

func tagsNode(tags *topology.Tags) *yaml.Node {
	m := mapping()
	for _, k := range tags.Keys() {
		v, _ := tags.Get(k)
		appendPair(m, k, scalar(v))
	}
	return m
}

func mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

// scalar always tags text as a string so that "80" or "true" round-trip
// as text.
func scalar(text string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: text}
	if strings.Contains(text, "\n") {
		n.Style = yaml.LiteralStyle
	}
	return n
}

func appendPair(m *yaml.Node, key string, v *yaml.Node) {
	m.Content = append(m.Content, scalar(key), v)
}

func sortedCapabilities(n *topology.Node) []string {
	names := make([]string, 0, len(n.Capabilities))
	for name := range n.Capabilities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
