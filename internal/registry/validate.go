package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/kubelower/internal/ctxlog"
)

// Validate checks that every derived_from target exists, that no hierarchy
// loops, and that every declared property type resolves. All problems are
// collected into a single error.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.TypeNames() {
		parent, _ := r.parentOf(name)
		if parent == "" {
			continue
		}
		if _, ok := r.parentOf(parent); !ok && !isPrimitive(parent) {
			errs = append(errs, fmt.Sprintf("type '%s': derived_from '%s' is not defined", name, parent))
			continue
		}
		chain := r.Ancestry(name)
		last := chain[len(chain)-1]
		if p, ok := r.parentOf(last); ok && p != "" {
			errs = append(errs, fmt.Sprintf("type '%s': derived_from chain loops through '%s'", name, last))
		}
	}

	check := func(owner, prop string, def *PropertyDefinition) {
		for d := def; d != nil; d = d.EntrySchema {
			if (d.Type == typeList || d.Type == typeMap) && d.EntrySchema == nil {
				logger.Warn("Collection property has no entry_schema, its entries will pass through unchanged.", "type", owner, "property", prop)
			}
			if _, err := r.Resolve(d); err != nil {
				errs = append(errs, fmt.Sprintf("type '%s', property '%s': %v", owner, prop, err))
				return
			}
		}
	}
	for _, name := range sortedKeys(r.NodeTypes) {
		t := r.NodeTypes[name]
		for _, prop := range t.Properties.Names() {
			def, _ := t.Properties.Get(prop)
			check(name, prop, def)
		}
	}
	for _, name := range sortedKeys(r.DataTypes) {
		t := r.DataTypes[name]
		for _, prop := range t.Properties.Names() {
			def, _ := t.Properties.Get(prop)
			check(name, prop, def)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
