// internal/proppath/tree.go
package proppath

import (
	"fmt"
)

// Get reads the value stored at p in a native tree.
func Get(tree map[string]any, p *Path) (any, bool) {
	if tree == nil || p == nil || len(p.Segments) == 0 {
		return nil, false
	}

	var current any = tree
	for _, segment := range p.Segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[segment.Name]
		if !ok {
			return nil, false
		}
		if segment.HasIndex() {
			list, ok := current.([]any)
			if !ok || segment.Index >= len(list) {
				return nil, false
			}
			current = list[segment.Index]
		}
	}
	return current, true
}

// Set writes v at p, creating intermediate maps as needed. An indexed final
// segment replaces an existing element, or appends when the index equals
// the list length.
func Set(tree map[string]any, p *Path, v any, mode Mode) error {
	if tree == nil {
		return fmt.Errorf("cannot set %s on a nil tree", p)
	}
	if p == nil || len(p.Segments) == 0 {
		return fmt.Errorf("cannot set an empty property path")
	}

	parent, err := walkParents(tree, p)
	if err != nil {
		return err
	}

	last := p.Segments[len(p.Segments)-1]
	if !last.HasIndex() {
		existing, ok := parent[last.Name]
		if mode == MergeIfAbsent && ok {
			parent[last.Name] = merge(existing, v)
			return nil
		}
		parent[last.Name] = v
		return nil
	}

	list, err := listAt(parent, last.Name, p)
	if err != nil {
		return err
	}
	switch {
	case last.Index < len(list):
		if mode == MergeIfAbsent {
			list[last.Index] = merge(list[last.Index], v)
		} else {
			list[last.Index] = v
		}
	case last.Index == len(list):
		list = append(list, v)
	default:
		return fmt.Errorf("index %d out of range for %s (length %d)", last.Index, p, len(list))
	}
	parent[last.Name] = list
	return nil
}

// Append adds v to the end of the list at p, creating the list if absent.
func Append(tree map[string]any, p *Path, v any) error {
	if tree == nil {
		return fmt.Errorf("cannot append to %s on a nil tree", p)
	}
	if p == nil || len(p.Segments) == 0 {
		return fmt.Errorf("cannot append to an empty property path")
	}
	if p.Segments[len(p.Segments)-1].HasIndex() {
		return fmt.Errorf("cannot append to indexed path %s", p)
	}

	parent, err := walkParents(tree, p)
	if err != nil {
		return err
	}
	name := p.Segments[len(p.Segments)-1].Name
	list, err := listAt(parent, name, p)
	if err != nil {
		return err
	}
	parent[name] = append(list, v)
	return nil
}

// Delete removes the value stored at p and returns it. Indexed final
// segments are not supported.
func Delete(tree map[string]any, p *Path) (any, bool) {
	if tree == nil || p == nil || len(p.Segments) == 0 || p.Segments[len(p.Segments)-1].HasIndex() {
		return nil, false
	}

	parent := tree
	if len(p.Segments) > 1 {
		v, ok := Get(tree, &Path{Segments: p.Segments[:len(p.Segments)-1]})
		if !ok {
			return nil, false
		}
		if parent, ok = v.(map[string]any); !ok {
			return nil, false
		}
	}
	name := p.Segments[len(p.Segments)-1].Name
	v, ok := parent[name]
	if ok {
		delete(parent, name)
	}
	return v, ok
}

// walkParents descends to the map holding the final segment of p,
// creating missing maps on the way.
func walkParents(tree map[string]any, p *Path) (map[string]any, error) {
	current := tree
	for _, segment := range p.Segments[:len(p.Segments)-1] {
		next, ok := current[segment.Name]
		if !ok || next == nil {
			if segment.HasIndex() {
				return nil, fmt.Errorf("segment %q of %s addresses a missing list", segment.Name, p)
			}
			child := make(map[string]any)
			current[segment.Name] = child
			current = child
			continue
		}

		if segment.HasIndex() {
			list, ok := next.([]any)
			if !ok || segment.Index >= len(list) {
				return nil, fmt.Errorf("segment %s[%d] of %s is out of range", segment.Name, segment.Index, p)
			}
			next = list[segment.Index]
		}

		child, ok := next.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("segment %q of %s is a %T, not a map", segment.Name, p, next)
		}
		current = child
	}
	return current, nil
}

func listAt(parent map[string]any, name string, p *Path) ([]any, error) {
	existing, ok := parent[name]
	if !ok || existing == nil {
		return nil, nil
	}
	list, ok := existing.([]any)
	if !ok {
		return nil, fmt.Errorf("%s holds a %T, not a list", p, existing)
	}
	return list, nil
}

// merge copies keys of incoming that are absent from existing. Values other
// than two maps keep the existing side.
func merge(existing, incoming any) any {
	dst, ok := existing.(map[string]any)
	if !ok {
		return existing
	}
	src, ok := incoming.(map[string]any)
	if !ok {
		return existing
	}
	for k, v := range src {
		if cur, present := dst[k]; present {
			dst[k] = merge(cur, v)
			continue
		}
		dst[k] = v
	}
	return dst
}
