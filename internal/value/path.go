package value

import (
	"fmt"

	"github.com/vk/kubelower/internal/proppath"
)

// Lookup reads the value at p inside root.
func Lookup(root *Complex, p *proppath.Path) (Value, bool) {
	if root == nil || p == nil || len(p.Segments) == 0 {
		return nil, false
	}

	var current Value = root
	for _, segment := range p.Segments {
		c, ok := current.(*Complex)
		if !ok {
			return nil, false
		}
		current, ok = c.Get(segment.Name)
		if !ok {
			return nil, false
		}
		if segment.HasIndex() {
			list, ok := current.(List)
			if !ok || segment.Index >= len(list.Items) {
				return nil, false
			}
			current = list.Items[segment.Index]
		}
	}
	return current, true
}

// Set writes v at p inside root, creating intermediate mappings as needed.
// With proppath.MergeIfAbsent an existing value is kept, and two mappings
// are merged key by key.
func Set(root *Complex, p *proppath.Path, v Value, mode proppath.Mode) error {
	if root == nil {
		return fmt.Errorf("cannot set %s on a nil property tree", p)
	}
	if p == nil || len(p.Segments) == 0 {
		return fmt.Errorf("cannot set an empty property path")
	}

	parent, err := walkParents(root, p)
	if err != nil {
		return err
	}
	last := p.Segments[len(p.Segments)-1]
	if last.HasIndex() {
		return fmt.Errorf("cannot set indexed path %s", p)
	}

	existing, ok := parent.Get(last.Name)
	if ok && mode == proppath.MergeIfAbsent {
		parent.Set(last.Name, merge(existing, v))
		return nil
	}
	parent.Set(last.Name, v)
	return nil
}

// Append adds v at the end of the list at p, creating the list if absent.
func Append(root *Complex, p *proppath.Path, v Value) error {
	if root == nil {
		return fmt.Errorf("cannot append to %s on a nil property tree", p)
	}
	if p == nil || len(p.Segments) == 0 {
		return fmt.Errorf("cannot append to an empty property path")
	}

	parent, err := walkParents(root, p)
	if err != nil {
		return err
	}
	last := p.Segments[len(p.Segments)-1]
	if last.HasIndex() {
		return fmt.Errorf("cannot append to indexed path %s", p)
	}

	var list List
	if existing, ok := parent.Get(last.Name); ok && existing != nil {
		l, isList := existing.(List)
		if !isList {
			return fmt.Errorf("%s holds %T, not a list", p, existing)
		}
		list = l
	}
	items := make([]Value, 0, len(list.Items)+1)
	items = append(items, list.Items...)
	parent.Set(last.Name, List{Items: append(items, v)})
	return nil
}

func walkParents(root *Complex, p *proppath.Path) (*Complex, error) {
	current := root
	for _, segment := range p.Segments[:len(p.Segments)-1] {
		next, ok := current.Get(segment.Name)
		if !ok || next == nil {
			if segment.HasIndex() {
				return nil, fmt.Errorf("segment %q of %s addresses a missing list", segment.Name, p)
			}
			child := NewComplex()
			current.Set(segment.Name, child)
			current = child
			continue
		}
		if segment.HasIndex() {
			list, ok := next.(List)
			if !ok || segment.Index >= len(list.Items) {
				return nil, fmt.Errorf("segment %s[%d] of %s is out of range", segment.Name, segment.Index, p)
			}
			next = list.Items[segment.Index]
		}
		child, ok := next.(*Complex)
		if !ok {
			return nil, fmt.Errorf("segment %q of %s is %T, not a mapping", segment.Name, p, next)
		}
		current = child
	}
	return current, nil
}

func merge(existing, incoming Value) Value {
	dst, ok := existing.(*Complex)
	if !ok {
		return existing
	}
	src, ok := incoming.(*Complex)
	if !ok {
		return existing
	}
	for _, k := range src.Keys() {
		v, _ := src.Get(k)
		if cur, present := dst.Get(k); present {
			dst.Set(k, merge(cur, v))
			continue
		}
		dst.Set(k, v)
	}
	return dst
}
