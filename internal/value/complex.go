package value

import "strings"

// Complex is a mapping from string keys to values that remembers insertion
// order.
type Complex struct {
	keys    []string
	entries map[string]Value
}

// NewComplex creates an empty mapping.
func NewComplex() *Complex {
	return &Complex{entries: make(map[string]Value)}
}

// Get returns the value stored under key.
func (c *Complex) Get(key string) (Value, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.entries[key]
	return v, ok
}

// Set stores v under key. A new key goes to the end of the order; an
// existing key keeps its position.
func (c *Complex) Set(key string, v Value) *Complex {
	if c.entries == nil {
		c.entries = make(map[string]Value)
	}
	if _, ok := c.entries[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.entries[key] = v
	return c
}

// Delete removes key. It reports whether the key was present.
func (c *Complex) Delete(key string) bool {
	if c == nil {
		return false
	}
	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the keys in insertion order.
func (c *Complex) Keys() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.keys...)
}

// Len returns the number of entries.
func (c *Complex) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// String renders the mapping in a compact braced form.
func (c *Complex) String() string {
	if c == nil {
		return "{}"
	}
	parts := make([]string, 0, len(c.keys))
	for _, k := range c.keys {
		parts = append(parts, k+": "+render(c.entries[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
