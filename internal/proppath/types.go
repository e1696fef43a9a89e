// internal/proppath/types.go
package proppath

// Segment represents a single component of a property path, e.g., `name[index]`.
type Segment struct {
	Name  string
	Index int // -1 indicates no index is present.
}

// NewSegment creates a new path segment without an index.
func NewSegment(name string) Segment {
	return Segment{Name: name, Index: -1}
}

// NewSegmentWithIndex creates a new path segment that includes an index.
func NewSegmentWithIndex(name string, index int) Segment {
	return Segment{Name: name, Index: index}
}

// HasIndex returns true if the path segment has an explicit index.
func (s Segment) HasIndex() bool {
	return s.Index != -1
}

// Path is the structured representation of a property address.
type Path struct {
	Segments []Segment
}

// Mode selects how Set treats a value already present at the target path.
type Mode int

const (
	// Overwrite replaces whatever is stored at the path.
	Overwrite Mode = iota
	// MergeIfAbsent only writes keys that are not present yet. Two maps are
	// merged recursively; any other existing value is kept.
	MergeIfAbsent
)
