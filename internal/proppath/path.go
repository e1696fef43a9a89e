// internal/proppath/path.go
package proppath

import (
	"fmt"
	"reflect"
	"strings"
)

// String serializes the Path into its canonical dotted representation.
func (p *Path) String() string {
	if p == nil {
		return ""
	}

	var sb strings.Builder
	for i, segment := range p.Segments {
		if i > 0 {
			sb.WriteRune('.')
		}
		sb.WriteString(segment.Name)
		if segment.HasIndex() {
			sb.WriteString(fmt.Sprintf("[%d]", segment.Index))
		}
	}

	return sb.String()
}

// Equal checks for deep equality between two Path pointers.
func (p *Path) Equal(other *Path) bool {
	if p == nil || other == nil {
		return p == other
	}
	return reflect.DeepEqual(p.Segments, other.Segments)
}

// Join renders a parent path string and a child name the way Child would,
// without parsing. An empty parent yields the child alone.
func Join(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
