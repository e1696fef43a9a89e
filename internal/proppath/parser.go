// internal/proppath/parser.go
package proppath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// segmentRegex is used to parse a single segment of a path, e.g., `name` or `name[1]`.
var segmentRegex = regexp.MustCompile(`^([a-zA-Z0-9_-]+)(?:\[(\d+)\])?$`)

// Parse creates a new Path by parsing its canonical string representation.
func Parse(raw string) (*Path, error) {
	if raw == "" {
		return nil, fmt.Errorf("property path cannot be empty")
	}

	p := &Path{}
	for _, segmentStr := range strings.Split(raw, ".") {
		if segmentStr == "" {
			return nil, fmt.Errorf("property path %q contains empty segment", raw)
		}

		matches := segmentRegex.FindStringSubmatch(segmentStr)
		if matches == nil {
			return nil, fmt.Errorf("invalid path segment format: %q", segmentStr)
		}
		if matches[1] == "-" {
			return nil, fmt.Errorf("invalid segment name: %q", matches[1])
		}

		segment := NewSegment(matches[1])
		if matches[2] != "" {
			index, err := strconv.Atoi(matches[2])
			if err != nil {
				// Unreachable due to regex `\d+`
				return nil, fmt.Errorf("internal error parsing index: %w", err)
			}
			segment.Index = index
		}
		p.Segments = append(p.Segments, segment)
	}

	return p, nil
}

// MustParse is like Parse but panics on malformed input. It is meant for
// package-level constants.
func MustParse(raw string) *Path {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return p
}
