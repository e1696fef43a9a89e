package registry

import "fmt"

// LookupError reports a type or property definition that is not in the
// registry.
type LookupError struct {
	Kind  string // "node type", "data type", "property", ...
	Name  string
	Owner string // type that was expected to declare Name, if any
}

// Error implements the error interface for LookupError.
func (e *LookupError) Error() string {
	if e.Owner != "" {
		return fmt.Sprintf("%s %q not found on %q", e.Kind, e.Name, e.Owner)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}
