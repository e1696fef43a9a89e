package modifier

import "fmt"

// LookupError reports a node the pass expected to find in the topology or in
// its build state.
type LookupError struct {
	What string // "host", "replacement" or "state"
	Node string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no %s found for node %q", e.What, e.Node)
}
